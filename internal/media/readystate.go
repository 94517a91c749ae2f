// Package media implements an HTML media element emulation: the dual
// state machine (ready state and pipeline status), the event sequences it
// schedules, the background cue-check loop and the playback control
// surface. Decoding, buffering and source resolution live in collaborators
// consumed through the interfaces in interfaces.go.
package media

// ReadyState reports how much of the current source is available for
// playback. Values are ordered; the element only ever compares them.
type ReadyState int

const (
	HaveNothing ReadyState = iota
	HaveMetadata
	HaveCurrentData
	HaveFutureData
	HaveEnoughData
)

// String returns the ready state name.
func (s ReadyState) String() string {
	switch s {
	case HaveNothing:
		return "HaveNothing"
	case HaveMetadata:
		return "HaveMetadata"
	case HaveCurrentData:
		return "HaveCurrentData"
	case HaveFutureData:
		return "HaveFutureData"
	case HaveEnoughData:
		return "HaveEnoughData"
	default:
		return "Unknown"
	}
}
