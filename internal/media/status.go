package media

// PipelineStatus is the transport state of the underlying playback
// pipeline, independent of ReadyState.
//
// Valid transitions are driven by the pipeline collaborator:
//
//	Initializing → Playing | Paused | Errored
//	Playing      → Paused | Stalled | SeekingPlay | Ended | Errored
//	Paused       → Playing | SeekingPause | Errored
//	Stalled      → Playing | Paused | SeekingPlay | Errored
//	SeekingPlay  → Playing | SeekingPause | Ended | Errored
//	SeekingPause → Paused | SeekingPlay | Ended | Errored
//	Ended        → SeekingPlay | SeekingPause | Errored
//
// The element does not validate transitions; it only derives the event
// sequence each reported status implies (see Element.SetPipelineStatus).
type PipelineStatus int

const (
	StatusInitializing PipelineStatus = iota
	StatusPlaying
	StatusPaused
	StatusStalled
	StatusSeekingPlay
	StatusSeekingPause
	StatusEnded
	StatusErrored
)

// String returns the status name.
func (s PipelineStatus) String() string {
	switch s {
	case StatusInitializing:
		return "Initializing"
	case StatusPlaying:
		return "Playing"
	case StatusPaused:
		return "Paused"
	case StatusStalled:
		return "Stalled"
	case StatusSeekingPlay:
		return "SeekingPlay"
	case StatusSeekingPause:
		return "SeekingPause"
	case StatusEnded:
		return "Ended"
	case StatusErrored:
		return "Errored"
	default:
		return "Unknown"
	}
}

// IsSeeking returns true for the two seeking statuses. These are the only
// statuses that re-fire their event when reported twice in a row.
func (s PipelineStatus) IsSeeking() bool {
	return s == StatusSeekingPlay || s == StatusSeekingPause
}

// IsPaused returns true if the status counts as paused for the element's
// Paused predicate. Initializing is deliberately excluded: a freshly
// constructed element is neither playing nor paused.
func (s PipelineStatus) IsPaused() bool {
	return s == StatusPaused || s == StatusSeekingPause || s == StatusEnded
}
