package media

// EventType identifies a media event delivered to script listeners.
type EventType int

const (
	EventLoadedMetadata EventType = iota
	EventLoadedData
	EventCanPlay
	EventWaiting
	EventReadyStateChange
	EventEmptied
	EventPlay
	EventPlaying
	EventPause
	EventSeeking
	EventSeeked
	EventEnded
	EventError
)

// String returns the DOM event name.
func (e EventType) String() string {
	switch e {
	case EventLoadedMetadata:
		return "loadedmetadata"
	case EventLoadedData:
		return "loadeddata"
	case EventCanPlay:
		return "canplay"
	case EventWaiting:
		return "waiting"
	case EventReadyStateChange:
		return "readystatechange"
	case EventEmptied:
		return "emptied"
	case EventPlay:
		return "play"
	case EventPlaying:
		return "playing"
	case EventPause:
		return "pause"
	case EventSeeking:
		return "seeking"
	case EventSeeked:
		return "seeked"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}
