package media

import "time"

// Pipeline is the transport collaborator owning the playhead: current
// time, duration, playback rate and the play/pause/seek commands. All
// times are in seconds; Duration returns NaN until known.
type Pipeline interface {
	Play()
	Pause()
	CurrentTime() float64
	SetCurrentTime(t float64)
	Duration() float64
	PlaybackRate() float64
	SetPlaybackRate(rate float64)
	SetVolume(v float64)
	BufferedRanges() TimeRanges
	VideoPlaybackQuality() VideoPlaybackQuality
}

// Source is a playable source bound to at most one element at a time.
// Open receives the element's ID rather than the element itself; the
// binding resolves it through its registry when reporting back.
type Source interface {
	Open(elementID int64)
	Close()
	Pipeline() Pipeline
	Duration() float64
	URL() string
}

// SourceFinder resolves source URLs against the host's source registry.
type SourceFinder interface {
	FindSource(url string) (Source, bool)
	IsTypeSupported(mimeType string) bool
}

// Scheduler is the event delivery collaborator. Schedule is fire-and-
// forget; events scheduled by one transition are delivered to listeners in
// the order they were scheduled.
type Scheduler interface {
	Schedule(EventType)
}

// Clock paces the cue-check loop. The loop's only wait is Sleep, so
// shutdown latency is bounded by one tick.
type Clock interface {
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Sleep(d time.Duration) { time.Sleep(d) }
