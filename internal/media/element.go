package media

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// cueCheckInterval is the cue-check loop cadence.
const cueCheckInterval = 250 * time.Millisecond

var nextElementID atomic.Int64

// Element emulates an HTML media element. The control surface is safe
// for concurrent use: the host loop, the cue-check loop and desktop
// integrations such as MPRIS may call in from their own goroutines.
// Ready-state reports (SetReadyState) must come from the single
// goroutine feeding the source, matching how the pipeline delivers them.
type Element struct {
	id     int64
	finder SourceFinder
	sched  Scheduler
	clock  Clock

	// mu guards status, source, tracks and the control-surface settings
	// below. It is never held across a collaborator call.
	mu       sync.RWMutex
	status   PipelineStatus
	source   Source
	tracks   []*TextTrack
	err      *MediaError
	autoplay bool
	loop     bool
	volume   float64
	muted    bool
	willPlay bool

	// readyState is only touched by the goroutine feeding pipeline
	// reports.
	readyState ReadyState

	shutdown atomic.Bool
	loopDone chan struct{}
}

// New creates an element and starts its cue-check loop. The loop runs
// until Close.
func New(finder SourceFinder, sched Scheduler) *Element {
	return newElement(finder, sched, realClock{})
}

func newElement(finder SourceFinder, sched Scheduler, clock Clock) *Element {
	e := &Element{
		id:       nextElementID.Add(1),
		finder:   finder,
		sched:    sched,
		clock:    clock,
		status:   StatusInitializing,
		volume:   1,
		loopDone: make(chan struct{}),
	}
	go e.cueCheckLoop()
	return e
}

// ID returns the element's registry identifier.
func (e *Element) ID() int64 { return e.id }

// Close stops the cue-check loop and waits for it to exit. Shutdown
// latency is bounded by one tick. Safe to call more than once.
func (e *Element) Close() error {
	if e.shutdown.CompareAndSwap(false, true) {
		<-e.loopDone
	}
	return nil
}

func (e *Element) cueCheckLoop() {
	defer close(e.loopDone)
	lastTime := e.CurrentTime()
	for !e.shutdown.Load() {
		now := e.CurrentTime()
		if e.PipelineStatus() == StatusPlaying {
			for _, track := range e.TextTracks() {
				track.CheckForCueChange(now, lastTime)
			}
			lastTime = now
		}
		e.clock.Sleep(cueCheckInterval)
	}
}

// SetReadyState applies a ready-state report from the pipeline. Crossing
// a threshold upward schedules its event once per call; dropping below
// HaveFutureData (but not to HaveNothing) schedules waiting. A
// readystatechange always follows. Reporting the current state again is a
// no-op. A report inconsistent with source attachment is a collaborator
// contract breach and panics.
func (e *Element) SetReadyState(state ReadyState) {
	if (e.getSource() != nil) != (state != HaveNothing) {
		panic(fmt.Sprintf("media: ready state %v inconsistent with source attachment", state))
	}
	if state == e.readyState {
		return
	}

	old := e.readyState
	if old < HaveMetadata && state >= HaveMetadata {
		e.sched.Schedule(EventLoadedMetadata)
	}
	if old < HaveCurrentData && state >= HaveCurrentData {
		e.sched.Schedule(EventLoadedData)
	}
	if old < HaveEnoughData && state >= HaveEnoughData {
		e.sched.Schedule(EventCanPlay)
	}
	if old >= HaveFutureData && state < HaveFutureData && state != HaveNothing {
		e.sched.Schedule(EventWaiting)
	}

	e.sched.Schedule(EventReadyStateChange)
	e.readyState = state
}

// SetPipelineStatus applies a status report from the pipeline and
// schedules the event sequence the transition implies. Repeating the
// current status is a no-op except for the seeking statuses, which
// re-fire seeking because the target time may have changed.
func (e *Element) SetPipelineStatus(status PipelineStatus) {
	prev := e.PipelineStatus()
	if status == prev {
		if status.IsSeeking() {
			e.sched.Schedule(EventSeeking)
		}
		return
	}

	switch status {
	case StatusInitializing:
		e.sched.Schedule(EventEmptied)
	case StatusPlaying:
		if prev == StatusPaused {
			e.sched.Schedule(EventPlay)
		} else if prev == StatusSeekingPlay {
			e.sched.Schedule(EventSeeked)
		}
		e.sched.Schedule(EventPlaying)
	case StatusPaused:
		if prev == StatusPlaying || prev == StatusStalled {
			e.sched.Schedule(EventPause)
		} else if prev == StatusSeekingPause {
			e.sched.Schedule(EventSeeked)
		}
	case StatusStalled:
		// No event.
	case StatusSeekingPlay, StatusSeekingPause:
		e.sched.Schedule(EventSeeking)
	case StatusEnded:
		if prev == StatusPlaying {
			e.sched.Schedule(EventPause)
		} else if prev.IsSeeking() {
			e.sched.Schedule(EventSeeked)
		}
		e.sched.Schedule(EventEnded)
	case StatusErrored:
		e.sched.Schedule(EventError)
		e.mu.Lock()
		if e.err == nil {
			e.err = &MediaError{Code: ErrCodeDecode, Message: "unknown media error"}
		}
		e.mu.Unlock()
	}

	e.mu.Lock()
	e.status = status
	e.mu.Unlock()
}

// OnMediaError records a runtime media error and schedules the error
// event. The first recorded error of an episode wins; only Load clears it.
func (e *Element) OnMediaError(err error) {
	e.sched.Schedule(EventError)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return
	}
	var me *MediaError
	if errors.As(err, &me) {
		e.err = me
	} else {
		e.err = &MediaError{Code: ErrCodeDecode, Message: err.Error()}
	}
}

// Load clears the recorded error and, if a source is attached, closes and
// detaches it, resets the ready state and pipeline status, and clears the
// will-play latch. Without a source it only clears the error.
func (e *Element) Load() {
	e.mu.Lock()
	e.err = nil
	e.mu.Unlock()
	if src := e.getSource(); src != nil {
		src.Close()
		e.setSource(nil)
		e.SetReadyState(HaveNothing)
		e.SetPipelineStatus(StatusInitializing)
		e.mu.Lock()
		e.willPlay = false
		e.mu.Unlock()
	}
}

// SetSource resolves url against the source registry and attaches the
// result. Any previous source is unloaded first. An empty url leaves the
// element sourceless. An unresolvable url returns ErrSourceNotSupported
// and the element stays sourceless.
func (e *Element) SetSource(url string) error {
	e.Load()
	if url == "" {
		return nil
	}

	src, ok := e.finder.FindSource(url)
	if !ok {
		return fmt.Errorf("%w: %q", ErrSourceNotSupported, url)
	}
	e.setSource(src)
	src.Open(e.id)
	src.Pipeline().SetVolume(e.effectiveVolume())
	e.mu.RLock()
	play := e.autoplay || e.willPlay
	e.mu.RUnlock()
	if play {
		src.Pipeline().Play()
	}
	return nil
}

// Source returns the attached source URL, or "".
func (e *Element) Source() string {
	if src := e.getSource(); src != nil {
		return src.URL()
	}
	return ""
}

// ReadyState returns the current ready state.
func (e *Element) ReadyState() ReadyState { return e.readyState }

// PipelineStatus returns the current pipeline status.
func (e *Element) PipelineStatus() PipelineStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// Err returns the recorded media error, or nil.
func (e *Element) Err() *MediaError {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.err
}

// Autoplay returns the autoplay flag.
func (e *Element) Autoplay() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.autoplay
}

// SetAutoplay sets the autoplay flag.
func (e *Element) SetAutoplay(v bool) {
	e.mu.Lock()
	e.autoplay = v
	e.mu.Unlock()
}

// Loop returns the loop flag.
func (e *Element) Loop() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loop
}

// SetLoop sets the loop flag. The element only stores it; restarting on
// ended is host policy.
func (e *Element) SetLoop(v bool) {
	e.mu.Lock()
	e.loop = v
	e.mu.Unlock()
}

// Play starts playback, or latches the intent if no source is attached.
// The latch is honored by the next successful SetSource.
func (e *Element) Play() {
	if src := e.getSource(); src != nil {
		src.Pipeline().Play()
		return
	}
	e.mu.Lock()
	e.willPlay = true
	e.mu.Unlock()
}

// Pause pauses playback, or clears the will-play latch if no source is
// attached.
func (e *Element) Pause() {
	if src := e.getSource(); src != nil {
		src.Pipeline().Pause()
		return
	}
	e.mu.Lock()
	e.willPlay = false
	e.mu.Unlock()
}

// Paused reports whether the element counts as paused. True for Paused,
// SeekingPause and Ended; false for a freshly constructed (Initializing)
// element.
func (e *Element) Paused() bool { return e.PipelineStatus().IsPaused() }

// Seeking reports whether a seek is in progress.
func (e *Element) Seeking() bool { return e.PipelineStatus().IsSeeking() }

// Ended reports whether playback has ended.
func (e *Element) Ended() bool { return e.PipelineStatus() == StatusEnded }

// CurrentTime returns the playback position in seconds, 0 when sourceless.
func (e *Element) CurrentTime() float64 {
	if src := e.getSource(); src != nil {
		return src.Pipeline().CurrentTime()
	}
	return 0
}

// SetCurrentTime seeks. Dropped when no source is attached.
func (e *Element) SetCurrentTime(t float64) {
	if src := e.getSource(); src != nil {
		src.Pipeline().SetCurrentTime(t)
	}
}

// Duration returns the source duration in seconds, 0 when sourceless.
func (e *Element) Duration() float64 {
	if src := e.getSource(); src != nil {
		return src.Pipeline().Duration()
	}
	return 0
}

// PlaybackRate returns the playback rate, 1 when sourceless.
func (e *Element) PlaybackRate() float64 {
	if src := e.getSource(); src != nil {
		return src.Pipeline().PlaybackRate()
	}
	return 1
}

// SetPlaybackRate sets the playback rate. Dropped when no source is
// attached.
func (e *Element) SetPlaybackRate(rate float64) {
	if src := e.getSource(); src != nil {
		src.Pipeline().SetPlaybackRate(rate)
	}
}

// Volume returns the element volume (0.0 to 1.0), independent of muting.
func (e *Element) Volume() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.volume
}

// SetVolume stores the volume and pushes the mute-aware value to the
// pipeline if a source is attached.
func (e *Element) SetVolume(v float64) {
	e.mu.Lock()
	e.volume = v
	e.mu.Unlock()
	e.pushVolume()
}

// Muted returns the muted flag.
func (e *Element) Muted() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.muted
}

// SetMuted stores the muted flag and pushes the mute-aware volume to the
// pipeline if a source is attached.
func (e *Element) SetMuted(muted bool) {
	e.mu.Lock()
	e.muted = muted
	e.mu.Unlock()
	e.pushVolume()
}

func (e *Element) pushVolume() {
	if src := e.getSource(); src != nil {
		src.Pipeline().SetVolume(e.effectiveVolume())
	}
}

func (e *Element) effectiveVolume() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.muted {
		return 0
	}
	return e.volume
}

// Buffered returns the pipeline's buffered ranges, empty when sourceless.
func (e *Element) Buffered() TimeRanges {
	if src := e.getSource(); src != nil {
		return src.Pipeline().BufferedRanges()
	}
	return nil
}

// Seekable returns [0, duration], or empty when sourceless or the
// duration is unknown.
func (e *Element) Seekable() TimeRanges {
	src := e.getSource()
	if src == nil {
		return nil
	}
	dur := src.Duration()
	if math.IsNaN(dur) {
		return nil
	}
	return TimeRanges{{Start: 0, End: dur}}
}

// CanPlayType returns "maybe" if the registry supports the MIME type,
// "" otherwise.
func (e *Element) CanPlayType(mimeType string) string {
	if e.finder.IsTypeSupported(mimeType) {
		return "maybe"
	}
	return ""
}

// VideoPlaybackQuality returns the pipeline's frame counters, zero when
// sourceless.
func (e *Element) VideoPlaybackQuality() VideoPlaybackQuality {
	if src := e.getSource(); src != nil {
		return src.Pipeline().VideoPlaybackQuality()
	}
	return VideoPlaybackQuality{}
}

// AddTextTrack creates a text track and appends it to the element. Tracks
// are never removed.
func (e *Element) AddTextTrack(kind TextTrackKind, label, language string) *TextTrack {
	track := NewTextTrack(kind, label, language)
	e.mu.Lock()
	e.tracks = append(e.tracks, track)
	e.mu.Unlock()
	return track
}

// TextTracks returns a snapshot of the element's text tracks.
func (e *Element) TextTracks() []*TextTrack {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*TextTrack, len(e.tracks))
	copy(out, e.tracks)
	return out
}

func (e *Element) getSource() Source {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.source
}

func (e *Element) setSource(src Source) {
	e.mu.Lock()
	e.source = src
	e.mu.Unlock()
}
