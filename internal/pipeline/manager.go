package pipeline

import (
	"math"
	"sync"
	"time"

	"github.com/llehouerou/mediahost/internal/media"
)

// Manager tracks the playhead and the pipeline status. Current time is
// modeled from wall-clock time: at every state change a sync point stores
// the media time together with the monotonic time, and while Playing the
// playhead is the stored media time plus scaled elapsed time, clamped to
// the duration. Duration is NaN until reported.
//
// Manager is safe for concurrent use. The status callback is invoked
// without the lock held, so it may call back into the manager; if several
// goroutines change state at once the callback order is unspecified.
type Manager struct {
	mu              sync.Mutex
	onStatusChanged func(media.PipelineStatus)
	onSeek          func()
	clock           Clock

	status        media.PipelineStatus
	prevMediaTime float64
	prevWallTime  time.Duration
	playbackRate  float64
	duration      float64
	autoplay      bool
}

// NewManager creates a manager in the Initializing status. onStatusChanged
// and onSeek may be nil.
func NewManager(onStatusChanged func(media.PipelineStatus), onSeek func(), clock Clock) *Manager {
	return &Manager{
		onStatusChanged: onStatusChanged,
		onSeek:          onSeek,
		clock:           clock,
		status:          media.StatusInitializing,
		prevWallTime:    clock.Now(),
		playbackRate:    1,
		duration:        math.NaN(),
	}
}

// DoneInitializing reports that initialization data is complete. The
// status becomes Playing if a play request arrived while initializing,
// Paused otherwise.
func (m *Manager) DoneInitializing() {
	var notify media.PipelineStatus
	changed := false
	m.mu.Lock()
	if m.status == media.StatusInitializing {
		m.syncPoint()
		if m.autoplay {
			m.status = media.StatusPlaying
		} else {
			m.status = media.StatusPaused
		}
		notify, changed = m.status, true
	}
	m.mu.Unlock()
	if changed {
		m.notify(notify)
	}
}

// Status returns the current pipeline status.
func (m *Manager) Status() media.PipelineStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Duration returns the duration in seconds, NaN until known.
func (m *Manager) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

// SetDuration sets the duration. If the playhead is past the new
// duration it is clamped there, which starts a seek.
func (m *Manager) SetDuration(duration float64) {
	var notify media.PipelineStatus
	changed := false
	seeked := false
	m.mu.Lock()
	m.duration = duration
	wall := m.clock.Now()
	if !math.IsNaN(duration) && m.timeFor(wall) > duration {
		seeked = true
		m.prevMediaTime = duration
		m.prevWallTime = wall
		switch m.status {
		case media.StatusPlaying, media.StatusStalled:
			m.status = media.StatusSeekingPlay
			notify, changed = m.status, true
		case media.StatusPaused, media.StatusEnded:
			m.status = media.StatusSeekingPause
			notify, changed = m.status, true
		}
	}
	m.mu.Unlock()
	if seeked && m.onSeek != nil {
		m.onSeek()
	}
	if changed {
		m.notify(notify)
	}
}

// CurrentTime returns the playhead position in seconds.
func (m *Manager) CurrentTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timeFor(m.clock.Now())
}

// SetCurrentTime seeks to the given time, entering SeekingPlay or
// SeekingPause depending on the current status. A seek while already
// seeking re-enters the seeking status, which re-fires the element's
// seeking event. Ignored while Initializing or Errored.
func (m *Manager) SetCurrentTime(t float64) {
	var notify media.PipelineStatus
	changed := false
	m.mu.Lock()
	if m.status != media.StatusInitializing && m.status != media.StatusErrored {
		if math.IsNaN(m.duration) {
			m.prevMediaTime = t
		} else {
			m.prevMediaTime = math.Min(m.duration, t)
		}
		m.prevWallTime = m.clock.Now()
		switch m.status {
		case media.StatusPlaying, media.StatusStalled, media.StatusSeekingPlay:
			m.status = media.StatusSeekingPlay
		case media.StatusPaused, media.StatusEnded, media.StatusSeekingPause:
			m.status = media.StatusSeekingPause
		}
		notify, changed = m.status, true
	}
	m.mu.Unlock()
	if changed {
		if m.onSeek != nil {
			m.onSeek()
		}
		m.notify(notify)
	}
}

// PlaybackRate returns the playback rate.
func (m *Manager) PlaybackRate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playbackRate
}

// SetPlaybackRate sets the playback rate, effective from the current
// playhead position.
func (m *Manager) SetPlaybackRate(rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncPoint()
	m.playbackRate = rate
}

// Play starts or resumes playback. While Initializing it only latches
// the request for DoneInitializing; from Ended it restarts at zero.
func (m *Manager) Play() {
	var notify media.PipelineStatus
	changed := false
	seeked := false
	m.mu.Lock()
	m.syncPoint()
	switch m.status {
	case media.StatusPaused:
		m.status = media.StatusPlaying
		notify, changed = m.status, true
	case media.StatusEnded:
		seeked = true
		m.prevMediaTime = 0
		m.prevWallTime = m.clock.Now()
		m.status = media.StatusSeekingPlay
		notify, changed = m.status, true
	case media.StatusSeekingPause:
		m.status = media.StatusSeekingPlay
		notify, changed = m.status, true
	case media.StatusInitializing:
		m.autoplay = true
	}
	m.mu.Unlock()
	if seeked && m.onSeek != nil {
		m.onSeek()
	}
	if changed {
		m.notify(notify)
	}
}

// Pause pauses playback. While Initializing it clears a latched play
// request.
func (m *Manager) Pause() {
	var notify media.PipelineStatus
	changed := false
	m.mu.Lock()
	m.syncPoint()
	switch m.status {
	case media.StatusPlaying, media.StatusStalled:
		m.status = media.StatusPaused
		notify, changed = m.status, true
	case media.StatusSeekingPlay:
		m.status = media.StatusSeekingPause
		notify, changed = m.status, true
	case media.StatusInitializing:
		m.autoplay = false
	}
	m.mu.Unlock()
	if changed {
		m.notify(notify)
	}
}

// Stalled reports that playback ran out of content. Only meaningful
// while Playing; a paused pipeline stays Paused.
func (m *Manager) Stalled() {
	changed := false
	m.mu.Lock()
	if m.status == media.StatusPlaying {
		m.syncPoint()
		m.status = media.StatusStalled
		changed = true
	}
	m.mu.Unlock()
	if changed {
		m.notify(media.StatusStalled)
	}
}

// CanPlay reports that enough content is available to move forward. It
// resolves Stalled and the seeking statuses.
func (m *Manager) CanPlay() {
	var notify media.PipelineStatus
	changed := false
	m.mu.Lock()
	m.syncPoint()
	switch m.status {
	case media.StatusStalled, media.StatusSeekingPlay:
		m.status = media.StatusPlaying
		notify, changed = m.status, true
	case media.StatusSeekingPause:
		m.status = media.StatusPaused
		notify, changed = m.status, true
	}
	m.mu.Unlock()
	if changed {
		m.notify(notify)
	}
}

// OnEnded clamps the playhead to the duration and enters Ended.
func (m *Manager) OnEnded() {
	changed := false
	m.mu.Lock()
	if m.status != media.StatusEnded && m.status != media.StatusErrored {
		m.prevWallTime = m.clock.Now()
		if !math.IsNaN(m.duration) {
			m.prevMediaTime = m.duration
		}
		m.status = media.StatusEnded
		changed = true
	}
	m.mu.Unlock()
	if changed {
		m.notify(media.StatusEnded)
	}
}

// OnError stops the pipeline permanently.
func (m *Manager) OnError() {
	changed := false
	m.mu.Lock()
	if m.status != media.StatusErrored {
		m.syncPoint()
		m.status = media.StatusErrored
		changed = true
	}
	m.mu.Unlock()
	if changed {
		m.notify(media.StatusErrored)
	}
}

func (m *Manager) notify(status media.PipelineStatus) {
	if m.onStatusChanged != nil {
		m.onStatusChanged(status)
	}
}

// timeFor returns the media time at the given wall time. Caller holds mu.
func (m *Manager) timeFor(wall time.Duration) float64 {
	if m.status != media.StatusPlaying {
		return m.prevMediaTime
	}
	t := m.prevMediaTime + (wall-m.prevWallTime).Seconds()*m.playbackRate
	if math.IsNaN(m.duration) {
		return t
	}
	return math.Min(m.duration, t)
}

// syncPoint re-anchors the stored media time at the current wall time so
// later reads accumulate less rounding error. Caller holds mu.
func (m *Manager) syncPoint() {
	wall := m.clock.Now()
	m.prevMediaTime = m.timeFor(wall)
	m.prevWallTime = wall
}
