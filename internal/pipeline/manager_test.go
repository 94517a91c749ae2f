// internal/pipeline/manager_test.go
package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/llehouerou/mediahost/internal/media"
)

type managerFixture struct {
	manager *Manager
	clock   *ManualClock
	changes []media.PipelineStatus
	seeks   int
}

func newManagerFixture() *managerFixture {
	f := &managerFixture{clock: &ManualClock{}}
	f.manager = NewManager(
		func(s media.PipelineStatus) { f.changes = append(f.changes, s) },
		func() { f.seeks++ },
		f.clock,
	)
	return f
}

// ready moves the manager out of Initializing into Paused.
func (f *managerFixture) ready(t *testing.T) {
	t.Helper()
	f.manager.DoneInitializing()
	if got := f.manager.Status(); got != media.StatusPaused {
		t.Fatalf("Status() = %v after DoneInitializing, want Paused", got)
	}
	f.changes = nil
}

func TestManager_InitialState(t *testing.T) {
	f := newManagerFixture()

	if got := f.manager.Status(); got != media.StatusInitializing {
		t.Errorf("Status() = %v, want Initializing", got)
	}
	if !math.IsNaN(f.manager.Duration()) {
		t.Errorf("Duration() = %v, want NaN", f.manager.Duration())
	}
	if got := f.manager.CurrentTime(); got != 0 {
		t.Errorf("CurrentTime() = %v, want 0", got)
	}
	if got := f.manager.PlaybackRate(); got != 1 {
		t.Errorf("PlaybackRate() = %v, want 1", got)
	}
}

func TestManager_DoneInitializing(t *testing.T) {
	t.Run("without play request", func(t *testing.T) {
		f := newManagerFixture()
		f.manager.DoneInitializing()
		if got := f.manager.Status(); got != media.StatusPaused {
			t.Errorf("Status() = %v, want Paused", got)
		}
	})

	t.Run("with latched play request", func(t *testing.T) {
		f := newManagerFixture()
		f.manager.Play() // latched while Initializing
		if got := f.manager.Status(); got != media.StatusInitializing {
			t.Fatalf("Play during init changed status to %v", got)
		}
		f.manager.DoneInitializing()
		if got := f.manager.Status(); got != media.StatusPlaying {
			t.Errorf("Status() = %v, want Playing", got)
		}
	})

	t.Run("pause clears the latch", func(t *testing.T) {
		f := newManagerFixture()
		f.manager.Play()
		f.manager.Pause()
		f.manager.DoneInitializing()
		if got := f.manager.Status(); got != media.StatusPaused {
			t.Errorf("Status() = %v, want Paused", got)
		}
	})
}

func TestManager_TimeAdvancesWhilePlaying(t *testing.T) {
	f := newManagerFixture()
	f.ready(t)
	f.manager.SetDuration(100)

	f.manager.Play()
	f.clock.Advance(4 * time.Second)

	if got := f.manager.CurrentTime(); got != 4 {
		t.Errorf("CurrentTime() = %v, want 4", got)
	}

	f.manager.Pause()
	f.clock.Advance(10 * time.Second)

	if got := f.manager.CurrentTime(); got != 4 {
		t.Errorf("CurrentTime() = %v while paused, want 4", got)
	}
}

func TestManager_PlaybackRateScalesTime(t *testing.T) {
	f := newManagerFixture()
	f.ready(t)
	f.manager.SetDuration(100)
	f.manager.Play()

	f.clock.Advance(2 * time.Second)
	f.manager.SetPlaybackRate(2)
	f.clock.Advance(3 * time.Second)

	if got := f.manager.CurrentTime(); got != 8 {
		t.Errorf("CurrentTime() = %v, want 2 + 3*2 = 8", got)
	}
}

func TestManager_TimeClampedToDuration(t *testing.T) {
	f := newManagerFixture()
	f.ready(t)
	f.manager.SetDuration(5)
	f.manager.Play()

	f.clock.Advance(time.Minute)

	if got := f.manager.CurrentTime(); got != 5 {
		t.Errorf("CurrentTime() = %v, want clamped to 5", got)
	}
}

func TestManager_PlayPauseStatusChanges(t *testing.T) {
	f := newManagerFixture()
	f.ready(t)

	f.manager.Play()
	f.manager.Pause()

	want := []media.PipelineStatus{media.StatusPlaying, media.StatusPaused}
	if len(f.changes) != len(want) {
		t.Fatalf("changes = %v, want %v", f.changes, want)
	}
	for i := range want {
		if f.changes[i] != want[i] {
			t.Fatalf("changes = %v, want %v", f.changes, want)
		}
	}
}

func TestManager_SeekWhilePlaying(t *testing.T) {
	f := newManagerFixture()
	f.ready(t)
	f.manager.SetDuration(100)
	f.manager.Play()
	f.changes = nil

	f.manager.SetCurrentTime(42)

	if got := f.manager.Status(); got != media.StatusSeekingPlay {
		t.Errorf("Status() = %v, want SeekingPlay", got)
	}
	if got := f.manager.CurrentTime(); got != 42 {
		t.Errorf("CurrentTime() = %v, want 42", got)
	}
	if f.seeks != 1 {
		t.Errorf("seek callbacks = %d, want 1", f.seeks)
	}

	f.manager.CanPlay()
	if got := f.manager.Status(); got != media.StatusPlaying {
		t.Errorf("Status() = %v after CanPlay, want Playing", got)
	}
}

func TestManager_SeekWhilePausedStaysPaused(t *testing.T) {
	f := newManagerFixture()
	f.ready(t)
	f.manager.SetDuration(100)

	f.manager.SetCurrentTime(10)

	if got := f.manager.Status(); got != media.StatusSeekingPause {
		t.Errorf("Status() = %v, want SeekingPause", got)
	}

	f.manager.CanPlay()
	if got := f.manager.Status(); got != media.StatusPaused {
		t.Errorf("Status() = %v after CanPlay, want Paused", got)
	}
}

func TestManager_ConsecutiveSeeksRenotify(t *testing.T) {
	f := newManagerFixture()
	f.ready(t)
	f.manager.SetDuration(100)
	f.manager.Play()
	f.changes = nil

	f.manager.SetCurrentTime(10)
	f.manager.SetCurrentTime(20)

	want := []media.PipelineStatus{media.StatusSeekingPlay, media.StatusSeekingPlay}
	if len(f.changes) != len(want) {
		t.Fatalf("changes = %v, want two SeekingPlay notifications", f.changes)
	}
	if f.seeks != 2 {
		t.Errorf("seek callbacks = %d, want 2", f.seeks)
	}
}

func TestManager_SeekClampedToDuration(t *testing.T) {
	f := newManagerFixture()
	f.ready(t)
	f.manager.SetDuration(30)

	f.manager.SetCurrentTime(1000)

	if got := f.manager.CurrentTime(); got != 30 {
		t.Errorf("CurrentTime() = %v, want clamped to 30", got)
	}
}

func TestManager_SeekIgnoredWhileInitializing(t *testing.T) {
	f := newManagerFixture()

	f.manager.SetCurrentTime(10)

	if got := f.manager.Status(); got != media.StatusInitializing {
		t.Errorf("Status() = %v, want Initializing", got)
	}
	if f.seeks != 0 {
		t.Errorf("seek callbacks = %d, want 0", f.seeks)
	}
}

func TestManager_ShrinkingDurationSeeks(t *testing.T) {
	f := newManagerFixture()
	f.ready(t)
	f.manager.SetDuration(100)
	f.manager.Play()
	f.clock.Advance(50 * time.Second)
	f.changes = nil

	f.manager.SetDuration(20)

	if got := f.manager.Status(); got != media.StatusSeekingPlay {
		t.Errorf("Status() = %v, want SeekingPlay", got)
	}
	if got := f.manager.CurrentTime(); got != 20 {
		t.Errorf("CurrentTime() = %v, want 20", got)
	}
	if f.seeks != 1 {
		t.Errorf("seek callbacks = %d, want 1", f.seeks)
	}
}

func TestManager_Stalled(t *testing.T) {
	f := newManagerFixture()
	f.ready(t)
	f.manager.Play()
	f.clock.Advance(2 * time.Second)
	f.manager.SetDuration(100)

	f.manager.Stalled()

	if got := f.manager.Status(); got != media.StatusStalled {
		t.Errorf("Status() = %v, want Stalled", got)
	}
	f.clock.Advance(10 * time.Second)
	if got := f.manager.CurrentTime(); got != 2 {
		t.Errorf("CurrentTime() = %v while stalled, want 2", got)
	}

	// Stalled while paused is ignored.
	f.manager.CanPlay()
	f.manager.Pause()
	f.manager.Stalled()
	if got := f.manager.Status(); got != media.StatusPaused {
		t.Errorf("Status() = %v, want Paused", got)
	}
}

func TestManager_EndedAndReplay(t *testing.T) {
	f := newManagerFixture()
	f.ready(t)
	f.manager.SetDuration(10)
	f.manager.Play()
	f.clock.Advance(20 * time.Second)

	f.manager.OnEnded()

	if got := f.manager.Status(); got != media.StatusEnded {
		t.Errorf("Status() = %v, want Ended", got)
	}
	if got := f.manager.CurrentTime(); got != 10 {
		t.Errorf("CurrentTime() = %v, want duration", got)
	}

	// Play from Ended restarts at zero through a seek.
	f.manager.Play()
	if got := f.manager.Status(); got != media.StatusSeekingPlay {
		t.Errorf("Status() = %v, want SeekingPlay", got)
	}
	if got := f.manager.CurrentTime(); got != 0 {
		t.Errorf("CurrentTime() = %v, want 0", got)
	}
}

func TestManager_ErrorIsTerminal(t *testing.T) {
	f := newManagerFixture()
	f.ready(t)
	f.manager.Play()

	f.manager.OnError()
	f.manager.OnError() // second report is swallowed
	f.manager.Play()
	f.manager.SetCurrentTime(5)

	if got := f.manager.Status(); got != media.StatusErrored {
		t.Errorf("Status() = %v, want Errored", got)
	}
	var errored int
	for _, s := range f.changes {
		if s == media.StatusErrored {
			errored++
		}
	}
	if errored != 1 {
		t.Errorf("Errored notifications = %d, want 1", errored)
	}
}
