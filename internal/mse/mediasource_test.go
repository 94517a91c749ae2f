// internal/mse/mediasource_test.go
package mse

import (
	"errors"
	"testing"
	"time"

	"github.com/llehouerou/mediahost/internal/media"
	"github.com/llehouerou/mediahost/internal/pipeline"
)

type registryFixture struct {
	registry *Registry
	clock    *pipeline.ManualClock
	element  *media.Element
	recorder *media.EventRecorder
}

func newRegistryFixture(t *testing.T) *registryFixture {
	t.Helper()
	f := &registryFixture{
		clock:    &pipeline.ManualClock{},
		recorder: media.NewEventRecorder(),
	}
	f.registry = NewRegistry(f.clock)
	f.element = media.New(f.registry, f.recorder)
	t.Cleanup(func() { _ = f.element.Close() })
	f.registry.AddElement(f.element)
	return f
}

// attach registers a source for the URL and wires the element to it.
func (f *registryFixture) attach(t *testing.T, url string) *MediaSource {
	t.Helper()
	ms := f.registry.CreateMediaSource(url)
	if err := f.element.SetSource(url); err != nil {
		t.Fatalf("SetSource(%q) = %v", url, err)
	}
	f.recorder.Reset()
	return ms
}

func TestRegistry_FindSource(t *testing.T) {
	r := NewRegistry(&pipeline.ManualClock{})

	if _, ok := r.FindSource("mem://missing"); ok {
		t.Error("FindSource() found a source in an empty registry")
	}

	ms := r.CreateMediaSource("mem://clip")
	got, ok := r.FindSource("mem://clip")
	if !ok {
		t.Fatal("FindSource() = false for a registered URL")
	}
	if got != media.Source(ms) {
		t.Error("FindSource() returned a different source")
	}
}

func TestRegistry_IsTypeSupported(t *testing.T) {
	r := NewRegistry(&pipeline.ManualClock{})

	tests := []struct {
		mimeType string
		want     bool
	}{
		{"video/mp4", true},
		{"audio/mp4", true},
		{"video/webm", true},
		{"audio/webm", true},
		{"Video/MP4", true},
		{"video/mp4; codecs=\"avc1.42E01E\"", true},
		{" video/webm ; codecs=vp9", true},
		{"video/ogg", false},
		{"text/vtt", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := r.IsTypeSupported(tt.mimeType); got != tt.want {
			t.Errorf("IsTypeSupported(%q) = %v, want %v", tt.mimeType, got, tt.want)
		}
	}
}

func TestMediaSource_OpenClose(t *testing.T) {
	f := newRegistryFixture(t)
	ms := f.registry.CreateMediaSource("mem://clip")

	if got := ms.State(); got != SourceClosed {
		t.Errorf("State() = %v before attach, want closed", got)
	}

	if err := f.element.SetSource("mem://clip"); err != nil {
		t.Fatalf("SetSource() = %v", err)
	}
	if got := ms.State(); got != SourceOpen {
		t.Errorf("State() = %v after attach, want open", got)
	}
	if got := ms.Volume(); got != 1 {
		t.Errorf("Volume() = %v after attach, want the element's volume", got)
	}

	f.element.Load()
	if got := ms.State(); got != SourceClosed {
		t.Errorf("State() = %v after detach, want closed", got)
	}
}

func TestMediaSource_ForwardsStatusToElement(t *testing.T) {
	f := newRegistryFixture(t)
	ms := f.attach(t, "mem://clip")

	ms.DoneInitializing()

	if got := f.element.PipelineStatus(); got != media.StatusPaused {
		t.Errorf("element status = %v after DoneInitializing, want Paused", got)
	}

	f.element.Play()
	if got := f.element.PipelineStatus(); got != media.StatusPlaying {
		t.Errorf("element status = %v after Play, want Playing", got)
	}
}

func TestMediaSource_ForwardsReadyStateToElement(t *testing.T) {
	f := newRegistryFixture(t)
	ms := f.attach(t, "mem://clip")

	ms.ReportReadyState(media.HaveMetadata)

	if got := f.element.ReadyState(); got != media.HaveMetadata {
		t.Errorf("element ready state = %v, want HaveMetadata", got)
	}
	want := []media.EventType{media.EventLoadedMetadata, media.EventReadyStateChange}
	got := f.recorder.Events()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestMediaSource_ReportsIgnoredAfterElementRemoved(t *testing.T) {
	f := newRegistryFixture(t)
	ms := f.attach(t, "mem://clip")

	f.registry.RemoveElement(f.element.ID())

	// Must not panic; the element is simply unreachable.
	ms.DoneInitializing()
	ms.ReportReadyState(media.HaveEnoughData)

	if got := f.element.ReadyState(); got != media.HaveNothing {
		t.Errorf("removed element ready state = %v, want HaveNothing", got)
	}
}

func TestMediaSource_TransportDelegatesToPipeline(t *testing.T) {
	f := newRegistryFixture(t)
	ms := f.attach(t, "mem://clip")
	ms.DoneInitializing()
	ms.SetDuration(120)

	f.element.Play()
	f.clock.Advance(30 * time.Second)

	if got := f.element.CurrentTime(); got != 30 {
		t.Errorf("CurrentTime() = %v, want 30", got)
	}
	if got := f.element.Duration(); got != 120 {
		t.Errorf("Duration() = %v, want 120", got)
	}

	f.element.SetCurrentTime(60)
	if !f.element.Seeking() {
		t.Error("Seeking() = false right after SetCurrentTime")
	}
	ms.CanPlay()
	if f.element.Seeking() {
		t.Error("Seeking() = true after CanPlay resolved the seek")
	}
	if got := f.element.CurrentTime(); got != 60 {
		t.Errorf("CurrentTime() = %v after seek, want 60", got)
	}
}

func TestMediaSource_EndOfStream(t *testing.T) {
	f := newRegistryFixture(t)
	ms := f.attach(t, "mem://clip")
	ms.DoneInitializing()
	ms.SetDuration(10)
	f.element.Play()
	f.clock.Advance(10 * time.Second)
	f.recorder.Reset()

	ms.EndOfStream()

	if got := ms.State(); got != SourceEnded {
		t.Errorf("State() = %v, want ended", got)
	}
	if !f.element.Ended() {
		t.Error("Ended() = false after EndOfStream")
	}
	want := []media.EventType{media.EventPause, media.EventEnded}
	got := f.recorder.Events()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestMediaSource_ReportError(t *testing.T) {
	f := newRegistryFixture(t)
	ms := f.attach(t, "mem://clip")
	ms.DoneInitializing()

	ms.ReportError(&media.MediaError{Code: media.ErrCodeDecode, Message: "bad frame"})

	if got := f.element.PipelineStatus(); got != media.StatusErrored {
		t.Errorf("element status = %v, want Errored", got)
	}
	err := f.element.Err()
	if err == nil {
		t.Fatal("Err() = nil after ReportError")
	}
	if err.Code != media.ErrCodeDecode {
		t.Errorf("Err().Code = %v, want ErrCodeDecode", err.Code)
	}

	// Wrapped plain errors surface as decode errors.
	f2 := newRegistryFixture(t)
	ms2 := f2.attach(t, "mem://clip2")
	ms2.DoneInitializing()
	ms2.ReportError(errors.New("demuxer gave up"))
	if err := f2.element.Err(); err == nil || err.Code != media.ErrCodeDecode {
		t.Errorf("Err() = %v, want a decode MediaError", err)
	}
}

func TestMediaSource_BufferedAndQuality(t *testing.T) {
	f := newRegistryFixture(t)
	ms := f.attach(t, "mem://clip")

	ms.SetBuffered(media.TimeRanges{{Start: 0, End: 12.5}})
	ms.AddFrames(100, 2, 0)
	ms.AddFrames(50, 0, 1)

	buf := f.element.Buffered()
	if len(buf) != 1 || buf[0].End != 12.5 {
		t.Errorf("Buffered() = %v, want [{0 12.5}]", buf)
	}
	q := f.element.VideoPlaybackQuality()
	if q.TotalVideoFrames != 150 || q.DroppedVideoFrames != 2 || q.CorruptedVideoFrames != 1 {
		t.Errorf("VideoPlaybackQuality() = %+v, want 150/2/1", q)
	}
}
