// internal/media/mock.go
package media

import "sync"

// MockPipeline is a test double for Pipeline. It records commands and
// serves canned values.
type MockPipeline struct {
	playCalls   int
	pauseCalls  int
	seekCalls   []float64
	rateCalls   []float64
	volumeCalls []float64

	currentTime float64
	duration    float64
	rate        float64
	buffered    TimeRanges
	quality     VideoPlaybackQuality
}

// NewMockPipeline creates a mock pipeline with rate 1.
func NewMockPipeline() *MockPipeline {
	return &MockPipeline{rate: 1}
}

func (m *MockPipeline) Play()  { m.playCalls++ }
func (m *MockPipeline) Pause() { m.pauseCalls++ }

func (m *MockPipeline) CurrentTime() float64 { return m.currentTime }

func (m *MockPipeline) SetCurrentTime(t float64) {
	m.seekCalls = append(m.seekCalls, t)
	m.currentTime = t
}

func (m *MockPipeline) Duration() float64 { return m.duration }

func (m *MockPipeline) PlaybackRate() float64 { return m.rate }

func (m *MockPipeline) SetPlaybackRate(rate float64) {
	m.rateCalls = append(m.rateCalls, rate)
	m.rate = rate
}

func (m *MockPipeline) SetVolume(v float64) {
	m.volumeCalls = append(m.volumeCalls, v)
}

func (m *MockPipeline) BufferedRanges() TimeRanges { return m.buffered }

func (m *MockPipeline) VideoPlaybackQuality() VideoPlaybackQuality { return m.quality }

// Test helpers

func (m *MockPipeline) SetCannedTime(t float64)        { m.currentTime = t }
func (m *MockPipeline) SetCannedDuration(d float64)    { m.duration = d }
func (m *MockPipeline) SetCannedBuffered(r TimeRanges) { m.buffered = r }

func (m *MockPipeline) PlayCalls() int        { return m.playCalls }
func (m *MockPipeline) PauseCalls() int       { return m.pauseCalls }
func (m *MockPipeline) SeekCalls() []float64  { return m.seekCalls }
func (m *MockPipeline) VolumeCalls() []float64 { return m.volumeCalls }

// MockSource is a test double for Source.
type MockSource struct {
	url        string
	pipeline   *MockPipeline
	openCalls  []int64
	closeCalls int
}

// NewMockSource creates a mock source with its own mock pipeline.
func NewMockSource(url string) *MockSource {
	return &MockSource{url: url, pipeline: NewMockPipeline()}
}

func (m *MockSource) Open(elementID int64) { m.openCalls = append(m.openCalls, elementID) }

func (m *MockSource) Close() { m.closeCalls++ }

func (m *MockSource) Pipeline() Pipeline { return m.pipeline }

func (m *MockSource) Duration() float64 { return m.pipeline.duration }

func (m *MockSource) URL() string { return m.url }

// Test helpers

func (m *MockSource) MockPipeline() *MockPipeline { return m.pipeline }
func (m *MockSource) OpenCalls() []int64          { return m.openCalls }
func (m *MockSource) CloseCalls() int             { return m.closeCalls }

// MockFinder is a test double for SourceFinder backed by a URL map.
type MockFinder struct {
	sources map[string]*MockSource
	types   map[string]bool
}

// NewMockFinder creates an empty finder.
func NewMockFinder() *MockFinder {
	return &MockFinder{
		sources: make(map[string]*MockSource),
		types:   make(map[string]bool),
	}
}

// AddSource registers a mock source under its URL.
func (m *MockFinder) AddSource(src *MockSource) { m.sources[src.url] = src }

// SupportType marks a MIME type as supported.
func (m *MockFinder) SupportType(mimeType string) { m.types[mimeType] = true }

func (m *MockFinder) FindSource(url string) (Source, bool) {
	src, ok := m.sources[url]
	if !ok {
		return nil, false
	}
	return src, true
}

func (m *MockFinder) IsTypeSupported(mimeType string) bool { return m.types[mimeType] }

// EventRecorder is a Scheduler that records the exact event sequence.
type EventRecorder struct {
	mu     sync.Mutex
	events []EventType
}

// NewEventRecorder creates an empty recorder.
func NewEventRecorder() *EventRecorder { return &EventRecorder{} }

func (r *EventRecorder) Schedule(t EventType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, t)
}

// Events returns the recorded sequence.
func (r *EventRecorder) Events() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	copy(out, r.events)
	return out
}

// Reset clears the recorded sequence.
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Verify mocks implement their interfaces at compile time.
var (
	_ Pipeline     = (*MockPipeline)(nil)
	_ Source       = (*MockSource)(nil)
	_ SourceFinder = (*MockFinder)(nil)
	_ Scheduler    = (*EventRecorder)(nil)
)
