// Package mse provides the media source binding: a registry of playable
// sources keyed by URL, each owning a pipeline manager and forwarding its
// reports to the element it is attached to. The registry is the arena for
// both sources and elements; a source references its element by ID and
// resolves it through the registry, never by holding the element itself.
package mse

import (
	"strings"
	"sync"

	"github.com/llehouerou/mediahost/internal/media"
	"github.com/llehouerou/mediahost/internal/pipeline"
)

// SourceState is the media source's own open/closed state.
type SourceState string

const (
	SourceClosed SourceState = "closed"
	SourceOpen   SourceState = "open"
	SourceEnded  SourceState = "ended"
)

// supportedBaseTypes are the container MIME types the binding accepts.
// A codecs parameter is tolerated and ignored.
var supportedBaseTypes = map[string]struct{}{
	"video/mp4":  {},
	"audio/mp4":  {},
	"video/webm": {},
	"audio/webm": {},
}

// Registry owns sources keyed by URL and elements keyed by ID.
type Registry struct {
	clock pipeline.Clock

	mu       sync.RWMutex
	sources  map[string]*MediaSource
	elements map[int64]*media.Element
}

// NewRegistry creates an empty registry. The clock drives every source's
// pipeline manager.
func NewRegistry(clock pipeline.Clock) *Registry {
	return &Registry{
		clock:    clock,
		sources:  make(map[string]*MediaSource),
		elements: make(map[int64]*media.Element),
	}
}

// AddElement makes an element resolvable by the sources in this registry.
func (r *Registry) AddElement(e *media.Element) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.elements[e.ID()] = e
}

// RemoveElement drops an element from the arena. Reports from a source
// still bound to it are discarded afterwards.
func (r *Registry) RemoveElement(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.elements, id)
}

// CreateMediaSource creates a source and registers it under its URL.
func (r *Registry) CreateMediaSource(url string) *MediaSource {
	ms := &MediaSource{
		url:      url,
		registry: r,
		state:    SourceClosed,
		volume:   1,
	}
	ms.manager = pipeline.NewManager(ms.forwardStatus, nil, r.clock)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[url] = ms
	return ms
}

// FindSource resolves a URL to a registered source.
func (r *Registry) FindSource(url string) (media.Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ms, ok := r.sources[url]
	if !ok {
		return nil, false
	}
	return ms, true
}

// IsTypeSupported reports whether the base MIME type is playable.
func (r *Registry) IsTypeSupported(mimeType string) bool {
	base, _, _ := strings.Cut(mimeType, ";")
	base = strings.ToLower(strings.TrimSpace(base))
	_, ok := supportedBaseTypes[base]
	return ok
}

func (r *Registry) element(id int64) *media.Element {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.elements[id]
}

// Verify Registry implements the element's finder at compile time.
var _ media.SourceFinder = (*Registry)(nil)

// MediaSource is one playable source. It implements both the element's
// Source and Pipeline interfaces: transport commands delegate to its
// pipeline manager, while the feed-side methods below let the hosting
// code stand in for the demuxer (report duration, buffered ranges, ready
// state, end of stream and errors).
type MediaSource struct {
	url      string
	registry *Registry
	manager  *pipeline.Manager

	mu       sync.Mutex
	state    SourceState
	attached int64
	volume   float64
	buffered media.TimeRanges
	quality  media.VideoPlaybackQuality
}

// URL returns the source URL.
func (ms *MediaSource) URL() string { return ms.url }

// State returns the source's open/closed state.
func (ms *MediaSource) State() SourceState {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.state
}

// Open binds the source to an element.
func (ms *MediaSource) Open(elementID int64) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.attached = elementID
	ms.state = SourceOpen
}

// Close detaches the source from its element.
func (ms *MediaSource) Close() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.attached = 0
	ms.state = SourceClosed
}

// Pipeline returns the source's transport surface.
func (ms *MediaSource) Pipeline() media.Pipeline { return ms }

// Play delegates to the pipeline manager.
func (ms *MediaSource) Play() { ms.manager.Play() }

// Pause delegates to the pipeline manager.
func (ms *MediaSource) Pause() { ms.manager.Pause() }

// CurrentTime returns the playhead position in seconds.
func (ms *MediaSource) CurrentTime() float64 { return ms.manager.CurrentTime() }

// SetCurrentTime seeks the pipeline.
func (ms *MediaSource) SetCurrentTime(t float64) { ms.manager.SetCurrentTime(t) }

// Duration returns the duration in seconds, NaN until reported.
func (ms *MediaSource) Duration() float64 { return ms.manager.Duration() }

// PlaybackRate returns the playback rate.
func (ms *MediaSource) PlaybackRate() float64 { return ms.manager.PlaybackRate() }

// SetPlaybackRate sets the playback rate.
func (ms *MediaSource) SetPlaybackRate(rate float64) { ms.manager.SetPlaybackRate(rate) }

// SetVolume stores the mute-aware volume pushed by the element.
func (ms *MediaSource) SetVolume(v float64) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.volume = v
}

// Volume returns the last volume pushed by the element.
func (ms *MediaSource) Volume() float64 {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.volume
}

// BufferedRanges returns the reported buffered ranges.
func (ms *MediaSource) BufferedRanges() media.TimeRanges {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.buffered
}

// VideoPlaybackQuality returns the frame counters.
func (ms *MediaSource) VideoPlaybackQuality() media.VideoPlaybackQuality {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.quality
}

// Feed-side API, standing in for the demuxer/renderer.

// SetDuration reports the media duration to the pipeline.
func (ms *MediaSource) SetDuration(duration float64) { ms.manager.SetDuration(duration) }

// SetBuffered reports the buffered ranges.
func (ms *MediaSource) SetBuffered(ranges media.TimeRanges) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.buffered = ranges
}

// DoneInitializing reports that initialization data is complete.
func (ms *MediaSource) DoneInitializing() { ms.manager.DoneInitializing() }

// CanPlay reports that enough content is available; resolves stalls and
// pending seeks.
func (ms *MediaSource) CanPlay() { ms.manager.CanPlay() }

// Stalled reports that playback ran out of content.
func (ms *MediaSource) Stalled() { ms.manager.Stalled() }

// ReportReadyState forwards a data-availability level to the attached
// element.
func (ms *MediaSource) ReportReadyState(state media.ReadyState) {
	if el := ms.element(); el != nil {
		el.SetReadyState(state)
	}
}

// EndOfStream marks the source ended and ends the pipeline.
func (ms *MediaSource) EndOfStream() {
	ms.mu.Lock()
	ms.state = SourceEnded
	ms.mu.Unlock()
	ms.manager.OnEnded()
}

// ReportError records a runtime media error on the attached element and
// stops the pipeline.
func (ms *MediaSource) ReportError(err error) {
	if el := ms.element(); el != nil {
		el.OnMediaError(err)
	}
	ms.manager.OnError()
}

// AddFrames accumulates playback-quality frame counters.
func (ms *MediaSource) AddFrames(total, dropped, corrupted uint64) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.quality.TotalVideoFrames += total
	ms.quality.DroppedVideoFrames += dropped
	ms.quality.CorruptedVideoFrames += corrupted
}

func (ms *MediaSource) forwardStatus(status media.PipelineStatus) {
	if el := ms.element(); el != nil {
		el.SetPipelineStatus(status)
	}
}

func (ms *MediaSource) element() *media.Element {
	ms.mu.Lock()
	id := ms.attached
	ms.mu.Unlock()
	if id == 0 {
		return nil
	}
	return ms.registry.element(id)
}

// Verify MediaSource implements the element's interfaces at compile time.
var (
	_ media.Source   = (*MediaSource)(nil)
	_ media.Pipeline = (*MediaSource)(nil)
)
