package media

import "sync"

// TextTrackKind classifies a text track.
type TextTrackKind string

const (
	KindSubtitles    TextTrackKind = "subtitles"
	KindCaptions     TextTrackKind = "captions"
	KindDescriptions TextTrackKind = "descriptions"
	KindChapters     TextTrackKind = "chapters"
	KindMetadata     TextTrackKind = "metadata"
)

// Cue is a time-bounded annotation on a text track. Times are in seconds;
// a cue is active while StartTime <= t < EndTime.
type Cue struct {
	ID        string
	StartTime float64
	EndTime   float64
	Text      string
}

// TextTrack is an ordered collection of cues. Cues are added from the
// owning goroutine; activation is evaluated by the element's cue-check
// loop, so the cue list and active set are guarded by a mutex.
type TextTrack struct {
	Kind     TextTrackKind
	Label    string
	Language string

	mu          sync.Mutex
	cues        []Cue
	active      []Cue
	onCueChange func(active []Cue)
}

// NewTextTrack creates an empty text track.
func NewTextTrack(kind TextTrackKind, label, language string) *TextTrack {
	return &TextTrack{Kind: kind, Label: label, Language: language}
}

// AddCue appends a cue to the track.
func (t *TextTrack) AddCue(c Cue) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cues = append(t.cues, c)
}

// Cues returns a copy of all cues.
func (t *TextTrack) Cues() []Cue {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Cue, len(t.cues))
	copy(out, t.cues)
	return out
}

// ActiveCues returns a copy of the cues active at the last check.
func (t *TextTrack) ActiveCues() []Cue {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Cue, len(t.active))
	copy(out, t.active)
	return out
}

// OnCueChange registers the cue-change callback. The callback runs on the
// cue-check loop's goroutine.
func (t *TextTrack) OnCueChange(fn func(active []Cue)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onCueChange = fn
}

// CheckForCueChange re-evaluates the active cue set for the move from
// oldTime to newTime and fires the cue-change callback if it changed. A
// cue that both started and ended inside the interval counts as a change
// even though the sets before and after are equal.
func (t *TextTrack) CheckForCueChange(newTime, oldTime float64) {
	t.mu.Lock()

	var active []Cue
	skipped := false
	for _, c := range t.cues {
		if c.StartTime <= newTime && newTime < c.EndTime {
			active = append(active, c)
		} else if oldTime < c.StartTime && c.EndTime <= newTime {
			skipped = true
		}
	}

	changed := skipped || !sameCues(t.active, active)
	t.active = active
	fn := t.onCueChange
	t.mu.Unlock()

	if changed && fn != nil {
		fn(active)
	}
}

func sameCues(a, b []Cue) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
