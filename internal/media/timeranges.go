package media

// TimeRange is a half-open interval of media time, in seconds.
type TimeRange struct {
	Start float64
	End   float64
}

// TimeRanges mirrors the DOM TimeRanges object.
type TimeRanges []TimeRange

// Length returns the number of ranges.
func (r TimeRanges) Length() int { return len(r) }

// Contains reports whether t falls inside any range.
func (r TimeRanges) Contains(t float64) bool {
	for _, rng := range r {
		if t >= rng.Start && t < rng.End {
			return true
		}
	}
	return false
}

// VideoPlaybackQuality mirrors the DOM VideoPlaybackQuality dictionary.
type VideoPlaybackQuality struct {
	CreationTime         float64
	TotalVideoFrames     uint64
	DroppedVideoFrames   uint64
	CorruptedVideoFrames uint64
}
