package annotation

import "sort"

// Interval is a single labeled time range in seconds.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TimeAnnotation is a set of speaker-labeled time intervals over one logical
// stream identity. It is mutated only while a merge accumulates chunks; once
// returned to a caller it must be treated as immutable.
type TimeAnnotation struct {
	URI    string
	tracks map[string][]Interval
}

// NewTimeAnnotation returns an empty annotation for the given stream identity.
func NewTimeAnnotation(uri string) *TimeAnnotation {
	return &TimeAnnotation{
		URI:    uri,
		tracks: make(map[string][]Interval),
	}
}

// Add records an interval for a speaker label.
func (a *TimeAnnotation) Add(label string, iv Interval) {
	a.tracks[label] = append(a.tracks[label], iv)
}

// Update unions another annotation's intervals into this one. Later intervals
// may extend regions already present for a label; disjoint prior regions are
// never erased.
func (a *TimeAnnotation) Update(other *TimeAnnotation) {
	for label, intervals := range other.tracks {
		a.tracks[label] = append(a.tracks[label], intervals...)
	}
}

// Labels returns the speaker labels present, sorted for deterministic output.
func (a *TimeAnnotation) Labels() []string {
	labels := make([]string, 0, len(a.tracks))
	for label := range a.tracks {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Intervals returns the intervals recorded for a label, sorted by start time.
func (a *TimeAnnotation) Intervals(label string) []Interval {
	intervals := make([]Interval, len(a.tracks[label]))
	copy(intervals, a.tracks[label])
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].Start < intervals[j].Start })
	return intervals
}

// LabeledInterval pairs an interval with its speaker label.
type LabeledInterval struct {
	Interval
	Label string
}

// Itertracks returns every labeled interval in chronological order, ties
// broken by label.
func (a *TimeAnnotation) Itertracks() []LabeledInterval {
	var out []LabeledInterval
	for label, intervals := range a.tracks {
		for _, iv := range intervals {
			out = append(out, LabeledInterval{Interval: iv, Label: label})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Support merges, independently per speaker label, intervals whose gap is at
// most collar seconds. The merged interval spans the min start and max end of
// the pair. A fresh annotation is returned; the receiver is not modified.
func (a *TimeAnnotation) Support(collar float64) *TimeAnnotation {
	out := NewTimeAnnotation(a.URI)
	for label := range a.tracks {
		intervals := a.Intervals(label)
		if len(intervals) == 0 {
			continue
		}
		merged := []Interval{intervals[0]}
		for _, iv := range intervals[1:] {
			last := &merged[len(merged)-1]
			if iv.Start-last.End <= collar {
				if iv.End > last.End {
					last.End = iv.End
				}
				continue
			}
			merged = append(merged, iv)
		}
		out.tracks[label] = merged
	}
	return out
}
