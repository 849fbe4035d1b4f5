package events

import "sort"

// Group is one cluster of temporally close detections, treated as a single event.
type Group struct {
	Ordinal    int       `yaml:"ordinal"` // 1-based
	Timestamps []float64 `yaml:"timestamps"`
}

// First returns the earliest timestamp of the group.
func (g Group) First() float64 { return g.Timestamps[0] }

// Last returns the latest timestamp of the group.
func (g Group) Last() float64 { return g.Timestamps[len(g.Timestamps)-1] }

// GroupByGap clusters timestamps by proximity. Consecutive members of a group are at
// most maxGap apart (equality merges) and adjacent groups are separated by more
// than maxGap. The input is sorted on a copy; an empty input yields no groups.
func GroupByGap(timestamps []float64, maxGap float64) []Group {
	if len(timestamps) == 0 {
		return nil
	}

	sorted := append([]float64(nil), timestamps...)
	sort.Float64s(sorted)

	var groups []Group
	current := []float64{sorted[0]}
	for _, t := range sorted[1:] {
		if t-current[len(current)-1] <= maxGap {
			current = append(current, t)
			continue
		}
		groups = append(groups, Group{Ordinal: len(groups) + 1, Timestamps: current})
		current = []float64{t}
	}
	groups = append(groups, Group{Ordinal: len(groups) + 1, Timestamps: current})

	return groups
}

// Flatten concatenates the members of groups back into one sequence.
func Flatten(groups []Group) []float64 {
	var out []float64
	for _, g := range groups {
		out = append(out, g.Timestamps...)
	}
	return out
}
