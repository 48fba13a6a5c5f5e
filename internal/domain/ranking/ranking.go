// Package ranking assigns standard competition ranks to player values.
//
// Ordering: value DESC, then ID ASC (deterministic). Ties share a rank and
// the next distinct value ranks at 1 + the number of entries strictly
// ahead of it, so [10, 10, 5] ranks as [1, 1, 3].
package ranking

import "sort"

// Entry is one player's value for a single statistic.
type Entry struct {
	ID    int64
	Value int64
	Rank  int
}

// Sort orders entries by value descending and id ascending.
func Sort(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].ID < entries[j].ID
	})
}

// Assign sorts entries and sets Rank on each of them.
func Assign(entries []Entry) {
	if len(entries) == 0 {
		return
	}
	Sort(entries)

	for i := 0; i < len(entries); {
		// Everything before position i is strictly greater.
		rank := i + 1
		j := i
		for j < len(entries) && entries[j].Value == entries[i].Value {
			entries[j].Rank = rank
			j++
		}
		i = j
	}
}

// Compute ranks values keyed by id and returns id -> rank.
func Compute(values map[int64]int64) map[int64]int {
	entries := make([]Entry, 0, len(values))
	for id, v := range values {
		entries = append(entries, Entry{ID: id, Value: v})
	}
	Assign(entries)

	out := make(map[int64]int, len(entries))
	for _, e := range entries {
		out[e.ID] = e.Rank
	}
	return out
}
