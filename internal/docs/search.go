package docs

import (
	"sort"
	"strings"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// SearchItems returns local items whose name contains query, ignoring case.
// Exact matches sort first, then prefix matches, then the rest, each group
// by lowercase name and then id. The result holds at most limit items;
// total counts every match. A non-positive limit means DefaultSearchLimit.
func SearchItems(crate *RustdocCrate, query string, limit int) (matches []*RustdocItem, total int) {
	switch {
	case limit <= 0:
		limit = DefaultSearchLimit
	case limit > MaxSearchLimit:
		limit = MaxSearchLimit
	}
	q := strings.ToLower(query)

	type hit struct {
		item *RustdocItem
		name string
		rank int
	}
	var hits []hit
	for _, item := range crate.Index {
		if item.CrateID != 0 || item.Name == nil {
			continue
		}
		name := strings.ToLower(*item.Name)
		if !strings.Contains(name, q) {
			continue
		}
		rank := 2
		switch {
		case name == q:
			rank = 0
		case strings.HasPrefix(name, q):
			rank = 1
		}
		hits = append(hits, hit{item, name, rank})
	}

	sort.Slice(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		if a.name != b.name {
			return a.name < b.name
		}
		return a.item.ID < b.item.ID
	})

	total = len(hits)
	if len(hits) > limit {
		hits = hits[:limit]
	}
	matches = make([]*RustdocItem, len(hits))
	for i, h := range hits {
		matches[i] = h.item
	}
	return matches, total
}
