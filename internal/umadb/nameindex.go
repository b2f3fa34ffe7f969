package umadb

import (
	"sort"
	"strings"
)

// nameIndex maps lower-cased display names to entity ids. It is built
// once during a manager's load and read-only afterwards.
type nameIndex struct {
	ids map[string][]int64
}

func newNameIndex() *nameIndex {
	return &nameIndex{ids: make(map[string][]int64)}
}

func (ix *nameIndex) add(name string, id int64) {
	if name == "" {
		return
	}
	key := strings.ToLower(name)
	ix.ids[key] = append(ix.ids[key], id)
}

// exact returns the ids indexed under the query, matched
// case-insensitively against the full name.
func (ix *nameIndex) exact(query string) []int64 {
	return ix.ids[strings.ToLower(query)]
}

// resolve implements the lookup order for single-entity name resolution:
// exact match first, then substring match. When several indexed names
// contain the query, the shortest one wins, with lexicographic order
// breaking length ties, so resolution is deterministic.
func (ix *nameIndex) resolve(query string) []int64 {
	q := strings.ToLower(query)

	if ids, ok := ix.ids[q]; ok {
		return ids
	}

	var best string
	for name := range ix.ids {
		if !strings.Contains(name, q) {
			continue
		}
		if best == "" || len(name) < len(best) || (len(name) == len(best) && name < best) {
			best = name
		}
	}
	if best == "" {
		return nil
	}
	return ix.ids[best]
}

// matches returns the ids of every indexed name containing the query,
// ordered by indexed name for deterministic search results.
func (ix *nameIndex) matches(query string) []int64 {
	q := strings.ToLower(query)

	names := make([]string, 0, len(ix.ids))
	for name := range ix.ids {
		if strings.Contains(name, q) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var ids []int64
	for _, name := range names {
		ids = append(ids, ix.ids[name]...)
	}
	return ids
}

func (ix *nameIndex) size() int {
	return len(ix.ids)
}
