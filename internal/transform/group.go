// Package transform folds joined source rows into search documents.
package transform

import "github.com/google/uuid"

// GroupRows splits rows into groups sharing key, in order of first appearance.
func GroupRows[R any, K comparable](rows []R, key func(R) K) [][]R {
	index := make(map[K]int)
	var groups [][]R
	for _, r := range rows {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], r)
	}
	return groups
}

// uniqueByID keeps the first item seen per id, in insertion order.
type uniqueByID[T any] struct {
	seen  map[uuid.UUID]int
	items []T
}

func newUniqueByID[T any]() *uniqueByID[T] {
	return &uniqueByID[T]{seen: map[uuid.UUID]int{}, items: []T{}}
}

// add returns the position of id and whether it was newly added.
func (u *uniqueByID[T]) add(id uuid.UUID, item T) (int, bool) {
	if i, ok := u.seen[id]; ok {
		return i, false
	}
	u.seen[id] = len(u.items)
	u.items = append(u.items, item)
	return len(u.items) - 1, true
}

func names[T any](items []T, name func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, name(it))
	}
	return out
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
