// Package reconcile merges a freshly fetched record list with the
// previously cached one. Backend list endpoints sometimes filter out
// inactive records by default; replacing the cache wholesale would make
// previously visible records vanish even though they still exist. A
// record missing from the fresh list is treated as unknown, not deleted —
// deletions only happen through the explicit delete mutation.
package reconcile

// Keyed is any record exposing its canonical identity.
type Keyed interface {
	ID() string
}

// Merge returns fresh followed by every cached record whose identity is
// absent from fresh, preserving the cached relative order. It is
// idempotent for a fixed fresh list.
func Merge[T Keyed](fresh, cached []T) []T {
	seen := make(map[string]struct{}, len(fresh))
	out := make([]T, 0, len(fresh)+len(cached))
	for _, r := range fresh {
		if _, dup := seen[r.ID()]; dup {
			continue
		}
		seen[r.ID()] = struct{}{}
		out = append(out, r)
	}
	for _, r := range cached {
		if _, ok := seen[r.ID()]; ok {
			continue
		}
		seen[r.ID()] = struct{}{}
		out = append(out, r)
	}
	return out
}
