// Package reconcile computes membership deltas between a desired and a
// persisted relation set. Callers apply the deltas to join tables inside the
// transaction that carries the rest of the update.
package reconcile

// Diff returns the members to insert (desired minus current) and the members
// to delete (current minus desired). Order is irrelevant on both sides and a
// repeated member of desired counts once, so a sloppy caller slice cannot
// produce a duplicate insert. Runtime is O(len(desired)+len(current)).
func Diff[T comparable](desired, current []T) (toAdd, toRemove []T) {
	want := make(map[T]struct{}, len(desired))
	for _, v := range desired {
		want[v] = struct{}{}
	}
	have := make(map[T]struct{}, len(current))
	for _, v := range current {
		have[v] = struct{}{}
	}
	seen := make(map[T]struct{}, len(desired))
	for _, v := range desired {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		if _, ok := have[v]; !ok {
			toAdd = append(toAdd, v)
		}
	}
	for _, v := range current {
		if _, ok := want[v]; !ok {
			toRemove = append(toRemove, v)
		}
	}
	return toAdd, toRemove
}

// DiffFunc is Diff over values without comparable identity, keyed by a
// caller-supplied natural key (tag name, for instance).
func DiffFunc[T any, K comparable](desired, current []T, key func(T) K) (toAdd, toRemove []T) {
	want := make(map[K]struct{}, len(desired))
	for _, v := range desired {
		want[key(v)] = struct{}{}
	}
	have := make(map[K]struct{}, len(current))
	for _, v := range current {
		have[key(v)] = struct{}{}
	}
	seen := make(map[K]struct{}, len(desired))
	for _, v := range desired {
		k := key(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := have[k]; !ok {
			toAdd = append(toAdd, v)
		}
	}
	for _, v := range current {
		if _, ok := want[key(v)]; !ok {
			toRemove = append(toRemove, v)
		}
	}
	return toAdd, toRemove
}
