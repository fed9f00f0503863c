package lineage

import (
	"encoding/json"
	"maps"
	"slices"
)

// MutationSet records mutation events by index. The value is an occurrence
// marker; presence of the key is what matters.
//
// A nil MutationSet is a valid empty set for reads.
type MutationSet map[int]struct{}

// NewMutationSet returns a set containing the given indices.
func NewMutationSet(indices ...int) MutationSet {
	m := make(MutationSet, len(indices))
	for _, i := range indices {
		m[i] = struct{}{}
	}
	return m
}

// Add marks index as present. Adding an existing index is a no-op.
func (m MutationSet) Add(index int) { m[index] = struct{}{} }

// Has reports whether index is present.
func (m MutationSet) Has(index int) bool {
	_, ok := m[index]
	return ok
}

// Len returns the number of recorded mutations.
func (m MutationSet) Len() int { return len(m) }

// Sorted returns the indices in ascending order.
func (m MutationSet) Sorted() []int {
	return slices.Sorted(maps.Keys(m))
}

// Union returns a new set holding the indices of m and other.
// Neither input is modified.
func (m MutationSet) Union(other MutationSet) MutationSet {
	out := make(MutationSet, len(m)+len(other))
	maps.Copy(out, m)
	maps.Copy(out, other)
	return out
}

// Equal reports whether both sets hold the same indices.
// A nil set equals an empty one.
func (m MutationSet) Equal(other MutationSet) bool {
	if len(m) != len(other) {
		return false
	}
	for i := range m {
		if !other.Has(i) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a sorted array of indices.
func (m MutationSet) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m.Sorted())
}

// UnmarshalJSON decodes a JSON array of indices.
func (m *MutationSet) UnmarshalJSON(data []byte) error {
	var indices []int
	if err := json.Unmarshal(data, &indices); err != nil {
		return err
	}
	*m = NewMutationSet(indices...)
	return nil
}
