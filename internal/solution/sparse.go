package solution

import (
	"sort"
	"strconv"
)

// Sparse is a name-indexed variable assignment with a defined iteration
// order. Keys are kept sorted so that two assignments can be compared with a
// single merge pass. Missing keys read as zero.
type Sparse struct {
	keys   []string
	values []float64
}

// NewSparse builds a Sparse assignment from a map. The map is copied.
func NewSparse(m map[string]float64) Sparse {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]float64, len(keys))
	for i, k := range keys {
		values[i] = m[k]
	}
	return Sparse{keys: keys, values: values}
}

// Len returns the number of explicitly stored keys.
func (s Sparse) Len() int {
	return len(s.keys)
}

// Get returns the value stored for key. The second result reports whether
// the key is explicitly present.
func (s Sparse) Get(key string) (float64, bool) {
	i := sort.SearchStrings(s.keys, key)
	if i < len(s.keys) && s.keys[i] == key {
		return s.values[i], true
	}
	return 0, false
}

// Keys returns the stored keys in ascending order.
func (s Sparse) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Each calls fn for every stored entry in key order.
func (s Sparse) Each(fn func(key string, value float64)) {
	for i, k := range s.keys {
		fn(k, s.values[i])
	}
}

// Dense is a positionally indexed variable assignment.
type Dense []float64

// Len returns the vector length.
func (d Dense) Len() int {
	return len(d)
}

// Each calls fn for every position; the key is the decimal index.
func (d Dense) Each(fn func(key string, value float64)) {
	for i, v := range d {
		fn(strconv.Itoa(i), v)
	}
}
