package graph

import "github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/domain"

// Index is the node table of a co-occurrence graph. Names keeps tags in
// the order they were first seen while scanning pairs (tag1 before tag2,
// row by row); a tag's id is its position in that slice.
type Index struct {
	names   []string
	ids     map[string]int
	weights []int64
}

// BuildIndex scans pairs once to register endpoints and accumulate
// weights. Repeated pairs are not merged: each occurrence adds its count
// to both endpoints again.
func BuildIndex(pairs []domain.TagPair) *Index {
	ix := &Index{ids: make(map[string]int, len(pairs))}
	for _, p := range pairs {
		a := ix.add(p.Tag1)
		b := ix.add(p.Tag2)
		ix.weights[a] += p.Count
		ix.weights[b] += p.Count
	}
	return ix
}

func (ix *Index) add(name string) int {
	if id, ok := ix.ids[name]; ok {
		return id
	}
	id := len(ix.names)
	ix.names = append(ix.names, name)
	ix.weights = append(ix.weights, 0)
	ix.ids[name] = id
	return id
}

func (ix *Index) Len() int { return len(ix.names) }

// Names returns the tags in first-seen order.
func (ix *Index) Names() []string {
	out := make([]string, len(ix.names))
	copy(out, ix.names)
	return out
}

func (ix *Index) ID(name string) (int, bool) {
	id, ok := ix.ids[name]
	return id, ok
}

// Weight is the sum of counts over all pairs touching name.
func (ix *Index) Weight(name string) (int64, bool) {
	id, ok := ix.ids[name]
	if !ok {
		return 0, false
	}
	return ix.weights[id], true
}
