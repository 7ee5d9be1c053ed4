package graph

import (
	"fmt"

	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/domain"
)

type AssembleOptions struct {
	// RequireNonEmpty turns a graph without nodes into domain.ErrEmptyGraph.
	RequireNonEmpty bool
}

// Assemble builds the graph model from validated pairs. Nodes follow the
// index's first-seen order and links keep the input order. Every link of
// an unordered pair takes the orientation of that pair's first row, so
// (a,b) followed by (b,a) yields two a->b links.
func Assemble(pairs []domain.TagPair, opts AssembleOptions) (*domain.Graph, error) {
	ix := BuildIndex(pairs)

	g := domain.NewGraph()
	g.Nodes = make([]domain.Node, 0, ix.Len())
	for id, name := range ix.names {
		g.Nodes = append(g.Nodes, domain.Node{ID: id, Name: name, Count: ix.weights[id]})
	}

	type edgeKey struct{ lo, hi int }
	oriented := make(map[edgeKey]bool, len(pairs))

	g.Links = make([]domain.Link, 0, len(pairs))
	for i, p := range pairs {
		if p.Tag1 == p.Tag2 {
			return nil, &domain.MalformedRowError{Row: i, Field: "tag2", Reason: "self pair"}
		}
		src, dst := ix.ids[p.Tag1], ix.ids[p.Tag2]
		key := edgeKey{lo: src, hi: dst}
		if src > dst {
			key = edgeKey{lo: dst, hi: src}
		}
		// true when the first row ran from lo to hi
		forward, seen := oriented[key]
		if !seen {
			forward = src == key.lo
			oriented[key] = forward
		}
		if forward {
			src, dst = key.lo, key.hi
		} else {
			src, dst = key.hi, key.lo
		}
		g.Links = append(g.Links, domain.Link{Source: src, Target: dst, Count: p.Count})
	}

	if opts.RequireNonEmpty && len(g.Nodes) == 0 {
		return nil, fmt.Errorf("assemble: %w", domain.ErrEmptyGraph)
	}
	return g, nil
}
