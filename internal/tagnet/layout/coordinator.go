package layout

import (
	"context"
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/tagnet-backend/internal/logger"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/domain"
)

// Coordinator runs one layout per call: it builds a fresh engine graph,
// asks the engine for positions and copies them onto new nodes. It keeps
// no state between calls.
type Coordinator struct {
	engine Engine
	log    *logger.Logger
}

func NewCoordinator(engine Engine, log *logger.Logger) *Coordinator {
	return &Coordinator{engine: engine, log: logger.OrNop(log)}
}

// Apply positions every node of g. The input graph is never modified.
// Any engine failure, including a missing position, is reported as a
// *domain.LayoutUnavailableError.
func (c *Coordinator) Apply(ctx context.Context, g *domain.Graph) (*domain.PositionedGraph, error) {
	if c.engine == nil {
		return nil, &domain.LayoutUnavailableError{Err: fmt.Errorf("no engine configured")}
	}

	out := &domain.PositionedGraph{
		Nodes: make([]domain.PositionedNode, 0, len(g.Nodes)),
		Links: make([]domain.Link, len(g.Links)),
	}
	copy(out.Links, g.Links)
	if len(g.Nodes) == 0 {
		return out, nil
	}

	eg := NewEngineGraph()
	for _, n := range g.Nodes {
		if err := eg.AddNode(n.ID, n); err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
	}
	for _, l := range g.Links {
		if err := eg.AddEdge(l.Source, l.Target, l); err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
	}

	start := time.Now()
	pos, err := c.engine.ComputeLayout(ctx, eg)
	log := c.log.For(ctx)
	if err != nil {
		log.Error("layout engine failed", "nodes", len(g.Nodes), "links", len(g.Links), "error", err)
		return nil, &domain.LayoutUnavailableError{Err: err}
	}
	log.Debug("layout computed", "nodes", len(g.Nodes), "links", len(g.Links), "latency", time.Since(start))

	for _, n := range g.Nodes {
		x, okX := pos.X(n.ID)
		y, okY := pos.Y(n.ID)
		if !okX || !okY {
			return nil, &domain.LayoutUnavailableError{Err: fmt.Errorf("engine returned no position for node %d", n.ID)}
		}
		out.Nodes = append(out.Nodes, domain.PositionedNode{Node: n, X: x, Y: y})
	}
	return out, nil
}
