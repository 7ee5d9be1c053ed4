package layout

import (
	"context"
	"fmt"

	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/domain"
)

// Engine computes 2D positions for every node of an EngineGraph. The ids
// in the returned Positions must be the ids passed to AddNode.
type Engine interface {
	ComputeLayout(ctx context.Context, g *EngineGraph) (Positions, error)
}

// EngineNode is a node as handed to a layout engine.
type EngineNode struct {
	ID      int         `json:"id"`
	Payload domain.Node `json:"payload"`
}

// EngineEdge is an edge as handed to a layout engine.
type EngineEdge struct {
	Source  int         `json:"source"`
	Target  int         `json:"target"`
	Payload domain.Link `json:"payload"`
}

// EngineGraph is the engine-side graph built for one layout run.
type EngineGraph struct {
	nodes []EngineNode
	edges []EngineEdge
	index map[int]int
}

func NewEngineGraph() *EngineGraph {
	return &EngineGraph{index: make(map[int]int)}
}

func (g *EngineGraph) AddNode(id int, payload domain.Node) error {
	if _, ok := g.index[id]; ok {
		return fmt.Errorf("duplicate node id %d", id)
	}
	g.index[id] = len(g.nodes)
	g.nodes = append(g.nodes, EngineNode{ID: id, Payload: payload})
	return nil
}

func (g *EngineGraph) AddEdge(source, target int, payload domain.Link) error {
	if _, ok := g.index[source]; !ok {
		return fmt.Errorf("edge source %d is not a node", source)
	}
	if _, ok := g.index[target]; !ok {
		return fmt.Errorf("edge target %d is not a node", target)
	}
	if source == target {
		return fmt.Errorf("self loop on node %d", source)
	}
	g.edges = append(g.edges, EngineEdge{Source: source, Target: target, Payload: payload})
	return nil
}

func (g *EngineGraph) Nodes() []EngineNode { return g.nodes }
func (g *EngineGraph) Edges() []EngineEdge { return g.edges }

// Point is a position in layout space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Positions maps node id to its computed point.
type Positions map[int]Point

func (p Positions) X(id int) (float64, bool) {
	pt, ok := p[id]
	return pt.X, ok
}

func (p Positions) Y(id int) (float64, bool) {
	pt, ok := p[id]
	return pt.Y, ok
}
