package layout

import (
	"context"
	"math"
	"sort"
)

// ForceEngine is an in-process Fruchterman-Reingold layout. It is fully
// deterministic: initial positions come from node order, not randomness.
// Each connected component is laid out on its own and the components are
// packed left to right, largest first, so disconnected graphs do not
// drift apart.
type ForceEngine struct {
	Iterations  int
	IdealLength float64
}

func NewForceEngine(iterations int) *ForceEngine {
	if iterations <= 0 {
		iterations = 300
	}
	return &ForceEngine{Iterations: iterations, IdealLength: 30}
}

type vec struct{ x, y float64 }

func (e *ForceEngine) ComputeLayout(ctx context.Context, g *EngineGraph) (Positions, error) {
	nodes := g.Nodes()
	local := make(map[int]int, len(nodes))
	for i, n := range nodes {
		local[n.ID] = i
	}

	adj := make([][]int, len(nodes))
	for _, ed := range g.Edges() {
		s, t := local[ed.Source], local[ed.Target]
		adj[s] = append(adj[s], t)
		adj[t] = append(adj[t], s)
	}

	comps := components(adj)
	sort.SliceStable(comps, func(i, j int) bool { return len(comps[i]) > len(comps[j]) })

	k := e.IdealLength
	if k <= 0 {
		k = 30
	}

	pos := make([]vec, len(nodes))
	cursor := 0.0
	for _, comp := range comps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		placed, err := e.layoutComponent(ctx, comp, adj, k)
		if err != nil {
			return nil, err
		}

		minX, maxX, minY, maxY := bounds(placed)
		midY := (minY + maxY) / 2
		for i, v := range comp {
			pos[v] = vec{placed[i].x - minX + cursor, placed[i].y - midY}
		}
		cursor += (maxX - minX) + 2*k
	}

	out := make(Positions, len(nodes))
	for i, n := range nodes {
		out[n.ID] = Point{X: pos[i].x, Y: pos[i].y}
	}
	return out, nil
}

func (e *ForceEngine) layoutComponent(ctx context.Context, comp []int, adj [][]int, k float64) ([]vec, error) {
	n := len(comp)
	p := make([]vec, n)
	if n == 1 {
		return p, nil
	}

	at := make(map[int]int, n)
	for i, v := range comp {
		at[v] = i
	}

	radius := k * math.Sqrt(float64(n))
	for i := range p {
		a := 2 * math.Pi * float64(i) / float64(n)
		p[i] = vec{radius * math.Cos(a), radius * math.Sin(a)}
	}

	temp := radius / 2
	cool := temp / float64(e.Iterations+1)
	disp := make([]vec, n)

	for it := 0; it < e.Iterations; it++ {
		if it%50 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for i := range disp {
			disp[i] = vec{}
		}

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx, dy, d := delta(p[i], p[j])
				f := k * k / d
				disp[i].x += dx / d * f
				disp[i].y += dy / d * f
				disp[j].x -= dx / d * f
				disp[j].y -= dy / d * f
			}
		}

		for i, v := range comp {
			for _, w := range adj[v] {
				j := at[w]
				if j <= i {
					continue
				}
				dx, dy, d := delta(p[i], p[j])
				f := d * d / k
				disp[i].x -= dx / d * f
				disp[i].y -= dy / d * f
				disp[j].x += dx / d * f
				disp[j].y += dy / d * f
			}
		}

		for i := range p {
			l := math.Hypot(disp[i].x, disp[i].y)
			if l == 0 {
				continue
			}
			step := math.Min(l, temp)
			p[i].x += disp[i].x / l * step
			p[i].y += disp[i].y / l * step
		}
		temp -= cool
	}
	return p, nil
}

func delta(a, b vec) (dx, dy, d float64) {
	dx, dy = a.x-b.x, a.y-b.y
	d = math.Hypot(dx, dy)
	if d < 1e-6 {
		return 1e-3, 0, 1e-3
	}
	return dx, dy, d
}

// components returns connected components as lists of local indices, each
// list in ascending order, ordered by their smallest member.
func components(adj [][]int) [][]int {
	seen := make([]bool, len(adj))
	var out [][]int
	for s := range adj {
		if seen[s] {
			continue
		}
		seen[s] = true
		comp := []int{s}
		for q := 0; q < len(comp); q++ {
			for _, w := range adj[comp[q]] {
				if !seen[w] {
					seen[w] = true
					comp = append(comp, w)
				}
			}
		}
		sort.Ints(comp)
		out = append(out, comp)
	}
	return out
}

func bounds(p []vec) (minX, maxX, minY, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, v := range p {
		minX = math.Min(minX, v.x)
		maxX = math.Max(maxX, v.x)
		minY = math.Min(minY, v.y)
		maxY = math.Max(maxY, v.y)
	}
	return
}
