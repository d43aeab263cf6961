package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/common"
)

// ErrGraphTooLarge is returned by Engine.Accepts for graphs above the
// configured size bounds.
var ErrGraphTooLarge = errors.New("graph is too large to lay out")

// Position is a point in simulation or viewport space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Params tunes the spring embedder. A zero field is replaced by the
// matching value of DefaultParams when passed to NewEngine.
type Params struct {
	Iterations      int     `toml:"iterations"`
	Repulsion       float64 `toml:"repulsion"`
	Attraction      float64 `toml:"attraction"`
	IdealEdgeLength float64 `toml:"ideal_edge_length"`
	Damping         float64 `toml:"damping"`
	MaxSpeed        float64 `toml:"max_speed"`
	MinSpeed        float64 `toml:"min_speed"`
	CenterX         float64 `toml:"center_x"`
	CenterY         float64 `toml:"center_y"`
	Radius          float64 `toml:"radius"`

	// MaxConcepts and MaxRelations bound the graphs accepted by Accepts.
	// Layout itself runs on any graph.
	MaxConcepts  int `toml:"max_concepts"`
	MaxRelations int `toml:"max_relations"`
}

// DefaultParams returns the parameterization the renderer was tuned for.
func DefaultParams() Params {
	return Params{
		Iterations:      300,
		Repulsion:       80000,
		Attraction:      0.0008,
		IdealEdgeLength: 200,
		Damping:         0.92,
		MaxSpeed:        10,
		MinSpeed:        0.5,
		CenterX:         600,
		CenterY:         450,
		Radius:          350,
		MaxConcepts:     600,
		MaxRelations:    6000,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.Iterations <= 0 {
		p.Iterations = d.Iterations
	}
	if p.Repulsion == 0 {
		p.Repulsion = d.Repulsion
	}
	if p.Attraction == 0 {
		p.Attraction = d.Attraction
	}
	if p.IdealEdgeLength == 0 {
		p.IdealEdgeLength = d.IdealEdgeLength
	}
	if p.Damping <= 0 || p.Damping >= 1 {
		p.Damping = d.Damping
	}
	if p.MaxSpeed == 0 {
		p.MaxSpeed = d.MaxSpeed
	}
	if p.MinSpeed == 0 {
		p.MinSpeed = d.MinSpeed
	}
	if p.CenterX == 0 && p.CenterY == 0 {
		p.CenterX = d.CenterX
		p.CenterY = d.CenterY
	}
	if p.Radius == 0 {
		p.Radius = d.Radius
	}
	if p.MaxConcepts <= 0 {
		p.MaxConcepts = d.MaxConcepts
	}
	if p.MaxRelations <= 0 {
		p.MaxRelations = d.MaxRelations
	}
	return p
}

// Engine computes force-directed layouts. It holds no state between calls
// and is safe for concurrent use.
type Engine struct {
	params Params
}

// NewEngine creates an Engine with the given parameters.
func NewEngine(params Params) *Engine {
	return &Engine{params: params.withDefaults()}
}

// Params returns the effective parameters of the engine.
func (e *Engine) Params() Params {
	return e.params
}

// Accepts reports whether the graph is within the engine's size bounds. The
// cost of a layout grows with the square of the concept count, so graphs
// from untrusted callers are checked before they are laid out.
func (e *Engine) Accepts(graph *common.Graph) error {
	if graph == nil {
		return nil
	}
	if n := len(graph.Concepts); n > e.params.MaxConcepts {
		return fmt.Errorf("%w: %d concepts, at most %d allowed", ErrGraphTooLarge, n, e.params.MaxConcepts)
	}
	if n := len(graph.Relations); n > e.params.MaxRelations {
		return fmt.Errorf("%w: %d relations, at most %d allowed", ErrGraphTooLarge, n, e.params.MaxRelations)
	}
	return nil
}

// Layout runs the engine with DefaultParams.
func Layout(graph *common.Graph) map[string]Position {
	return NewEngine(DefaultParams()).Layout(graph)
}

type edge struct {
	a, b int
	mult float64
}

// Layout places every concept of the graph and returns its position keyed by
// concept id.
//
// The simulation always runs the configured number of iterations. Concepts
// start evenly spaced on a circle in graph order, so the result is fully
// determined by the graph.
func (e *Engine) Layout(graph *common.Graph) map[string]Position {
	if graph == nil || len(graph.Concepts) == 0 {
		return map[string]Position{}
	}

	p := e.params
	n := len(graph.Concepts)

	if n == 1 {
		return map[string]Position{
			graph.Concepts[0].ID: {X: p.CenterX, Y: p.CenterY},
		}
	}

	pos := make([]Position, n)
	vel := make([]Position, n)
	for i := range pos {
		angle := 2 * math.Pi * float64(i) / float64(n)
		pos[i] = Position{
			X: p.CenterX + p.Radius*math.Cos(angle),
			Y: p.CenterY + p.Radius*math.Sin(angle),
		}
	}

	edges := resolveEdges(graph)

	for iter := 0; iter < p.Iterations; iter++ {
		temp := 1 - float64(iter)/float64(p.Iterations)

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx := pos[i].X - pos[j].X
				dy := pos[i].Y - pos[j].Y
				dist := distance(dx, dy)

				force := p.Repulsion * temp / (dist * dist)
				fx := dx / dist * force
				fy := dy / dist * force

				vel[i].X += fx
				vel[i].Y += fy
				vel[j].X -= fx
				vel[j].Y -= fy
			}
		}

		for _, ed := range edges {
			dx := pos[ed.b].X - pos[ed.a].X
			dy := pos[ed.b].Y - pos[ed.a].Y
			dist := distance(dx, dy)

			displacement := dist - p.IdealEdgeLength/ed.mult
			force := p.Attraction * displacement * ed.mult * temp
			fx := dx / dist * force
			fy := dy / dist * force

			vel[ed.a].X += fx
			vel[ed.a].Y += fy
			vel[ed.b].X -= fx
			vel[ed.b].Y -= fy
		}

		maxSpeed := p.MaxSpeed*temp + p.MinSpeed
		for i := range pos {
			vel[i].X *= p.Damping
			vel[i].Y *= p.Damping

			speed := math.Sqrt(vel[i].X*vel[i].X + vel[i].Y*vel[i].Y)
			if speed > maxSpeed {
				vel[i].X = vel[i].X / speed * maxSpeed
				vel[i].Y = vel[i].Y / speed * maxSpeed
			}

			pos[i].X += vel[i].X
			pos[i].Y += vel[i].Y
		}
	}

	out := make(map[string]Position, n)
	for i, c := range graph.Concepts {
		out[c.ID] = pos[i]
	}
	return out
}

// resolveEdges maps relations onto concept indices. Relations pointing at an
// unknown concept are skipped. Parallel relations are kept and simply add
// another attraction term.
func resolveEdges(graph *common.Graph) []edge {
	idx := graph.Index()
	edges := make([]edge, 0, len(graph.Relations))
	for _, rel := range graph.Relations {
		a, okA := idx[rel.Source]
		b, okB := idx[rel.Target]
		if !okA || !okB {
			continue
		}
		edges = append(edges, edge{
			a:    a,
			b:    b,
			mult: float64(rel.EffectiveStrength()) / common.DefaultStrength,
		})
	}
	return edges
}

// distance floors coincident points at 1 so force directions stay finite.
func distance(dx, dy float64) float64 {
	d := math.Sqrt(dx*dx + dy*dy)
	if d == 0 {
		return 1
	}
	return d
}
