package layout

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/common"
)

func buildGraph(n int, relations ...common.Relation) *common.Graph {
	g := &common.Graph{Title: "test"}
	for i := 0; i < n; i++ {
		g.Concepts = append(g.Concepts, common.Concept{
			ID:       common.ConceptID(i),
			Label:    string(rune('A' + i%26)),
			Category: common.CategoryCoreConcept,
		})
	}
	g.Relations = relations
	return g
}

func rel(a, b, strength int) common.Relation {
	return common.Relation{
		Source:   common.ConceptID(a),
		Target:   common.ConceptID(b),
		Label:    "relates to",
		Strength: strength,
	}
}

func dist(a, b Position) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func assertFinite(t *testing.T, positions map[string]Position) {
	t.Helper()
	for id, p := range positions {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			t.Fatalf("position of %s is not finite: %+v", id, p)
		}
	}
}

func TestLayout_Deterministic(t *testing.T) {
	g := buildGraph(8, rel(0, 1, 9), rel(1, 2, 3), rel(2, 3, 5), rel(4, 5, 10), rel(6, 7, 1), rel(0, 7, 6))

	first := Layout(g)
	second := Layout(g)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("layout is not deterministic:\n%v\n%v", first, second)
	}
}

func TestLayout_Completeness(t *testing.T) {
	g := buildGraph(12, rel(0, 1, 5), rel(3, 9, 2))

	got := Layout(g)

	if len(got) != len(g.Concepts) {
		t.Fatalf("got %d positions, want %d", len(got), len(g.Concepts))
	}
	for _, c := range g.Concepts {
		if _, ok := got[c.ID]; !ok {
			t.Errorf("missing position for %s", c.ID)
		}
	}
}

func TestLayout_Degenerate(t *testing.T) {
	tests := []struct {
		name  string
		graph *common.Graph
		want  map[string]Position
	}{
		{
			name:  "nil graph",
			graph: nil,
			want:  map[string]Position{},
		},
		{
			name:  "no concepts",
			graph: &common.Graph{},
			want:  map[string]Position{},
		},
		{
			name:  "single concept sits at the center",
			graph: buildGraph(1),
			want:  map[string]Position{"node-0": {X: 600, Y: 450}},
		},
		{
			name:  "single concept with self relation",
			graph: buildGraph(1, rel(0, 0, 8)),
			want:  map[string]Position{"node-0": {X: 600, Y: 450}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Layout(tt.graph)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Layout() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLayout_UnknownEndpointsAreSkipped(t *testing.T) {
	withDangling := buildGraph(3, rel(0, 1, 5), common.Relation{Source: "node-0", Target: "node-42", Strength: 10})
	clean := buildGraph(3, rel(0, 1, 5))

	got := Layout(withDangling)
	want := Layout(clean)

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("dangling relation changed the layout:\n%v\n%v", got, want)
	}
}

func TestLayout_ParallelRelationsDoNotCrash(t *testing.T) {
	g := buildGraph(3, rel(0, 1, 5), rel(1, 0, 5), rel(0, 1, 9))

	got := Layout(g)

	if len(got) != 3 {
		t.Fatalf("got %d positions, want 3", len(got))
	}
	assertFinite(t, got)
}

func TestLayout_StrongRelationPullsCloser(t *testing.T) {
	g := buildGraph(3, rel(0, 1, 10), rel(1, 2, 1))

	pos := Layout(g)

	ab := dist(pos["node-0"], pos["node-1"])
	bc := dist(pos["node-1"], pos["node-2"])
	if ab >= bc {
		t.Fatalf("distance(A,B) = %.2f should be below distance(B,C) = %.2f", ab, bc)
	}

	norm := Normalize(pos, DefaultViewport())
	ab = dist(norm["node-0"], norm["node-1"])
	bc = dist(norm["node-1"], norm["node-2"])
	if ab >= bc {
		t.Fatalf("normalized distance(A,B) = %.2f should be below distance(B,C) = %.2f", ab, bc)
	}
}

func TestLayout_InvalidStrengthUsesDefault(t *testing.T) {
	invalid := buildGraph(4, rel(0, 1, 0), rel(2, 3, 77))
	defaulted := buildGraph(4, rel(0, 1, common.DefaultStrength), rel(2, 3, common.DefaultStrength))

	if !reflect.DeepEqual(Layout(invalid), Layout(defaulted)) {
		t.Fatal("invalid strengths should behave like the default strength")
	}
}

func TestLayout_LargeGraphStaysFinite(t *testing.T) {
	relations := make([]common.Relation, 0)
	for i := 1; i < 40; i++ {
		relations = append(relations, rel(0, i, 1+i%10))
	}
	for i := 40; i < 59; i++ {
		relations = append(relations, rel(i, i+1, 10))
	}
	g := buildGraph(60, relations...)

	got := Layout(g)

	if len(got) != 60 {
		t.Fatalf("got %d positions, want 60", len(got))
	}
	assertFinite(t, got)
}

func TestNewEngine_FillsDefaults(t *testing.T) {
	e := NewEngine(Params{Iterations: 50})
	p := e.Params()

	if p.Iterations != 50 {
		t.Errorf("Iterations = %d, want 50", p.Iterations)
	}
	d := DefaultParams()
	if p.Repulsion != d.Repulsion || p.Damping != d.Damping || p.Radius != d.Radius {
		t.Errorf("defaults not applied: %+v", p)
	}
}

func TestEngine_Accepts(t *testing.T) {
	e := NewEngine(Params{MaxConcepts: 3, MaxRelations: 2})

	tests := []struct {
		name    string
		graph   *common.Graph
		wantErr bool
	}{
		{"nil graph", nil, false},
		{"at the bounds", buildGraph(3, rel(0, 1, 5), rel(1, 2, 5)), false},
		{"too many concepts", buildGraph(4), true},
		{"too many relations", buildGraph(3, rel(0, 1, 5), rel(1, 2, 5), rel(0, 2, 5)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.Accepts(tt.graph)
			if tt.wantErr && !errors.Is(err, ErrGraphTooLarge) {
				t.Fatalf("Accepts() error = %v, want %v", err, ErrGraphTooLarge)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Accepts() error = %v", err)
			}
		})
	}

	d := NewEngine(Params{}).Params()
	if d.MaxConcepts != 600 || d.MaxRelations != 6000 {
		t.Errorf("default bounds = %d, %d", d.MaxConcepts, d.MaxRelations)
	}
}

func TestEngine_IterationCountChangesResult(t *testing.T) {
	g := buildGraph(4, rel(0, 1, 8), rel(2, 3, 2))

	short := NewEngine(Params{Iterations: 10}).Layout(g)
	long := NewEngine(Params{Iterations: 300}).Layout(g)

	if reflect.DeepEqual(short, long) {
		t.Fatal("expected different layouts for different iteration counts")
	}
}

func TestDistanceFloor(t *testing.T) {
	if got := distance(0, 0); got != 1 {
		t.Fatalf("distance(0,0) = %v, want 1", got)
	}
	if got := distance(3, 4); got != 5 {
		t.Fatalf("distance(3,4) = %v, want 5", got)
	}
}
