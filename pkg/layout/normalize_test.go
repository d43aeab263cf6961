package layout

import (
	"math"
	"reflect"
	"testing"
)

const eps = 1e-9

func TestNormalize_Bounds(t *testing.T) {
	g := buildGraph(10, rel(0, 1, 9), rel(2, 3, 4), rel(5, 9, 1))
	vp := Viewport{Width: 1200, Height: 800, Padding: 100}

	got := Normalize(Layout(g), vp)

	if len(got) != 10 {
		t.Fatalf("got %d positions, want 10", len(got))
	}
	b, _ := BoundsOf(got)
	for id, p := range got {
		if p.X < vp.Padding-eps || p.X > vp.Padding+vp.Width+eps {
			t.Errorf("%s x = %v outside viewport", id, p.X)
		}
		if p.Y < vp.Padding-eps || p.Y > vp.Padding+vp.Height+eps {
			t.Errorf("%s y = %v outside viewport", id, p.Y)
		}
	}
	if math.Abs(b.MinX-vp.Padding) > eps || math.Abs(b.MaxX-(vp.Padding+vp.Width)) > eps {
		t.Errorf("x extent = [%v, %v], want [%v, %v]", b.MinX, b.MaxX, vp.Padding, vp.Padding+vp.Width)
	}
	if math.Abs(b.MinY-vp.Padding) > eps || math.Abs(b.MaxY-(vp.Padding+vp.Height)) > eps {
		t.Errorf("y extent = [%v, %v], want [%v, %v]", b.MinY, b.MaxY, vp.Padding, vp.Padding+vp.Height)
	}
}

func TestNormalize_Degenerate(t *testing.T) {
	vp := DefaultViewport()

	tests := []struct {
		name string
		in   map[string]Position
		want map[string]Position
	}{
		{
			name: "empty",
			in:   map[string]Position{},
			want: map[string]Position{},
		},
		{
			name: "nil",
			in:   nil,
			want: map[string]Position{},
		},
		{
			name: "single point",
			in:   map[string]Position{"node-0": {X: 600, Y: 450}},
			want: map[string]Position{"node-0": {X: 100, Y: 100}},
		},
		{
			name: "vertical line keeps x on the padding",
			in: map[string]Position{
				"a": {X: 5, Y: 0},
				"b": {X: 5, Y: 10},
			},
			want: map[string]Position{
				"a": {X: 100, Y: 100},
				"b": {X: 100, Y: 900},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in, vp)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalize_SingleConceptPipeline(t *testing.T) {
	got := Normalize(Layout(buildGraph(1)), DefaultViewport())

	p, ok := got["node-0"]
	if !ok {
		t.Fatal("missing node-0")
	}
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		t.Fatalf("non-finite position %+v", p)
	}
	if p.X < 100 || p.X > 1300 || p.Y < 100 || p.Y > 900 {
		t.Fatalf("position %+v outside padded viewport", p)
	}
}

func TestNormalize_PreservesAxisOrder(t *testing.T) {
	in := map[string]Position{
		"a": {X: -50, Y: 20},
		"b": {X: 10, Y: -30},
		"c": {X: 70, Y: 5},
	}

	got := Normalize(in, DefaultViewport())

	if !(got["a"].X < got["b"].X && got["b"].X < got["c"].X) {
		t.Errorf("x order not preserved: %v", got)
	}
	if !(got["b"].Y < got["c"].Y && got["c"].Y < got["a"].Y) {
		t.Errorf("y order not preserved: %v", got)
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	in := map[string]Position{
		"a": {X: 1, Y: 2},
		"b": {X: 3, Y: 4},
	}
	snapshot := map[string]Position{
		"a": {X: 1, Y: 2},
		"b": {X: 3, Y: 4},
	}

	Normalize(in, DefaultViewport())

	if !reflect.DeepEqual(in, snapshot) {
		t.Fatalf("input mutated: %v", in)
	}
}
