package scene

import (
	"fmt"
	"time"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/common"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/layout"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/logger"
)

// State is the visual state of a node.
type State string

const (
	StateDefault  State = "default"
	StateSelected State = "selected"
	StateLearned  State = "learned"
)

// EmphasisThreshold is the relation strength from which an edge is drawn
// emphasized.
const EmphasisThreshold = 7

// Node is a renderable concept.
type Node struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	Category common.Category `json:"category"`
	Position layout.Position `json:"position"`
	Mastery  int             `json:"mastery"`
	Selected bool            `json:"selected"`
	Learned  bool            `json:"learned"`
	State    State           `json:"state"`
	Icon     string          `json:"icon"`
}

// Edge is a renderable relation with its visual weight.
type Edge struct {
	ID                 string  `json:"id"`
	Source             string  `json:"source"`
	Target             string  `json:"target"`
	Label              string  `json:"label"`
	Strength           int     `json:"strength"`
	NormalizedStrength float64 `json:"normalized_strength"`
	Opacity            float64 `json:"opacity"`
	Width              float64 `json:"width"`
	LabelOpacity       float64 `json:"label_opacity"`
	Emphasized         bool    `json:"emphasized"`
}

// Scene is everything a renderer needs to draw a graph.
type Scene struct {
	Title        string  `json:"title"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Nodes        []Node  `json:"nodes"`
	Edges        []Edge  `json:"edges"`
	LearnedCount int     `json:"learned_count"`
}

// Project turns a graph and its normalized positions into a scene. It is
// pure: the graph and the positions are only read.
//
// Concepts without a position are placed at the origin. Relations pointing
// at unknown concepts are dropped and so is every relation after the first
// one on the same unordered pair.
func Project(graph *common.Graph, positions map[string]layout.Position, selectedID string) Scene {
	s := Scene{
		Nodes: []Node{},
		Edges: []Edge{},
	}
	if graph == nil {
		return s
	}
	s.Title = graph.Title

	known := make(map[string]struct{}, len(graph.Concepts))
	for _, c := range graph.Concepts {
		known[c.ID] = struct{}{}

		n := Node{
			ID:       c.ID,
			Label:    c.Label,
			Category: c.Category,
			Position: positions[c.ID],
			Mastery:  c.Mastery,
			Selected: c.ID == selectedID,
			Learned:  c.Learned(),
		}
		switch {
		case n.Learned:
			n.State = StateLearned
			n.Icon = string(StateLearned)
			s.LearnedCount++
		case n.Selected:
			n.State = StateSelected
			n.Icon = string(c.Category)
		default:
			n.State = StateDefault
			n.Icon = string(c.Category)
		}
		s.Nodes = append(s.Nodes, n)
	}

	type pair struct{ a, b string }
	seen := make(map[pair]struct{}, len(graph.Relations))
	maxStrength := 1

	for i, rel := range graph.Relations {
		if _, ok := known[rel.Source]; !ok {
			continue
		}
		if _, ok := known[rel.Target]; !ok {
			continue
		}
		key := pair{rel.Source, rel.Target}
		if key.b < key.a {
			key.a, key.b = key.b, key.a
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		strength := rel.EffectiveStrength()
		maxStrength = max(maxStrength, strength)
		s.Edges = append(s.Edges, Edge{
			ID:       fmt.Sprintf("edge-%d", i),
			Source:   rel.Source,
			Target:   rel.Target,
			Label:    rel.Label,
			Strength: strength,
		})
	}

	for i := range s.Edges {
		e := &s.Edges[i]
		n := float64(e.Strength) / float64(maxStrength)
		e.NormalizedStrength = n
		e.Opacity = 0.1 + n*0.4
		e.Width = 1 + n*2.5
		e.LabelOpacity = 0.3 + n*0.4
		e.Emphasized = e.Strength >= EmphasisThreshold
	}

	return s
}

// Compose runs the whole render pipeline: layout, normalization and
// projection.
func Compose(graph *common.Graph, selectedID string, engine *layout.Engine, vp layout.Viewport) Scene {
	if engine == nil {
		engine = layout.NewEngine(layout.DefaultParams())
	}

	start := time.Now()
	raw := engine.Layout(graph)
	positions := layout.Normalize(raw, vp)
	s := Project(graph, positions, selectedID)
	s.Width = vp.Width + 2*vp.Padding
	s.Height = vp.Height + 2*vp.Padding

	logger.Debug("[Scene] Composed scene", "nodes", len(s.Nodes), "edges", len(s.Edges), "duration", time.Since(start))
	return s
}
