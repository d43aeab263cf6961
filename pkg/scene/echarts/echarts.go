package echarts

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/scene"
)

var stateColors = map[scene.State]string{
	scene.StateLearned:  "rgba(16, 185, 129, 0.9)",
	scene.StateSelected: "rgba(99, 102, 241, 0.9)",
	scene.StateDefault:  "rgba(148, 163, 184, 0.8)",
}

const (
	nodeSize         = 36
	selectedNodeSize = 48
)

// Render writes the scene as a self-contained HTML page. Nodes keep the
// positions of the scene; the chart's own force layout is disabled.
func Render(w io.Writer, s scene.Scene) error {
	page := components.NewPage()
	page.AddCharts(graphChart(s))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render scene: %w", err)
	}
	return nil
}

// RenderToFile renders the scene into the file at path, replacing it if it
// already exists.
func RenderToFile(path string, s scene.Scene) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	return Render(f, s)
}

func pageTitle(s scene.Scene) string {
	if s.Title == "" {
		return "Knowledge graph"
	}
	return s.Title
}

func graphChart(s scene.Scene) *charts.Graph {
	names := nodeNames(s.Nodes)

	nodes := make([]opts.GraphNode, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		size := nodeSize
		if n.Selected {
			size = selectedNodeSize
		}
		nodes = append(nodes, opts.GraphNode{
			Name:       names[n.ID],
			X:          float32(n.Position.X),
			Y:          float32(n.Position.Y),
			Value:      float32(n.Mastery),
			SymbolSize: size,
			ItemStyle: &opts.ItemStyle{
				Color: stateColors[n.State],
			},
		})
	}

	links := make([]opts.GraphLink, 0, len(s.Edges))
	for _, e := range s.Edges {
		links = append(links, graphLink(e, names))
	}

	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: pageTitle(s),
			Height:    "100vh",
			Width:     "100vw",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    pageTitle(s),
			Subtitle: fmt.Sprintf("%d of %d concepts learned", s.LearnedCount, len(s.Nodes)),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	)
	graph.AddSeries(
		"concepts",
		nodes,
		links,
		charts.WithGraphChartOpts(
			opts.GraphChart{
				Layout:    "none",
				Roam:      opts.Bool(true),
				Draggable: opts.Bool(true),
				EdgeLabel: &opts.EdgeLabel{
					Show: opts.Bool(true),
				},
			},
		),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Position: "bottom",
		}),
	)
	return graph
}

// graphLink draws a scene edge. Emphasized edges are solid with a bold
// label, all others are dashed.
func graphLink(e scene.Edge, names map[string]string) opts.GraphLink {
	lineType, weight := "dashed", "normal"
	if e.Emphasized {
		lineType, weight = "solid", "bold"
	}

	return opts.GraphLink{
		Source: names[e.Source],
		Target: names[e.Target],
		Value:  float32(e.Strength),
		Label: &opts.EdgeLabel{
			Show:       opts.Bool(e.Label != ""),
			Formatter:  edgeLabelText(e.Label),
			Color:      fmt.Sprintf("rgba(71, 85, 105, %.3f)", e.LabelOpacity),
			FontWeight: weight,
		},
		LineStyle: &opts.LineStyle{
			Color: fmt.Sprintf("rgba(99, 102, 241, %.3f)", e.Opacity),
			Width: float32(e.Width),
			Type:  lineType,
		},
	}
}

// edgeLabelText turns a relation label into a literal label formatter.
// Braces would start a template variable.
func edgeLabelText(label string) string {
	return strings.NewReplacer("{", "(", "}", ")").Replace(label)
}

// nodeNames maps concept ids to chart node names. The chart links nodes by
// name, so duplicate labels get their id appended.
func nodeNames(nodes []scene.Node) map[string]string {
	count := make(map[string]int, len(nodes))
	for _, n := range nodes {
		count[n.Label]++
	}

	names := make(map[string]string, len(nodes))
	for _, n := range nodes {
		name := n.Label
		if name == "" || count[n.Label] > 1 {
			name = fmt.Sprintf("%s (%s)", n.Label, n.ID)
		}
		names[n.ID] = name
	}
	return names
}
