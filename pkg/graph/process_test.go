package graph

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/ai/aitest"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/common"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/extract"
)

const twoSections = "Photosynthesis happens in the chloroplast. Chloroplasts contain chlorophyll."

const firstSection = `{
  "concepts": [
    {"label": "Photosynthesis", "category": "process", "description": "Light to sugar.", "context": "Photosynthesis happens in the chloroplast.", "socratic_question": "Why does it need light?"},
    {"label": "Chloroplast", "category": "entity", "description": "An organelle.", "context": "", "socratic_question": ""}
  ],
  "relations": [
    {"source": "Photosynthesis", "target": "Chloroplast", "label": "happens in", "strength": 8}
  ]
}`

const secondSection = `{
  "concepts": [
    {"label": "Chloroplasts", "category": "entity", "description": "Organelles of plant cells.", "context": "Chloroplasts contain chlorophyll.", "socratic_question": ""},
    {"label": "Chlorophyll", "category": "entity", "description": "A green pigment.", "context": "Chloroplasts contain chlorophyll.", "socratic_question": ""},
    {"label": "photosynthesis", "category": "process", "description": "Conversion of light energy into chemical energy.", "context": "", "socratic_question": ""}
  ],
  "relations": [
    {"source": "Chloroplasts", "target": "Chlorophyll", "label": "contains", "strength": 6},
    {"source": "chloroplast", "target": "Photosynthesis", "label": "", "strength": 5}
  ]
}`

func sectionClient(dedupe string) *aitest.Client {
	return &aitest.Client{Respond: func(name, prompt string) (string, error) {
		switch {
		case name == "dedupe_concepts":
			return dedupe, nil
		case strings.Contains(prompt, "Photosynthesis happens"):
			return firstSection, nil
		case strings.Contains(prompt, "Chloroplasts contain"):
			return secondSection, nil
		}
		return `{"concepts":[],"relations":[]}`, nil
	}}
}

func newTestClient(t *testing.T, params NewGraphClientParams) *GraphClient {
	t.Helper()
	params.TokenEncoder = "cl100k_base"
	if params.MaxTokens == 0 {
		params.MaxTokens = 1
	}
	g, err := NewGraphClient(params)
	if err != nil {
		t.Fatalf("NewGraphClient() error = %v", err)
	}
	return g
}

func labels(g *common.Graph) []string {
	out := make([]string, len(g.Concepts))
	for i, c := range g.Concepts {
		out[i] = c.Label
	}
	return out
}

func TestNewGraphClient_RequiresAIClient(t *testing.T) {
	if _, err := NewGraphClient(NewGraphClientParams{}); err == nil {
		t.Fatal("NewGraphClient() expected error without ai client")
	}
}

func TestExtract_MergesUnits(t *testing.T) {
	client := sectionClient("")
	g := newTestClient(t, NewGraphClientParams{AIClient: client})

	graph, err := g.Extract(context.Background(), twoSections, "uploads/plant_cells.pdf", extract.Options{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if graph.Title != "plant cells" {
		t.Errorf("Title = %q, want %q", graph.Title, "plant cells")
	}

	wantLabels := []string{"Photosynthesis", "Chloroplast", "Chloroplasts", "Chlorophyll"}
	if got := labels(graph); strings.Join(got, ",") != strings.Join(wantLabels, ",") {
		t.Fatalf("labels = %v, want %v", got, wantLabels)
	}

	photo := graph.Concepts[0]
	if photo.ID != "node-0" || photo.Category != common.CategoryProcess {
		t.Errorf("first concept = %+v", photo)
	}
	if photo.Description != "Conversion of light energy into chemical energy." {
		t.Errorf("Description = %q, want the longest description", photo.Description)
	}
	if photo.SocraticQuestion != "Why does it need light?" {
		t.Errorf("SocraticQuestion = %q", photo.SocraticQuestion)
	}

	want := []common.Relation{
		{Source: "node-0", Target: "node-1", Label: "happens in", Strength: 7},
		{Source: "node-2", Target: "node-3", Label: "contains", Strength: 6},
	}
	if len(graph.Relations) != len(want) {
		t.Fatalf("relations = %+v, want %+v", graph.Relations, want)
	}
	for i := range want {
		if graph.Relations[i] != want[i] {
			t.Errorf("relation[%d] = %+v, want %+v", i, graph.Relations[i], want[i])
		}
	}

	for _, call := range client.Calls() {
		if len(call.SystemPrompts) != 1 || !strings.Contains(call.SystemPrompts[0], "plant_cells.pdf") {
			t.Errorf("call %q system prompts = %v", call.Name, call.SystemPrompts)
		}
	}
}

func TestExtract_Dedupe(t *testing.T) {
	client := sectionClient(`{"duplicates":[{"canonicalName":"Chloroplast","concepts":["Chloroplast","Chloroplasts"]}]}`)
	g := newTestClient(t, NewGraphClientParams{AIClient: client, Dedupe: true})

	graph, err := g.Extract(context.Background(), twoSections, "cells.txt", extract.Options{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	wantLabels := []string{"Photosynthesis", "Chloroplast", "Chlorophyll"}
	if got := labels(graph); strings.Join(got, ",") != strings.Join(wantLabels, ",") {
		t.Fatalf("labels = %v, want %v", got, wantLabels)
	}
	if graph.Concepts[1].Description != "Organelles of plant cells." {
		t.Errorf("merged Description = %q", graph.Concepts[1].Description)
	}

	want := []common.Relation{
		{Source: "node-0", Target: "node-1", Label: "happens in", Strength: 7},
		{Source: "node-1", Target: "node-2", Label: "contains", Strength: 6},
	}
	if len(graph.Relations) != len(want) {
		t.Fatalf("relations = %+v, want %+v", graph.Relations, want)
	}
	for i := range want {
		if graph.Relations[i] != want[i] {
			t.Errorf("relation[%d] = %+v, want %+v", i, graph.Relations[i], want[i])
		}
	}
}

func TestExtract_DedupeFailureKeepsConcepts(t *testing.T) {
	client := sectionClient("not json at all")
	g := newTestClient(t, NewGraphClientParams{AIClient: client, Dedupe: true, MaxRetries: 1})

	graph, err := g.Extract(context.Background(), twoSections, "cells.txt", extract.Options{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(graph.Concepts) != 4 {
		t.Fatalf("len(Concepts) = %d, want 4", len(graph.Concepts))
	}
}

func TestExtract_MaxConceptsByMentions(t *testing.T) {
	g := newTestClient(t, NewGraphClientParams{AIClient: sectionClient("")})

	graph, err := g.Extract(context.Background(), twoSections, "cells.txt", extract.Options{MaxConcepts: 2})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if got := labels(graph); strings.Join(got, ",") != "Photosynthesis,Chloroplast" {
		t.Fatalf("labels = %v", got)
	}
	if len(graph.Relations) != 1 {
		t.Fatalf("relations = %+v, want only the relation between kept concepts", graph.Relations)
	}
}

func TestExtract_Progress(t *testing.T) {
	g := newTestClient(t, NewGraphClientParams{AIClient: sectionClient(""), ParallelAiRequests: 2})

	var (
		mu       sync.Mutex
		progress []int
	)
	opts := extract.Options{Progress: func(p int, stage string) {
		mu.Lock()
		defer mu.Unlock()
		progress = append(progress, p)
	}}

	if _, err := g.Extract(context.Background(), twoSections, "cells.txt", opts); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := []int{5, 10, 50, 90, 92, 96}
	if len(progress) != len(want) {
		t.Fatalf("progress = %v, want %v", progress, want)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Fatalf("progress = %v, want %v", progress, want)
		}
	}
}

func TestExtract_RetriesFailedUnit(t *testing.T) {
	var calls int
	client := &aitest.Client{Respond: func(name, prompt string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("temporary failure")
		}
		return firstSection, nil
	}}
	g := newTestClient(t, NewGraphClientParams{AIClient: client, MaxTokens: 1000})

	graph, err := g.Extract(context.Background(), twoSections, "cells.txt", extract.Options{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if calls != 2 || len(graph.Concepts) != 2 {
		t.Fatalf("calls = %d, concepts = %d, want 2 and 2", calls, len(graph.Concepts))
	}
}

func TestExtract_Errors(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name    string
		text    string
		respond func(name, prompt string) (string, error)
		wantErr error
	}{
		{
			name:    "model error",
			text:    twoSections,
			respond: func(string, string) (string, error) { return "", errBoom },
			wantErr: errBoom,
		},
		{
			name:    "no concepts",
			text:    twoSections,
			respond: func(string, string) (string, error) { return `{"concepts":[],"relations":[]}`, nil },
			wantErr: extract.ErrNoConceptsFound,
		},
		{
			name:    "empty text",
			text:    "  \n ",
			respond: func(string, string) (string, error) { return firstSection, nil },
			wantErr: extract.ErrNoConceptsFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestClient(t, NewGraphClientParams{AIClient: &aitest.Client{Respond: tt.respond}, MaxRetries: 2})
			_, err := g.Extract(context.Background(), tt.text, "cells.txt", extract.Options{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Extract() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
