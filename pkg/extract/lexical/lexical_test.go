package lexical

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/common"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/extract"
)

const cellText = `The cell membrane controls transport. The cell membrane protects the cytoplasm inside every cell structure.

Mitochondria produce energy for the cell membrane. Mitochondria are the powerhouse and mitochondria divide.

Energy flows from mitochondria to ribosomes, and energy is stored as glucose molecules within the cytoplasm region.`

const separateText = `Photosynthesis feeds plants. Photosynthesis needs light. Photosynthesis makes sugar.

Respiration burns sugar. Respiration needs oxygen. Respiration releases heat.

Fermentation happens without oxygen. Fermentation yields alcohol. Fermentation powers yeast.`

func labels(g *common.Graph) []string {
	out := make([]string, 0, len(g.Concepts))
	for _, c := range g.Concepts {
		out = append(out, c.Label)
	}
	return out
}

func TestExtract_Concepts(t *testing.T) {
	g, err := NewExtractor().Extract(context.Background(), cellText, "cell_biology-notes.pdf", extract.Options{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if g.Title != "cell biology notes" {
		t.Errorf("Title = %q", g.Title)
	}
	want := []string{"Cell Membrane", "Mitochondria", "Energy"}
	if got := labels(g); !reflect.DeepEqual(got, want) {
		t.Fatalf("labels = %v, want %v", got, want)
	}

	first := g.Concepts[0]
	if first.ID != "node-0" || first.Mastery != 0 {
		t.Errorf("unexpected first concept %+v", first)
	}
	if first.Description != "Key concept extracted from the document with 3 occurrences." {
		t.Errorf("Description = %q", first.Description)
	}
	if first.Context != "The cell membrane controls transport." {
		t.Errorf("Context = %q", first.Context)
	}
	for _, c := range g.Concepts {
		if !strings.Contains(c.SocraticQuestion, c.Label) {
			t.Errorf("question for %s does not mention it: %q", c.Label, c.SocraticQuestion)
		}
	}
}

func TestExtract_RelationStrengthFromCooccurrence(t *testing.T) {
	g, err := NewExtractor().Extract(context.Background(), cellText, "cells.txt", extract.Options{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := []common.Relation{
		{Source: "node-0", Target: "node-1", Label: "relates to", Strength: 3},
		{Source: "node-0", Target: "node-2", Label: "relates to", Strength: 3},
		{Source: "node-1", Target: "node-2", Label: "relates to", Strength: 10},
	}
	if !reflect.DeepEqual(g.Relations, want) {
		t.Fatalf("relations = %+v, want %+v", g.Relations, want)
	}
}

func TestExtract_StarFallback(t *testing.T) {
	g, err := NewExtractor().Extract(context.Background(), separateText, "energy.md", extract.Options{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := []string{"Photosynthesis", "Respiration", "Fermentation"}
	if got := labels(g); !reflect.DeepEqual(got, want) {
		t.Fatalf("labels = %v, want %v", got, want)
	}
	if len(g.Relations) != 2 {
		t.Fatalf("got %d relations, want 2", len(g.Relations))
	}
	for i, r := range g.Relations {
		if r.Source != "node-0" || r.Target != common.ConceptID(i+1) || r.Strength != common.DefaultStrength {
			t.Errorf("relation %d = %+v", i, r)
		}
	}
}

func TestExtract_Options(t *testing.T) {
	var stages []string
	opts := extract.Options{
		MaxConcepts: 2,
		Progress:    func(_ int, stage string) { stages = append(stages, stage) },
	}

	g, err := NewExtractor().Extract(context.Background(), cellText, "cells.txt", opts)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(g.Concepts) != 2 {
		t.Fatalf("got %d concepts, want 2", len(g.Concepts))
	}
	if len(g.Relations) != 1 || g.Relations[0].Strength != common.DefaultStrength {
		t.Errorf("relations = %+v", g.Relations)
	}
	if len(stages) == 0 {
		t.Error("no progress reported")
	}

	g, err = NewExtractor().Extract(context.Background(), cellText, "cells.txt", extract.Options{MaxConcepts: 1})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(g.Concepts) != 1 || len(g.Relations) != 0 {
		t.Errorf("got %d concepts and %d relations", len(g.Concepts), len(g.Relations))
	}
}

func TestExtract_NoConcepts(t *testing.T) {
	_, err := NewExtractor().Extract(context.Background(), "Tiny words only.", "x.txt", extract.Options{})
	if !errors.Is(err, extract.ErrNoConceptsFound) {
		t.Fatalf("Extract() error = %v, want ErrNoConceptsFound", err)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	ex := NewExtractor()
	a, _ := ex.Extract(context.Background(), cellText, "a.txt", extract.Options{})
	b, _ := ex.Extract(context.Background(), cellText, "a.txt", extract.Options{})
	if !reflect.DeepEqual(a, b) {
		t.Fatal("extraction is not deterministic")
	}
}

func TestSplitSentences(t *testing.T) {
	text := "Short one. This sentence is long enough to keep!\nAnother sentence that stays here? e.g.no split here because no space follows."

	got := splitSentences(text)

	want := []string{
		"This sentence is long enough to keep!",
		"Another sentence that stays here?",
		"e.g.no split here because no space follows.",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("splitSentences() = %q, want %q", got, want)
	}
}

func TestStrengthFromCount(t *testing.T) {
	tests := []struct {
		count, max, want int
	}{
		{1, 1, common.DefaultStrength},
		{1, 0, common.DefaultStrength},
		{1, 2, 3},
		{2, 2, 10},
		{2, 3, 7},
		{3, 5, 7},
	}
	for _, tt := range tests {
		if got := strengthFromCount(tt.count, tt.max); got != tt.want {
			t.Errorf("strengthFromCount(%d, %d) = %d, want %d", tt.count, tt.max, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := map[string]common.Category{
		"This principle is central.":         common.CategoryCoreConcept,
		"Each step of the procedure matters": common.CategoryProcess,
		"The network layer routes packets":   common.CategoryEntity,
		"Latency is a quality metric":        common.CategoryProperty,
		"For instance, consider a scenario":  common.CategoryExample,
		"Nothing to see":                     common.CategoryCoreConcept,
	}
	for in, want := range tests {
		if got := classify(in); got != want {
			t.Errorf("classify(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	if got := titleCase("cell membrane"); got != "Cell Membrane" {
		t.Errorf("titleCase() = %q", got)
	}
	if got := titleCase("energy"); got != "Energy" {
		t.Errorf("titleCase() = %q", got)
	}
}
