package common

import (
	"errors"
	"fmt"
)

// Category is the visual affordance of a concept. It is never used by the
// layout physics.
type Category string

const (
	CategoryCoreConcept Category = "core-concept"
	CategoryProcess     Category = "process"
	CategoryEntity      Category = "entity"
	CategoryProperty    Category = "property"
	CategoryExample     Category = "example"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryCoreConcept,
	CategoryProcess,
	CategoryEntity,
	CategoryProperty,
	CategoryExample,
}

// ParseCategory maps a raw category string onto the enumerated set.
// Unknown values fall back to CategoryCoreConcept.
func ParseCategory(raw string) Category {
	for _, c := range Categories {
		if string(c) == raw {
			return c
		}
	}
	return CategoryCoreConcept
}

const (
	// LearnedThreshold is the mastery at which a concept counts as learned.
	LearnedThreshold = 85
	MinMastery       = 0
	MaxMastery       = 100

	MinStrength     = 1
	MaxStrength     = 10
	DefaultStrength = 5
)

var ErrConceptNotFound = errors.New("concept not found")

// Graph is the abstract knowledge graph produced by an extraction strategy.
//
// The order of Concepts is meaningful: it is the index used for the initial
// placement of the layout engine.
type Graph struct {
	Title     string     `json:"title"`
	Concepts  []Concept  `json:"concepts"`
	Relations []Relation `json:"relations"`
}

// Concept represents a node in the graph, a single learnable topic.
//
// Description, Context and SocraticQuestion are pedagogical payload and
// are never inspected by the layout.
type Concept struct {
	ID               string   `json:"id"`
	Label            string   `json:"label"`
	Category         Category `json:"category"`
	Mastery          int      `json:"mastery"`
	Description      string   `json:"description"`
	Context          string   `json:"context"`
	SocraticQuestion string   `json:"socraticQuestion"`
}

// Relation represents a weighted, labeled edge between two concepts.
// Physics treat it as undirected.
type Relation struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Label    string `json:"label"`
	Strength int    `json:"strength,omitempty"`
}

// ConceptID returns the stable id for the concept created at index i.
func ConceptID(i int) string {
	return fmt.Sprintf("node-%d", i)
}

// Learned reports whether the concept's mastery reached LearnedThreshold.
func (c Concept) Learned() bool {
	return c.Mastery >= LearnedThreshold
}

// EffectiveStrength returns the relation strength, substituting
// DefaultStrength when the stored value is unset or outside [1,10].
func (r Relation) EffectiveStrength() int {
	if r.Strength < MinStrength || r.Strength > MaxStrength {
		return DefaultStrength
	}
	return r.Strength
}

// ClampStrength forces an arbitrary strength into [1,10]. Zero maps to
// DefaultStrength.
func ClampStrength(s int) int {
	if s == 0 {
		return DefaultStrength
	}
	return max(MinStrength, min(MaxStrength, s))
}

// Index maps concept ids to their position in Concepts.
func (g *Graph) Index() map[string]int {
	idx := make(map[string]int, len(g.Concepts))
	for i, c := range g.Concepts {
		idx[c.ID] = i
	}
	return idx
}

// Concept looks up a concept by id.
func (g *Graph) Concept(id string) (Concept, bool) {
	for _, c := range g.Concepts {
		if c.ID == id {
			return c, true
		}
	}
	return Concept{}, false
}

// LearnedCount returns the number of learned concepts.
func (g *Graph) LearnedCount() int {
	count := 0
	for _, c := range g.Concepts {
		if c.Learned() {
			count++
		}
	}
	return count
}

// WithMastery applies a mastery update and returns a new graph value. The
// receiver is left untouched so an in-flight layout never observes the
// change.
//
// Mastery only ever grows: the stored value becomes max(old, new), with new
// clamped to [0,100].
func (g *Graph) WithMastery(id string, mastery int) (*Graph, error) {
	idx := -1
	for i, c := range g.Concepts {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrConceptNotFound, id)
	}

	concepts := make([]Concept, len(g.Concepts))
	copy(concepts, g.Concepts)

	mastery = max(MinMastery, min(MaxMastery, mastery))
	concepts[idx].Mastery = max(concepts[idx].Mastery, mastery)

	relations := make([]Relation, len(g.Relations))
	copy(relations, g.Relations)

	return &Graph{
		Title:     g.Title,
		Concepts:  concepts,
		Relations: relations,
	}, nil
}
