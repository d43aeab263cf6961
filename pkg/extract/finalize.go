package extract

import (
	"strings"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/common"
)

// ConceptDraft is a concept as proposed by a strategy, before ids are
// assigned.
type ConceptDraft struct {
	Label            string
	Category         string
	Description      string
	Context          string
	SocraticQuestion string
}

// RelationDraft references its endpoints by concept label.
type RelationDraft struct {
	Source   string
	Target   string
	Label    string
	Strength int
}

// Finalize turns drafts into a graph.
//
// Concepts keep their order and get the ids node-0, node-1 and so on.
// Concepts with an empty or repeated label (compared case-insensitively)
// are skipped. Relations are resolved by label; relations pointing at an
// unknown concept, self relations and every relation after the first one on
// the same unordered pair are dropped. Strengths are clamped to [1,10].
//
// maxConcepts and maxRelations cap the result when positive.
func Finalize(title string, concepts []ConceptDraft, relations []RelationDraft, maxConcepts, maxRelations int) *common.Graph {
	g := &common.Graph{
		Title:     title,
		Concepts:  []common.Concept{},
		Relations: []common.Relation{},
	}

	ids := make(map[string]string, len(concepts))
	for _, draft := range concepts {
		if maxConcepts > 0 && len(g.Concepts) >= maxConcepts {
			break
		}
		label := strings.TrimSpace(draft.Label)
		key := LabelKey(label)
		if key == "" {
			continue
		}
		if _, ok := ids[key]; ok {
			continue
		}

		id := common.ConceptID(len(g.Concepts))
		ids[key] = id
		g.Concepts = append(g.Concepts, common.Concept{
			ID:               id,
			Label:            label,
			Category:         common.ParseCategory(strings.ToLower(strings.TrimSpace(draft.Category))),
			Mastery:          0,
			Description:      strings.TrimSpace(draft.Description),
			Context:          strings.TrimSpace(draft.Context),
			SocraticQuestion: strings.TrimSpace(draft.SocraticQuestion),
		})
	}

	type pair struct{ a, b string }
	seen := make(map[pair]struct{}, len(relations))
	for _, draft := range relations {
		if maxRelations > 0 && len(g.Relations) >= maxRelations {
			break
		}
		source, ok := ids[LabelKey(draft.Source)]
		if !ok {
			continue
		}
		target, ok := ids[LabelKey(draft.Target)]
		if !ok || source == target {
			continue
		}
		key := pair{source, target}
		if key.b < key.a {
			key.a, key.b = key.b, key.a
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		label := strings.TrimSpace(draft.Label)
		if label == "" {
			label = DefaultRelationLabel
		}
		g.Relations = append(g.Relations, common.Relation{
			Source:   source,
			Target:   target,
			Label:    label,
			Strength: common.ClampStrength(draft.Strength),
		})
	}

	return g
}

// LabelKey is the case and whitespace insensitive identity of a concept label.
func LabelKey(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}

// TitleFromFilename derives a graph title from an uploaded file name: the
// extension is dropped and dashes and underscores become spaces.
func TitleFromFilename(filename string) string {
	name := filename
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	name = strings.TrimSpace(name)
	if name == "" {
		return "Untitled"
	}
	return name
}
