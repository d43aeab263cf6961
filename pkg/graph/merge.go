package graph

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/common"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/extract"
)

// mergedConcept is a concept seen in one or more units.
type mergedConcept struct {
	draft    extract.ConceptDraft
	mentions int
}

func (c *mergedConcept) absorb(other extract.ConceptDraft) {
	if c.draft.Category == "" {
		c.draft.Category = other.Category
	}
	if len(other.Description) > len(c.draft.Description) {
		c.draft.Description = other.Description
	}
	if c.draft.Context == "" {
		c.draft.Context = other.Context
	}
	if c.draft.SocraticQuestion == "" {
		c.draft.SocraticQuestion = other.SocraticQuestion
	}
}

// mergeConcepts merges the concepts of all units by label, in unit order.
// The first spelling of a label wins.
func mergeConcepts(results []*extractResponse) []*mergedConcept {
	var merged []*mergedConcept
	byKey := make(map[string]*mergedConcept)

	for _, res := range results {
		if res == nil {
			continue
		}
		for _, c := range res.Concepts {
			draft := extract.ConceptDraft{
				Label:            strings.TrimSpace(c.Label),
				Category:         strings.TrimSpace(c.Category),
				Description:      strings.TrimSpace(c.Description),
				Context:          strings.TrimSpace(c.Context),
				SocraticQuestion: strings.TrimSpace(c.SocraticQuestion),
			}
			key := extract.LabelKey(draft.Label)
			if key == "" {
				continue
			}

			if existing, ok := byKey[key]; ok {
				existing.mentions++
				existing.absorb(draft)
				continue
			}
			mc := &mergedConcept{draft: draft, mentions: 1}
			byKey[key] = mc
			merged = append(merged, mc)
		}
	}

	return merged
}

// mergeRelations merges relations on the same unordered pair. Strengths are
// averaged over all occurrences and the first non-empty label is kept.
// aliases maps label keys of merged-away concepts to their canonical label.
func mergeRelations(results []*extractResponse, aliases map[string]string) []extract.RelationDraft {
	type pair struct{ a, b string }
	type mergedRelation struct {
		draft extract.RelationDraft
		sum   int
		count int
	}

	resolve := func(label string) string {
		label = strings.TrimSpace(label)
		if canonical, ok := aliases[extract.LabelKey(label)]; ok {
			return canonical
		}
		return label
	}

	var order []*mergedRelation
	byPair := make(map[pair]*mergedRelation)

	for _, res := range results {
		if res == nil {
			continue
		}
		for _, r := range res.Relations {
			source, target := resolve(r.Source), resolve(r.Target)
			a, b := extract.LabelKey(source), extract.LabelKey(target)
			if a == "" || b == "" || a == b {
				continue
			}
			if a > b {
				a, b = b, a
			}

			strength := common.ClampStrength(r.Strength)
			if existing, ok := byPair[pair{a, b}]; ok {
				existing.sum += strength
				existing.count++
				if existing.draft.Label == "" {
					existing.draft.Label = strings.TrimSpace(r.Label)
				}
				continue
			}

			mr := &mergedRelation{
				draft: extract.RelationDraft{
					Source: source,
					Target: target,
					Label:  strings.TrimSpace(r.Label),
				},
				sum:   strength,
				count: 1,
			}
			byPair[pair{a, b}] = mr
			order = append(order, mr)
		}
	}

	relations := make([]extract.RelationDraft, 0, len(order))
	for _, mr := range order {
		mr.draft.Strength = int(math.Round(float64(mr.sum) / float64(mr.count)))
		relations = append(relations, mr.draft)
	}
	return relations
}

// capConcepts keeps the maxConcepts most mentioned concepts. The relative
// order of the kept concepts does not change.
func capConcepts(concepts []*mergedConcept, maxConcepts int) []*mergedConcept {
	if maxConcepts <= 0 || len(concepts) <= maxConcepts {
		return concepts
	}

	ranked := slices.Clone(concepts)
	slices.SortStableFunc(ranked, func(a, b *mergedConcept) int {
		return cmp.Compare(b.mentions, a.mentions)
	})
	keep := make(map[*mergedConcept]bool, maxConcepts)
	for _, c := range ranked[:maxConcepts] {
		keep[c] = true
	}

	kept := make([]*mergedConcept, 0, maxConcepts)
	for _, c := range concepts {
		if keep[c] {
			kept = append(kept, c)
		}
	}
	return kept
}

func conceptDrafts(concepts []*mergedConcept) []extract.ConceptDraft {
	drafts := make([]extract.ConceptDraft, len(concepts))
	for i, c := range concepts {
		drafts[i] = c.draft
	}
	return drafts
}
