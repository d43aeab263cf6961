package graph

import (
	"context"
	"strings"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/ai"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/extract"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/logger"
)

// dedupeConcepts merges concepts that different units extracted under
// different labels. It returns the remaining concepts and maps the label key
// of every renamed or merged-away concept to its canonical label.
func (g *GraphClient) dedupeConcepts(
	ctx context.Context,
	concepts []*mergedConcept,
) ([]*mergedConcept, map[string]string, error) {
	aliases := make(map[string]string)
	if len(concepts) < 2 {
		return concepts, aliases, nil
	}

	removed := make(map[*mergedConcept]bool)
	batchSize := ai.DedupeBatchSize
	for start := 0; start < len(concepts); start += batchSize {
		batch := concepts[start:min(start+batchSize, len(concepts))]

		labels := make([]string, len(batch))
		for i, c := range batch {
			labels[i] = c.draft.Label
		}

		res, err := ai.CallDedupeAI(ctx, labels, g.aiClient, g.maxRetries)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("[Dedupe] Deduplicated batch", "concepts", len(batch), "groups", len(res.Duplicates))

		applyDeduplication(batch, res, removed, aliases)
	}

	kept := make([]*mergedConcept, 0, len(concepts)-len(removed))
	for _, c := range concepts {
		if !removed[c] {
			kept = append(kept, c)
		}
	}
	return kept, aliases, nil
}

// applyDeduplication folds every duplicate group into its most mentioned
// member. Groups naming fewer than two known concepts are ignored.
func applyDeduplication(
	batch []*mergedConcept,
	res *ai.DuplicatesResponse,
	removed map[*mergedConcept]bool,
	aliases map[string]string,
) {
	byKey := make(map[string]*mergedConcept, len(batch))
	for _, c := range batch {
		byKey[extract.LabelKey(c.draft.Label)] = c
	}

	for _, group := range res.Duplicates {
		var members []*mergedConcept
		seen := make(map[*mergedConcept]bool)
		for _, label := range group.Concepts {
			c, ok := byKey[extract.LabelKey(label)]
			if !ok || removed[c] || seen[c] {
				continue
			}
			seen[c] = true
			members = append(members, c)
		}
		if len(members) < 2 {
			continue
		}

		canonical := members[0]
		for _, c := range members[1:] {
			if c.mentions > canonical.mentions {
				canonical = c
			}
		}

		name := ai.NormalizeDedupeValue(group.Name)
		if name == "" {
			name = canonical.draft.Label
		}

		for _, c := range members {
			aliases[extract.LabelKey(c.draft.Label)] = name
			if c == canonical {
				continue
			}
			canonical.mentions += c.mentions
			canonical.absorb(c.draft)
			removed[c] = true
		}
		if !strings.EqualFold(canonical.draft.Label, name) {
			logger.Debug("[Dedupe] Renamed concept", "from", canonical.draft.Label, "to", name)
		}
		canonical.draft.Label = name
	}
}
