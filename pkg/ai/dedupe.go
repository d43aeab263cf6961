package ai

import (
	"context"
	"fmt"
	"strings"

	gUtil "github.com/OFFIS-RIT/synthetix/backend/internal/util"
)

const DedupeBatchSize = 300

// DuplicateGroup represents a group of concept labels naming the same concept.
type DuplicateGroup struct {
	Name     string   `json:"canonicalName" jsonschema_description:"The final label for the deduplicated concepts."`
	Concepts []string `json:"concepts" jsonschema_description:"List of concept labels that name the same concept."`
}

// DuplicatesResponse is the response from the AI dedupe call
type DuplicatesResponse struct {
	Duplicates []DuplicateGroup `json:"duplicates" jsonschema_description:"List of groups of duplicate concepts."`
}

// CallDedupeAI asks the model which of the given labels name the same
// concept. At most DedupeBatchSize labels are accepted per call.
func CallDedupeAI(
	ctx context.Context,
	labels []string,
	aiClient GraphAIClient,
	maxRetries int,
) (*DuplicatesResponse, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("ai client is nil")
	}

	cleaned := make([]string, 0, len(labels))
	for _, label := range labels {
		if label = NormalizeDedupeValue(label); label != "" {
			cleaned = append(cleaned, label)
		}
	}
	if len(cleaned) < 2 {
		return &DuplicatesResponse{Duplicates: []DuplicateGroup{}}, nil
	}
	if len(cleaned) > DedupeBatchSize {
		return nil, fmt.Errorf("dedupe batch size exceeded: %d > %d", len(cleaned), DedupeBatchSize)
	}

	var data strings.Builder
	data.WriteString("Concepts:\n")
	for _, label := range cleaned {
		fmt.Fprintf(&data, "- %s\n", label)
	}
	prompt := fmt.Sprintf(DedupeConceptsPrompt, data.String())

	var res DuplicatesResponse
	err := gUtil.RetryErrWithContext(ctx, maxRetries, func(ctx context.Context) error {
		return aiClient.GenerateCompletionWithFormat(
			ctx, "dedupe_concepts", "Group concept labels that name the same concept.", prompt, &res,
		)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// NormalizeDedupeValue collapses whitespace and line breaks in a label.
func NormalizeDedupeValue(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
