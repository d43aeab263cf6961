package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/ai"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/common"
)

type extractConcept struct {
	Label            string `json:"label" jsonschema_description:"Short noun phrase naming the concept, in title case"`
	Category         string `json:"category" jsonschema_description:"One of the provided categories"`
	Description      string `json:"description" jsonschema_description:"One or two sentences explaining the concept as the text describes it"`
	Context          string `json:"context" jsonschema_description:"A verbatim sentence from the text that mentions the concept"`
	SocraticQuestion string `json:"socratic_question" jsonschema_description:"An open question that makes the learner reason about the concept"`
}

type extractRelation struct {
	Source   string `json:"source" jsonschema_description:"Label of the source concept, exactly as in the concept list"`
	Target   string `json:"target" jsonschema_description:"Label of the target concept, exactly as in the concept list"`
	Label    string `json:"label" jsonschema_description:"Short verb phrase describing the relation"`
	Strength int    `json:"strength" jsonschema_description:"Integer from 1 (loosely connected) to 10 (inseparable)"`
}

type extractResponse struct {
	Concepts  []extractConcept  `json:"concepts" jsonschema_description:"Concepts identified in the text"`
	Relations []extractRelation `json:"relations" jsonschema_description:"Relations between the identified concepts"`
}

func categoryNames() string {
	names := make([]string, len(common.Categories))
	for i, c := range common.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ",")
}

func extractFromUnit(
	ctx context.Context,
	unit processUnit,
	fileName string,
	maxConcepts int,
	client ai.GraphAIClient,
) (*extractResponse, error) {
	systemPrompt := fmt.Sprintf(ai.ExtractConceptsPrompt, fileName, categoryNames(), maxConcepts)

	var res extractResponse
	err := client.GenerateCompletionWithFormat(
		ctx,
		"extract_concepts_and_relations",
		"Extract study concepts and their relations from a section of a document.",
		unit.text,
		&res,
		ai.WithSystemPrompts(systemPrompt),
	)
	if err != nil {
		return nil, err
	}

	return &res, nil
}
