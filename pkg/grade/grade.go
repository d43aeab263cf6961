package grade

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/common"
)

var (
	ErrEmptyAnswer   = errors.New("answer cannot be empty")
	ErrMissingField  = errors.New("missing required fields")
	ErrUnknownScorer = errors.New("unknown scorer")
)

// Submission is a learner's answer to the socratic question of a concept.
type Submission struct {
	Answer       string `json:"answer"`
	Context      string `json:"context"`
	ConceptLabel string `json:"concept_label"`
	Question     string `json:"question"`
}

// Validate checks that every field is set and that the answer is not blank.
func (s Submission) Validate() error {
	if s.Answer == "" || s.Context == "" || s.ConceptLabel == "" || s.Question == "" {
		return ErrMissingField
	}
	if strings.TrimSpace(s.Answer) == "" {
		return ErrEmptyAnswer
	}
	return nil
}

// Result is the outcome of grading a submission. Score feeds the mastery
// update of the graph.
type Result struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
	Learned  bool   `json:"learned"`
}

func newResult(score int, feedback string) Result {
	return Result{
		Score:    score,
		Feedback: feedback,
		Learned:  score >= common.LearnedThreshold,
	}
}

// Scorer grades submissions.
type Scorer interface {
	Score(ctx context.Context, sub Submission) (Result, error)
}

// DefaultScorer is used when no scorer is requested.
const DefaultScorer = "lexical"

// Scorers maps scorer names to implementations.
type Scorers map[string]Scorer

// Get returns the named scorer, or the default one for an empty name.
func (s Scorers) Get(name string) (Scorer, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultScorer
	}
	scorer, ok := s[name]
	if !ok || scorer == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScorer, name)
	}
	return scorer, nil
}

// FeedbackFor returns the generic feedback for a score band.
func FeedbackFor(score int) string {
	switch {
	case score >= 85:
		return "Excellent understanding! You've demonstrated strong mastery of this concept with clear, detailed reasoning."
	case score >= 70:
		return "Good grasp of the concept. Try to include more specific details from the source material and explain the relationships between ideas."
	case score >= 50:
		return "You're on the right track. Consider expanding your answer with more key terms, examples, and deeper explanation of how this concept works."
	case score >= 30:
		return "Your answer touches on some aspects but is missing important details. Re-read the context and try to address the question more directly."
	default:
		return "Try to engage more deeply with the concept. Review the context provided and think about what makes this concept important and how it connects to related ideas."
	}
}
