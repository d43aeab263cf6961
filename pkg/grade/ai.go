package grade

import (
	"context"
	"fmt"
	"strings"

	gUtil "github.com/OFFIS-RIT/synthetix/backend/internal/util"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/ai"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/common"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/logger"
)

type gradeResponse struct {
	Score    int    `json:"score" jsonschema_description:"Score from 0 to 100, 85 or more means the concept is mastered"`
	Feedback string `json:"feedback" jsonschema_description:"Short feedback for the learner"`
}

// AIScorer grades answers with a language model.
type AIScorer struct {
	client     ai.GraphAIClient
	maxRetries int
}

var _ Scorer = (*AIScorer)(nil)

func NewAIScorer(client ai.GraphAIClient, maxRetries int) *AIScorer {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &AIScorer{client: client, maxRetries: maxRetries}
}

// Score asks the model for a score in [0,100]. Out of range scores are
// clamped and missing feedback is replaced by the generic feedback of the
// score band.
func (s *AIScorer) Score(ctx context.Context, sub Submission) (Result, error) {
	if err := sub.Validate(); err != nil {
		return Result{}, err
	}

	prompt := fmt.Sprintf(
		ai.GradeAnswerPrompt,
		sub.ConceptLabel,
		sub.Question,
		sub.Context,
		strings.TrimSpace(sub.Answer),
	)

	var res gradeResponse
	err := gUtil.RetryErrWithContext(ctx, s.maxRetries, func(ctx context.Context) error {
		return s.client.GenerateCompletionWithFormat(ctx, "grade_answer", "Grade a learner's answer.", prompt, &res)
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to grade answer: %w", err)
	}

	score := max(common.MinMastery, min(common.MaxMastery, res.Score))
	feedback := strings.TrimSpace(res.Feedback)
	if feedback == "" {
		feedback = FeedbackFor(score)
	}
	logger.Debug("[Grade] Graded answer", "concept", sub.ConceptLabel, "score", score)

	return newResult(score, feedback), nil
}
