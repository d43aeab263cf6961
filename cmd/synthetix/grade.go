package main

import (
	"strconv"

	"github.com/OFFIS-RIT/synthetix/backend/internal/ui"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/grade"

	"github.com/spf13/cobra"
)

func (c *cli) gradeCmd() *cobra.Command {
	var (
		sub      grade.Submission
		strategy string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade an answer to a concept's socratic question",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sub.Validate(); err != nil {
				return err
			}
			if strategy == "" {
				strategy = c.cfg.Grade.Strategy
			}
			scorer, err := c.app.Scorers.Get(strategy)
			if err != nil {
				return err
			}

			res, err := scorer.Score(cmd.Context(), sub)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(w, res)
			}
			ui.Table(w, []string{"CONCEPT", "SCORE", "LEARNED", "FEEDBACK"}, [][]string{{
				sub.ConceptLabel,
				strconv.Itoa(res.Score),
				ui.StatusIcon(res.Learned),
				res.Feedback,
			}})
			return nil
		},
	}

	cmd.Flags().StringVar(&sub.Answer, "answer", "", "the learner's answer")
	cmd.Flags().StringVar(&sub.Context, "context", "", "source context of the concept")
	cmd.Flags().StringVar(&sub.ConceptLabel, "concept", "", "label of the concept")
	cmd.Flags().StringVar(&sub.Question, "question", "", "the socratic question that was asked")
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "scorer (lexical, ai)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}
