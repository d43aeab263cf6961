package main

import (
	"fmt"

	"github.com/OFFIS-RIT/synthetix/backend/internal/ui"

	"github.com/spf13/cobra"
)

func (c *cli) masteryCmd() *cobra.Command {
	var (
		node    string
		mastery int
		write   bool
	)

	cmd := &cobra.Command{
		Use:   "mastery <graph.json>",
		Short: "Record mastery for a concept and print the updated graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGraph(args[0])
			if err != nil {
				return err
			}
			updated, err := g.WithMastery(node, mastery)
			if err != nil {
				return err
			}

			if !write {
				return writeJSON(cmd.OutOrStdout(), updated)
			}
			if err := writeJSONTo(cmd.OutOrStdout(), args[0], updated); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %d of %d concepts learned\n",
				ui.StatusIcon(true), updated.LearnedCount(), len(updated.Concepts))
			return nil
		},
	}

	cmd.Flags().StringVar(&node, "node", "", "id of the concept")
	cmd.Flags().IntVar(&mastery, "mastery", 0, "mastery score between 0 and 100")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to the graph file")
	_ = cmd.MarkFlagRequired("node")
	return cmd
}
