package main

import (
	"fmt"

	"github.com/OFFIS-RIT/synthetix/backend/internal/ui"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/scene"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/scene/echarts"

	"github.com/spf13/cobra"
)

func (c *cli) layoutCmd() *cobra.Command {
	var (
		selected string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "layout <graph.json>",
		Short: "Lay out a graph and print the positioned scene as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGraph(args[0])
			if err != nil {
				return err
			}
			s := scene.Compose(g, selected, c.app.Engine, c.app.Viewport)
			return writeJSONTo(cmd.OutOrStdout(), out, s)
		},
	}

	cmd.Flags().StringVar(&selected, "selected", "", "id of the selected concept")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the scene JSON to this file instead of stdout")
	return cmd
}

func (c *cli) renderCmd() *cobra.Command {
	var (
		selected string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "render <graph.json>",
		Short: "Render a graph to a standalone interactive HTML page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGraph(args[0])
			if err != nil {
				return err
			}
			s := scene.Compose(g, selected, c.app.Engine, c.app.Viewport)
			if err := echarts.RenderToFile(out, s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s wrote %s\n", ui.StatusIcon(true), ui.Subtle.Sprint(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&selected, "selected", "", "id of the selected concept")
	cmd.Flags().StringVarP(&out, "out", "o", "graph.html", "output HTML file")
	return cmd
}
