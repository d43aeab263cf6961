package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/OFFIS-RIT/synthetix/backend/internal/ui"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/extract"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/loader"
	ioloader "github.com/OFFIS-RIT/synthetix/backend/pkg/loader/io"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/loader/source"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/scene"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/scene/echarts"

	"github.com/spf13/cobra"
)

func (c *cli) extractCmd() *cobra.Command {
	var (
		strategy string
		out      string
		html     string
		quiet    bool
	)

	cmd := &cobra.Command{
		Use:   "extract <file|url>",
		Short: "Extract a knowledge graph from a PDF, text, markdown file or web page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			ctx := cmd.Context()

			if strategy == "" {
				strategy = c.cfg.Extract.Strategy
			}
			ex, err := c.app.Extractors.Get(strategy)
			if err != nil {
				return fmt.Errorf("%w (available: %s)", err, strings.Join(c.app.Extractors.Names(), ", "))
			}

			var raw loader.FileLoader = ioloader.NewIOFileLoader()
			if isURL(path) {
				raw = c.app.Web
			}
			text, err := source.Text(ctx, path, path, raw)
			if err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			if !quiet {
				ui.Banner(stderr, "extracting "+filepath.Base(path)+" with "+ex.Name())
			}

			var graphResult *extract.Event
			for ev := range extract.Stream(ctx, ex, text, filepath.Base(path), c.cfg.ExtractOptions(nil)) {
				if ev.Terminal() {
					graphResult = &ev
					continue
				}
				if !quiet {
					fmt.Fprintf(stderr, "\r  %s %3d%% %-40s", ui.Bar(ev.Progress, 30), ev.Progress, ev.Stage)
				}
			}
			if !quiet {
				fmt.Fprintln(stderr)
			}
			if graphResult == nil {
				return ctx.Err()
			}
			if graphResult.Err != nil {
				return graphResult.Err
			}
			g := graphResult.Graph

			if !quiet {
				fmt.Fprintf(stderr, "  %s %d concepts, %d relations\n", ui.StatusIcon(true), len(g.Concepts), len(g.Relations))
			}

			if html != "" {
				s := scene.Compose(g, "", c.app.Engine, c.app.Viewport)
				if err := echarts.RenderToFile(html, s); err != nil {
					return err
				}
			}
			return writeJSONTo(cmd.OutOrStdout(), out, g)
		},
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "extraction strategy (lexical, ai)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the graph JSON to this file instead of stdout")
	cmd.Flags().StringVar(&html, "html", "", "also render the graph to this HTML file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print progress")
	return cmd
}

func isURL(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
