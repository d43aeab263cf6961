package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/OFFIS-RIT/synthetix/backend/internal/config"
	"github.com/OFFIS-RIT/synthetix/backend/internal/server"
	mid "github.com/OFFIS-RIT/synthetix/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/synthetix/backend/internal/util"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/common"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/logger"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/logger/console"

	"github.com/spf13/cobra"
)

// cli carries the state shared by all subcommands of one invocation.
type cli struct {
	configPath string
	debug      bool

	cfg *config.Config
	app *mid.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "synthetix",
		Short:         "Turn documents into explorable knowledge graphs",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", config.Path(), "path to the TOML config file")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "log debug output")

	root.AddCommand(
		c.extractCmd(),
		c.layoutCmd(),
		c.renderCmd(),
		c.gradeCmd(),
		c.masteryCmd(),
		c.configCmd(),
	)
	return root
}

func (c *cli) init(logOutput io.Writer) error {
	util.LoadEnv()
	logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  c.debug || util.GetEnvBool("DEBUG", false),
		Output: logOutput,
	}))

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	aiClient, err := mid.NewAIClientFromEnv()
	if err != nil {
		return err
	}
	app, err := server.NewApp(cfg, aiClient)
	if err != nil {
		return err
	}
	c.app = app
	return nil
}

func readGraph(path string) (*common.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g := new(common.Graph)
	if err := json.Unmarshal(data, g); err != nil {
		return nil, fmt.Errorf("failed to parse graph %s: %w", path, err)
	}
	return g, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeJSONTo writes v to path, or to w for an empty path.
func writeJSONTo(w io.Writer, path string, v any) error {
	if path == "" {
		return writeJSON(w, v)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return writeJSON(f, v)
}
