package main

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/framegraph"
	"github.com/aretw0/framegraph/internal/config"
	"github.com/aretw0/framegraph/internal/logging"
	"github.com/aretw0/framegraph/pkg/adapters/file"
	"github.com/aretw0/framegraph/pkg/ingest"
	"github.com/spf13/cobra"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "framegraph",
		Short: "framegraph resolves transforms between coordinate frames",
		Long: `framegraph keeps a graph of parent/child coordinate frames fed by Redis,
rosbridge or fixture files, and resolves the rigid transform between any two frames.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a framegraph.yaml configuration file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(
		newServeCmd(a),
		newResolveCmd(a),
		newTreeCmd(a),
		newFramesCmd(a),
		newValidateCmd(a),
		newPublishCmd(a),
		newMCPCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// load reads the configuration file, applies flag overrides and builds the logger.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.NewWithWriter(cmd.ErrOrStderr(), logging.ParseLevel(cfg.Log.Level), logging.Format(cfg.Log.Format))
	return nil
}

func (a *app) newGraph(opts ...framegraph.Option) *framegraph.Graph {
	base := []framegraph.Option{
		framegraph.WithLogger(a.logger),
		framegraph.WithWorldFrame(a.cfg.WorldFrame),
		framegraph.WithExpiryWindow(a.cfg.ExpiryWindow),
		framegraph.WithCoalesceWindow(a.cfg.CoalesceWindow),
	}
	return framegraph.New(append(base, opts...)...)
}

// fixturePath picks the --fixture flag, falling back to feeds.file.path.
func (a *app) fixturePath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if a.cfg.Feeds.File.Path != "" {
		return a.cfg.Feeds.File.Path, nil
	}
	return "", fmt.Errorf("no fixture given: pass --fixture or set feeds.file.path")
}

// loadFixtureGraph builds a graph holding the edges of one fixture file.
func (a *app) loadFixtureGraph(flag string) (*framegraph.Graph, error) {
	path, err := a.fixturePath(flag)
	if err != nil {
		return nil, err
	}
	fx, err := file.Load(path)
	if err != nil {
		return nil, err
	}

	g := a.newGraph()
	res := fx.Apply(ingest.NewApplier(g, ingest.WithLogger(a.logger)))
	a.logger.Debug("fixture loaded", "path", path, "accepted", res.Accepted, "rejected", res.Rejected)
	return g, nil
}
