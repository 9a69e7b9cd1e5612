// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/appinsight/insightviz/internal/analytics"
	"github.com/appinsight/insightviz/internal/analytics/extractors"
	"github.com/appinsight/insightviz/internal/analytics/source"
	"github.com/appinsight/insightviz/internal/config"
	"github.com/appinsight/insightviz/internal/logging"
)

var version = "dev"

// app carries state resolved once flags are parsed.
type app struct {
	configPath string
	convention string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "insightviz",
		Short:         "Turn pre-computed analytics JSON into chart-ready view models",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&a.convention, "convention", "", "marker-key convention: dashboard or raw")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: console or json")

	root.AddCommand(
		newClassifyCmd(a),
		newVisualizeCmd(a),
		newValidateCmd(a),
		newSchemasCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
	)
	return root
}

// init loads config and applies flag overrides.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("convention") {
		cfg.Convention = a.convention
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

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) dispatcher(opts ...analytics.Option) (*analytics.Dispatcher, error) {
	all := append([]analytics.Option{analytics.WithLogger(a.logger)}, opts...)
	return extractors.NewDispatcher(a.cfg.Convention, all...)
}

// readDocument decodes the file argument, or stdin for "-".
func readDocument(cmd *cobra.Command, path, format string) (any, error) {
	data, err := source.Read(path, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = source.FormatFromPath(path)
	}
	return source.Decode(data, format)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
