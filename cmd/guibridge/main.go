package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/config"
	"github.com/longjinxiang/alexa-smart-screen-sdk/internal/log"
)

var opts struct {
	ConfigPath string
}

// app is filled by the root command before any subcommand runs
var app struct {
	cfg    config.Config
	logger *zap.Logger
}

func main() {
	root := &cobra.Command{
		Use:           "guibridge",
		Short:         "Smart-screen GUI message bridge",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			bootstrap, _ := zap.NewProduction()
			cfg, err := config.Load(bootstrap, opts.ConfigPath)
			if err != nil {
				return err
			}
			logger, err := log.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			app.cfg = cfg
			app.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.logger != nil {
				_ = app.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(
		newServeCmd(),
		newRendererCmd(),
		newValidateCmd(),
		newSchemaCmd(),
		newTokenCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
