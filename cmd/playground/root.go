package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/rubico-playground/internal/document"
	"github.com/GriffinCanCode/rubico-playground/internal/infrastructure/config"
	"github.com/GriffinCanCode/rubico-playground/internal/infrastructure/logging"
	"github.com/GriffinCanCode/rubico-playground/internal/playground"
	"github.com/GriffinCanCode/rubico-playground/internal/sandbox"
)

// options are the flags shared by every command
type options struct {
	logLevel   string
	dev        bool
	libraryURL string
	outputID   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "playground",
		Short: "Run rubico snippets in an isolated sandbox",
		Long: `Playground assembles code snippets into self-contained documents that bind
the rubico function library, and runs them in an isolated JavaScript sandbox.

Quick Start:
  echo "console.log(map(x => x * 2)([1, 2]))" | playground run
  playground render --markup snippet.js
  playground watch snippet.js
  playground serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.logLevel, "log-level", "l", "", "log level (debug, info, warn, error) (default $LOG_LEVEL)")
	flags.BoolVar(&opts.dev, "dev", false, "human readable logs")
	flags.StringVar(&opts.libraryURL, "library-url", "", "module specifier of the bound library")
	flags.StringVar(&opts.outputID, "output-id", "", "element id of the output surface")

	cmd.AddCommand(
		newServeCmd(opts),
		newRenderCmd(opts),
		newRunCmd(opts),
		newWatchCmd(opts),
	)
	return cmd
}

// quietLevel is the log level of one-shot commands unless overridden
const quietLevel = "warn"

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.IsDevelopment()})
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	return logger, nil
}

// config loads the environment configuration and applies the shared flags.
// Quiet commands log at quietLevel unless a level is set explicitly.
func (o *options) config(quiet bool) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.libraryURL != "" {
		cfg.Library.URL = o.libraryURL
	}
	if o.outputID != "" {
		cfg.Library.OutputID = o.outputID
	}
	switch {
	case o.logLevel != "":
		cfg.Logging.Level = o.logLevel
	case quiet && os.Getenv("LOG_LEVEL") == "":
		cfg.Logging.Level = quietLevel
	}
	if o.dev {
		cfg.Logging.Development = true
	}
	return cfg, nil
}

func assemblerFor(cfg *config.Config) *document.Assembler {
	return document.New(document.Options{
		LibraryURL: cfg.Library.URL,
		OutputID:   cfg.Library.OutputID,
	})
}

func sandboxFor(cfg *config.Config) sandbox.Config {
	base := sandbox.DefaultConfig()
	base.Timeout = cfg.Sandbox.Timeout
	base.MaxCallStackSize = cfg.Sandbox.MaxCallStackSize
	return playground.SandboxConfig(base, cfg.Library.URL)
}

// editorFor reads path, or stdin when path is empty or "-"
func editorFor(cmd *cobra.Command, args []string) (playground.Editor, error) {
	if len(args) > 0 && args[0] != "-" {
		return playground.NewFileEditor(args[0]), nil
	}
	text, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return playground.NewBuffer(string(text)), nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
