package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/rubico-playground/internal/playground"
	"github.com/GriffinCanCode/rubico-playground/internal/sandbox"
)

func newRunCmd(opts *options) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:     "run [file]",
		Aliases: []string{"r"},
		Short:   "Run a snippet and print its output lines",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(true)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Sandbox.Timeout = timeout
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			editor, err := editorFor(cmd, args)
			if err != nil {
				return err
			}

			frame := playground.NewFrame(sandboxFor(cfg), playground.WithFrameLogger(logger))
			session := playground.NewSession(editor, frame,
				playground.WithAssembler(assemblerFor(cfg)),
				playground.WithLogger(logger),
			)
			if _, err := session.Run(); err != nil {
				return err
			}
			frame.Wait()

			result, err := frame.Result()
			printOutput(cmd.OutOrStdout(), result)
			if err != nil {
				return fmt.Errorf("run aborted: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "abort the run after this long, 0 for no limit (default $SANDBOX_TIMEOUT)")
	return cmd
}

func printOutput(w io.Writer, result *sandbox.Result) {
	if result == nil {
		return
	}
	for _, line := range result.Output {
		fmt.Fprintln(w, line)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(w, "script %d: %s\n", e.Script, e.Message)
	}
}
