package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/rubico-playground/internal/bridge"
	"github.com/GriffinCanCode/rubico-playground/internal/playground"
	"github.com/GriffinCanCode/rubico-playground/internal/sandbox"
	"github.com/GriffinCanCode/rubico-playground/internal/shared/utils"
)

func newWatchCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch file [glob...]",
		Aliases: []string{"w"},
		Short:   "Re-run a snippet whenever a matching file is written",
		Long: `Run the snippet in file, then run it again every time file, or any file
matching one of the extra globs, is written. Globs use doublestar syntax, so
"lib/**/*.js" matches recursively.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !isFile(path) {
				return fmt.Errorf("%s is not a file", path)
			}

			cfg, err := opts.config(true)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			out := cmd.OutOrStdout()
			var (
				mu    sync.Mutex
				frame *playground.Frame
			)
			frame = playground.NewFrame(sandboxFor(cfg),
				playground.WithFrameLogger(logger),
				playground.OnLoad(func(ref bridge.Reference, result *sandbox.Result, err error) {
					mu.Lock()
					defer mu.Unlock()
					if ref != frame.Mounted() {
						// A newer save is already loading
						return
					}
					fmt.Fprintf(out, "--- %s\n", utils.Short(ref.Digest()))
					printOutput(out, result)
					if err != nil {
						fmt.Fprintf(out, "run aborted: %v\n", err)
					}
				}),
			)
			session := playground.NewSession(playground.NewFileEditor(path), frame,
				playground.WithAssembler(assemblerFor(cfg)),
				playground.WithLogger(logger),
			)
			if _, err := session.Run(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = playground.Watch(ctx, session, args, logger)
			frame.Wait()
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	return cmd
}
