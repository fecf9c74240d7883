package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/rubico-playground/internal/bridge"
)

func newRenderCmd(opts *options) *cobra.Command {
	var (
		markup bool
		doc    bool
	)

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Print the render target reference of a snippet",
		Long: `Assemble a snippet into its execution document and print the data URI
that renders it. --markup prints the hosting page and --document prints the
bare document instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if markup && doc {
				return fmt.Errorf("--markup and --document are mutually exclusive")
			}

			cfg, err := opts.config(true)
			if err != nil {
				return err
			}
			editor, err := editorFor(cmd, args)
			if err != nil {
				return err
			}
			snippet, err := editor.Text()
			if err != nil {
				return err
			}

			text := assemblerFor(cfg).Assemble(snippet)
			out := cmd.OutOrStdout()
			switch {
			case doc:
				fmt.Fprint(out, text)
			case markup:
				fmt.Fprintln(out, bridge.Markup(text))
			default:
				fmt.Fprintln(out, bridge.ToRenderableReference(text))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&markup, "markup", false, "print the hosting page")
	cmd.Flags().BoolVar(&doc, "document", false, "print the execution document")
	return cmd
}
