package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/verse-service/internal/adapters/tui"
	"github.com/jsamuelsen/verse-service/internal/app"
)

func newViewCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show verses in the terminal",
		Long: `view opens a full-screen verse viewer. Press n or space for another
verse, s to copy the current one to the clipboard and q to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The screen belongs to the viewer; only the log file, if any, gets logs.
			rt, err := openRuntime(cmd.Context(), opts, io.Discard)
			if err != nil {
				return err
			}
			defer rt.Close()

			return tui.Run(rt.context(cmd.Context()), app.NewViewer(rt.repo))
		},
	}
}
