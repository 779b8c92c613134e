package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/relay/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start an interactive relay session",
		Long: "Launches the configured tool servers, watches relay.json for changes\n" +
			"and serves console commands (invoke, reload, status, cache) until EOF\n" +
			"or interrupt.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noWatch, _ := cmd.Flags().GetBool("no-watch")

			return c.app.Run(cmd.Context(), app.RunOptions{
				NoWatch: noWatch,
			})
		},
	}
	cmd.Flags().Bool("no-watch", false, "Disable config watching; reload manually via the console")
	return cmd
}
