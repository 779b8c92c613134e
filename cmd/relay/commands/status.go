package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the configured servers and their operation count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := c.app.StatusReport(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "config: %s\n", status.ConfigPath)
			_, _ = fmt.Fprintf(out, "servers: %d\n", status.Servers)
			_, _ = fmt.Fprintf(out, "operations: %d\n", status.Operations)
			return nil
		},
	}
}
