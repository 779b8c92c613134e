package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (c *CLI) newInvokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoke <operation> [argument JSON]",
		Short: "Invoke a single tool operation and print its result",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			argsJSON := ""
			if len(args) == 2 {
				argsJSON = args[1]
			}
			timeout, _ := cmd.Flags().GetDuration("timeout")

			value, err := c.app.Invoke(cmd.Context(), args[0], argsJSON, timeout)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
	cmd.Flags().DurationP("timeout", "t", 30*time.Second, "Per-invocation timeout (0 disables it)")
	return cmd
}
