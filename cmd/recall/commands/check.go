package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *CLI) newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [units...]",
		Short: "Report whether the stored cache entry would be reused",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			props, _ := cmd.Flags().GetStringToString("property")

			opts := runOptions(cmd)
			opts.Properties = props
			// The checker re-observes the stored fingerprint, so check must
			// supply the same command line inputs a run pass would.
			opts.CLIValues = map[string]string{
				"units":            strings.Join(args, " "),
				"fail-on-problems": fmt.Sprintf("%t", opts.FailOnProblems),
			}

			verdict, err := c.app.Check(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if verdict.Hit {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "hit: entry would be reused")
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "miss: %s\n", verdict.Reason)
			}
			return nil
		},
	}
	cmd.Flags().StringToStringP("property", "P", nil, "Set a system property (key=value)")
	return cmd
}
