package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [units...]",
		Short: "Run a cache pass and report where the model came from",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			props, _ := cmd.Flags().GetStringToString("property")

			opts := runOptions(cmd)
			opts.Properties = props
			// Requested units and the policy flag are build inputs: a pass
			// made with different values must not reuse this entry.
			opts.CLIValues = map[string]string{
				"units":            strings.Join(args, " "),
				"fail-on-problems": fmt.Sprintf("%t", opts.FailOnProblems),
			}

			report, units, err := c.app.Run(cmd.Context(), opts)
			if report != nil {
				out := cmd.OutOrStdout()
				switch {
				case report.MissReason == "":
					_, _ = fmt.Fprintf(out, "reusing entry %s\n", report.EntryID)
				default:
					_, _ = fmt.Fprintf(out, "configured from scratch (%s)\n", report.MissReason)
				}
				for _, p := range report.Problems {
					_, _ = fmt.Fprintf(out, "%s: %s\n", p.Severity, p.Message)
				}
				_, _ = fmt.Fprintf(out, "%d work units ready\n", len(units))
			}
			return err
		},
	}
	cmd.Flags().StringToStringP("property", "P", nil, "Set a system property (key=value)")
	return cmd
}
