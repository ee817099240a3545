package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"passlink/internal/urlnorm"
)

func checkURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-url <url>...",
		Short: "Report whether URLs are usable for matching, and their base domain",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VALID\tBASE DOMAIN\tURL")
			for _, raw := range args {
				base := "-"
				valid := urlnorm.Valid(raw)
				if valid {
					if b := urlnorm.BaseDomain(raw); b != "" {
						base = b
					}
				}
				fmt.Fprintf(tw, "%t\t%s\t%s\n", valid, base, raw)
			}
			return tw.Flush()
		},
	}
}
