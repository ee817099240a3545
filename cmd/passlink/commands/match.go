package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"passlink/internal/services/matcher"
)

func matchCmd() *cobra.Command {
	var (
		bestOnly    bool
		schemeMatch bool
	)
	cmd := &cobra.Command{
		Use:   "match <url> [submit-url]",
		Short: "Show which credentials would be offered for a URL, best first",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			target, submit := args[0], ""
			if len(args) == 2 {
				submit = args[1]
			}

			settings := wire.Config.MatchSettings()
			if cmd.Flags().Changed("best-only") {
				settings.BestMatchOnly = bestOnly
			}
			if cmd.Flags().Changed("scheme-match") {
				settings.RequireSchemeMatch = schemeMatch
			}
			m := matcher.New(settings,
				matcher.WithLookupScheme(wire.Config.Matching.LookupScheme),
				matcher.WithLogger(wire.Log),
			)

			cs, err := m.Search(db, target, submit)
			if err != nil {
				return err
			}
			if len(cs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no matching credentials")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SCORE\tTITLE\tUSERNAME\tURL\tUUID")
			for _, c := range cs {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
					c.Score, c.Entry.Title, c.Entry.Username, c.MatchedURL, c.Entry.UUIDHex())
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&bestOnly, "best-only", false, "keep only the top-scoring credentials")
	cmd.Flags().BoolVar(&schemeMatch, "scheme-match", false, "require the URL scheme to match")
	return cmd
}
