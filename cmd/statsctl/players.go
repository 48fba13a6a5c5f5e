package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	app "github.com/okian/courtstats/internal/app"
	"github.com/okian/courtstats/internal/config"
)

func newPlayersCmd(f *rootFlags) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "players",
		Short: "List players ordered by id",
		Args:  cobra.NoArgs,
		RunE: withService(f, true, func(cmd *cobra.Command, _ *config.Config, svc *app.Service, _ []string) error {
			players, err := svc.Players(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, players)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tNAME\tTEAM")
			for _, p := range players {
				_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ID, p.Name, p.TeamName)
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum players to list (0 lists all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
