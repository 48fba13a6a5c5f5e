package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	app "github.com/okian/courtstats/internal/app"
	"github.com/okian/courtstats/internal/config"
)

func newSummaryCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <playerID>",
		Short: "Print a player's summary with league ranks as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: withService(f, true, func(cmd *cobra.Command, _ *config.Config, svc *app.Service, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid player id %q: %w", args[0], err)
			}
			summary, err := svc.PlayerSummary(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd, summary)
		}),
	}
}
