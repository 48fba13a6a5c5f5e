package main

import (
	"fmt"

	"github.com/spf13/cobra"

	app "github.com/okian/courtstats/internal/app"
	"github.com/okian/courtstats/internal/config"
)

func newLoadCmd(f *rootFlags) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Import teams.json, games.json and players.json into the store",
		Args:  cobra.NoArgs,
		RunE: withService(f, false, func(cmd *cobra.Command, cfg *config.Config, svc *app.Service, _ []string) error {
			if dir == "" {
				dir = cfg.DataDir
			}
			rep, err := svc.Reload(cmd.Context(), dir)
			if err != nil {
				return fmt.Errorf("load %s: %w", dir, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"run %s: %d teams, %d games, %d players, %d events (%d skipped) in %s\n",
				rep.RunID, rep.Teams, rep.Games, rep.Players, rep.Events, rep.SkippedEvents, rep.Took)
			if err != nil {
				return err
			}
			if cfg.StorageDriver == config.DriverMemory {
				_, err = fmt.Fprintln(cmd.ErrOrStderr(),
					"memory store: data was validated but not persisted; use --driver sqlite or postgres to keep it")
			}
			return err
		}),
	}
	cmd.Flags().StringVar(&dir, "dir", "", "data directory (defaults to data_dir from config)")
	return cmd
}
