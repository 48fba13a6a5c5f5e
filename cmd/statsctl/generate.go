package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/courtstats/internal/ingest"
)

func newGenerateCmd() *cobra.Command {
	cfg := ingest.DefaultSampleConfig()
	var dir string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a deterministic sample data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ingest.WriteSample(dir, cfg); err != nil {
				return fmt.Errorf("generate %s: %w", dir, err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %d teams, %d players, %d games to %s\n",
				cfg.Teams, cfg.Teams*cfg.PlayersPerTeam, cfg.Games, dir)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&dir, "dir", "data", "output directory")
	f.IntVar(&cfg.Teams, "teams", cfg.Teams, "number of teams")
	f.IntVar(&cfg.PlayersPerTeam, "players-per-team", cfg.PlayersPerTeam, "players on each team")
	f.IntVar(&cfg.Games, "games", cfg.Games, "number of games")
	f.IntVar(&cfg.EventsPerPlayer, "events-per-player", cfg.EventsPerPlayer, "events generated for each player")
	f.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	return cmd
}
