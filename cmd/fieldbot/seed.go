package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"fieldbot/internal/store"
)

func seedCmd() *cobra.Command {
	var seedFile string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample data into an empty database",
		Long:  "Loads agents, orders, and payouts into the database. Skipped when agents already exist.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			st, err := store.Open(cfg.Database.Path, logger)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			path := seedFile
			if path == "" {
				path = cfg.Database.SeedFile
			}
			seed, err := store.LoadSeedFile(path)
			if err != nil {
				return fmt.Errorf("load seed data: %w", err)
			}

			ctx := context.Background()
			before, err := st.CountAgents(ctx)
			if err != nil {
				return err
			}
			if before > 0 {
				logger.Info("database already has agents, nothing to do", "agents", before)
				return nil
			}
			if err := st.Seed(ctx, seed); err != nil {
				return fmt.Errorf("seed database: %w", err)
			}
			logger.Info("database seeded",
				"agents", len(seed.Agents),
				"orders", len(seed.Orders),
				"payouts", len(seed.Payouts),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&seedFile, "file", "", "YAML seed file (default: built-in sample dataset)")
	return cmd
}
