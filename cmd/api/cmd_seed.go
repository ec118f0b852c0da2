package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yigit/unirecords/internal/bootstrap"
	"github.com/yigit/unirecords/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create demo records that do not exist yet",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return err
	}

	database, err := bootstrap.SetupDatabase(cfg, lgr)
	if err != nil {
		return err
	}
	defer database.Close()

	deps := bootstrap.BuildDependencies(cfg, database, lgr)
	result, err := seed.CreateDefaultData(cmd.Context(), deps.Tracer, deps.Services, lgr)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "seeded: %d created, %d already present\n", result.Created, result.Existing)
	return nil
}
