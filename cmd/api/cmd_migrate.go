package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	appMigrations "github.com/yigit/unirecords/internal/app/migrations"
	"github.com/yigit/unirecords/internal/bootstrap"
	"github.com/yigit/unirecords/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List applied migration versions",
	Args:  cobra.NoArgs,
	RunE:  runMigrateStatus,
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return err
	}

	database, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	return bootstrap.RunMigrations(cmd.Context(), cfg, database, lgr)
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return err
	}

	database, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	versions, err := appMigrations.NewMigrator(database, lgr).AppliedVersions(cmd.Context())
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "applied: %s\n", strings.Join(versions, ", "))
	return nil
}
