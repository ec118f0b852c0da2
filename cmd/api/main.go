package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yigit/unirecords/internal/bootstrap"
	"github.com/yigit/unirecords/internal/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "unirecords",
	Short:         "University records API",
	Long:          `CRUD API over students, departments, faculty, courses and enrollments with per-request SQL traces.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", bootstrap.DefaultConfigPath, "path to the YAML configuration file")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
