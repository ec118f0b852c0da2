package main

import (
	"github.com/spf13/cobra"

	"github.com/yigit/unirecords/internal/bootstrap"
	"github.com/yigit/unirecords/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return err
	}

	srv, err := server.NewServer(cfg, lgr)
	if err != nil {
		return err
	}

	// blocks until shutdown
	if err := srv.Run(); err != nil {
		return err
	}
	lgr.Info().Msg("Application finished gracefully.")
	return nil
}
