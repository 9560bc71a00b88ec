package main

import (
	"fmt"
	"net"

	"github.com/aretw0/abacus/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the session API over HTTP. Every route is described by the OpenAPI
contract served at /openapi.yaml; Prometheus metrics are exposed at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.HTTP.Port, _ = cmd.Flags().GetString("port")
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		logger, err := cli.NewLogger(cfg, debugFlag(cmd))
		if err != nil {
			return err
		}

		handler, closeStore, err := cli.NewHTTPHandler(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		ln, err := net.Listen("tcp", ":"+cfg.HTTP.Port)
		if err != nil {
			return fmt.Errorf("failed to listen on port %s: %w", cfg.HTTP.Port, err)
		}
		return cli.Serve(cmd.Context(), ln, handler, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config, 8080)")
}
