package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/rm-hull/fleet-fuel-api/cmd"
)

func main() {
	var err error
	var dbPath string
	var port int
	var debug bool
	var csvPath string

	rootCmd := &cobra.Command{
		Use:   "fleet-fuel-api",
		Short: "Fleet fuel consumption API",
		Long:  `Syncs vehicles and fuel charges from the fleet data service and serves validated fuel consumption per vehicle.`,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "data/fleet_fuel.db", "Path to fleet fuel SQLite database")

	apiServerCmd := &cobra.Command{
		Use:   "api-server [--db <path>] [--port <port>] [--debug]",
		Short: "Start HTTP API server",
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmd.ApiServer(dbPath, port, debug)
		},
	}
	apiServerCmd.Flags().IntVar(&port, "port", 8080, "Port to run HTTP server on")
	apiServerCmd.Flags().BoolVar(&debug, "debug", false, "Enable debugging (pprof) - WARNING: do not enable in production")

	importCmd := &cobra.Command{
		Use:   "import [--db <path>] [--csv <file>]",
		Short: "Import vehicles and fuel charges",
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmd.Import(dbPath, csvPath)
		},
	}
	importCmd.Flags().StringVar(&csvPath, "csv", "", "Import fuel charges from a CSV export instead of the data service")

	rootCmd.AddCommand(apiServerCmd, importCmd)
	if err = rootCmd.Execute(); err != nil {
		log.Fatalf("failed: %v", err)
	}
}
