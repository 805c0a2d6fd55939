package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	configx "github.com/tanpawarit/trip-dining/pkg/config"
	_ "github.com/tanpawarit/trip-dining/pkg/logger/autoload"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "trip-dining",
	Short: "Pick distinct top-rated restaurants for every stop of a trip",
	Long: `trip-dining recommends the best-rated restaurant near each place on a
travel plan and never recommends the same or a neighbouring venue twice
within one trip.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configx.SetEnvFile(envFile)
		return initLogger(cmd.Name() == serveCmd.Name())
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "path to .env file (default ./.env when present)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(distanceCmd)
	rootCmd.AddCommand(forgetCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
