package main

import (
	"CedulaOCR/internal/config"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var envFiles []string

var rootCmd = &cobra.Command{
	Use:   "cedula",
	Short: "Field extraction for Ecuadorian identity cards",
	Long: `cedula reads the front and reverse side of an Ecuadorian cédula and
returns the printed fields as JSON.

Without a sub command the HTTP server is started.`,
	SilenceUsage: true,
	RunE:         serveCmd.RunE,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(
		&envFiles, "env", nil, "dotenv files to load (default: .env)",
	)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(detectorCmd)
	rootCmd.AddCommand(healthCmd)
}

func loadEnv() (*config.Env, error) {
	return config.LoadEnv(envFiles...)
}
