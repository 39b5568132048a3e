package main

import (
	"CedulaOCR/internal/api/cedula"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var healthURL string

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Query the health endpoint of a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		base := healthURL
		if base == "" {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			base = fmt.Sprintf("http://localhost:%d", env.AppPort)
		}

		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, strings.TrimRight(base, "/")+"/api/health", nil)
		if err != nil {
			return err
		}

		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("health check returned %s", resp.Status)
		}

		var health cedula.HealthResponse
		if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "status:               %s\n", health.Status)
		fmt.Fprintf(out, "detector loaded:      %t\n", health.DetectorLoaded)
		fmt.Fprintf(out, "recognizer available: %t (%s)\n", health.RecognizerAvailable, health.Recognizer)

		if health.Status != "ok" {
			return fmt.Errorf("server reported status %q", health.Status)
		}
		return nil
	},
}

func init() {
	healthCmd.Flags().StringVar(&healthURL, "url", "", "server base URL (default: http://localhost:$APP_PORT)")
}
