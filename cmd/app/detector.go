package main

import (
	"CedulaOCR/pkg/detector"
	"CedulaOCR/pkg/log"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var detectorCmd = &cobra.Command{
	Use:   "detector",
	Short: "Print the class table of the configured region detector",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv()
		if err != nil {
			return err
		}
		if env.DetectorURL == "" {
			return errors.New("DETECTOR_URL is not set")
		}

		det, err := detector.Load(cmd.Context(), detector.Options{
			URL:          env.DetectorURL,
			Timeout:      env.DetectorTimeout,
			LoadAttempts: env.DetectorLoadAttempts,
			RetryDelay:   time.Second,
		}, log.NewDiscardLogger())
		if err != nil {
			return err
		}
		defer det.Close()

		names, err := det.Classes(cmd.Context())
		if err != nil {
			return err
		}

		idx := make([]int, 0, len(names))
		for i := range names {
			idx = append(idx, i)
		}
		sort.Ints(idx)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Classes (%d):\n", len(names))
		for _, i := range idx {
			fmt.Fprintf(out, "  %d: %s\n", i, names[i])
		}
		return nil
	},
}
