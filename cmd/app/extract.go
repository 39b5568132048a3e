package main

import (
	cedulaService "CedulaOCR/internal/api/cedula/service"
	"CedulaOCR/internal/config"
	"CedulaOCR/pkg/log"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:       "extract front|back <image>",
	Short:     "Extract the fields of one image and print them as JSON",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"front", "back"},
	RunE: func(cmd *cobra.Command, args []string) error {
		side, path := args[0], args[1]
		if side != "front" && side != "back" {
			return fmt.Errorf("unknown side %q, expected front or back", side)
		}

		env, err := loadEnv()
		if err != nil {
			return err
		}

		image, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		logger := log.NewLogger()

		recognizer, err := config.NewRecognizer(cmd.Context(), env)
		if err != nil {
			return err
		}

		var svc cedulaService.ICedulaService
		cfg := cedulaService.Config{
			Confidence:          env.DetectorConfidence,
			StrictLabels:        env.StrictLabels,
			Language:            env.OCRLanguage,
			EnsembleConcurrency: env.EnsembleConcurrency,
		}
		if side == "front" {
			det := config.LoadDetector(cmd.Context(), env, logger)
			if det != nil {
				defer det.Close()
			}
			svc = cedulaService.NewCedulaService(logger, det, recognizer, cfg)
		} else {
			svc = cedulaService.NewCedulaService(logger, nil, recognizer, cfg)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), env.RequestTimeout)
		defer cancel()

		var result interface{}
		if side == "front" {
			result, err = svc.ProcessFront(ctx, image)
		} else {
			result, err = svc.ProcessBack(ctx, image)
		}
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return err
	},
}
