package main

import (
	"CedulaOCR/internal/config"
	"CedulaOCR/pkg/log"
	"context"
	"time"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server.

Endpoints:
  POST /api/process-front     front side fields
  POST /api/process-back      reverse side fields
  GET  /api/health            detector and recognizer status
  GET  /api/process-*/ws      streaming variants, one binary image per message`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := loadEnv()
		if err != nil {
			return err
		}

		logger := log.NewLogger()

		recognizer, err := config.NewRecognizer(ctx, env)
		if err != nil {
			logger.Errorf("Failed to create text recognizer: %v", err)
			return err
		}
		if !recognizer.Available() {
			logger.Warnf("Text recognizer %s is not available", recognizer.Name())
		}

		server, err := config.NewServer(
			config.WithFiber(config.NewFiber(env)),
			config.WithEnv(env),
			config.WithLogger(logger),
			config.WithValidator(config.NewValidator()),
			config.WithRedisServer(config.NewRedisServer(env, logger)),
			config.WithDetector(config.LoadDetector(ctx, env, logger)),
			config.WithRecognizer(recognizer),
		)
		if err != nil {
			return err
		}

		server.RegisterHandler()
		server.App()

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Run()
		}()

		logger.Infof("Server listening on port %d", env.AppPort)

		select {
		case err := <-errCh:
			logger.Errorf("Error starting server: %v", err)
			return err
		case <-ctx.Done():
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	},
}
