package config

import (
	"CedulaOCR/pkg/detector"
	"CedulaOCR/pkg/ocr"
	"CedulaOCR/pkg/ocr/gemini"
	"CedulaOCR/pkg/ocr/tesseract"
	"CedulaOCR/pkg/redis"
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// NewRecognizer builds the text recognition engine selected by OCR_ENGINE.
func NewRecognizer(ctx context.Context, env *Env) (ocr.ITextRecognizer, error) {
	switch env.OCREngine {
	case "gemini":
		recognizer, err := gemini.New(ctx, env.GeminiAPIKey, env.GeminiModelName)
		if err != nil {
			return nil, err
		}
		return recognizer, nil
	case "tesseract", "":
		return tesseract.New(env.TessdataPrefix), nil
	default:
		return nil, fmt.Errorf("unknown OCR engine %q", env.OCREngine)
	}
}

// LoadDetector returns nil when no detector is configured or it could not be
// reached. The service then runs on the heuristic path for its whole life.
func LoadDetector(ctx context.Context, env *Env, log *logrus.Logger) detector.IRegionDetector {
	if env.DetectorURL == "" {
		log.Warn("DETECTOR_URL is not set, front extraction will use heuristics only")
		return nil
	}

	det, err := detector.Load(ctx, detector.Options{
		URL:          env.DetectorURL,
		Timeout:      env.DetectorTimeout,
		LoadAttempts: env.DetectorLoadAttempts,
		RetryDelay:   time.Second,
	}, log)
	if err != nil {
		log.WithFields(logrus.Fields{
			"url":   env.DetectorURL,
			"error": err.Error(),
		}).Error("Failed to load region detector, continuing without it")
		return nil
	}

	log.WithField("url", env.DetectorURL).Info("Region detector loaded")
	return det
}

// NewRedisServer connects the shared rate limit store when REDIS_ADDRESS is
// set.
func NewRedisServer(env *Env, log *logrus.Logger) redis.IRedis {
	if env.RedisAddress == "" {
		return nil
	}

	client, err := redis.New(redis.Options{
		Address:  env.RedisAddress,
		Password: env.RedisPassword,
		DB:       env.RedisDB,
	}, log)
	if err != nil {
		log.Warn("Redis unavailable, rate limiting stays per process")
		return nil
	}
	return client
}
