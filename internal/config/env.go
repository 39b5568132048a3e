package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Env struct {
	AppEnv   string `mapstructure:"app_env" validate:"required"`
	AppPort  int    `mapstructure:"app_port" validate:"min=1,max=65535"`
	LogLevel string `mapstructure:"log_level"`

	DetectorURL          string        `mapstructure:"detector_url" validate:"omitempty,url"`
	DetectorConfidence   float64       `mapstructure:"detector_confidence" validate:"gt=0,lte=1"`
	DetectorLoadAttempts uint          `mapstructure:"detector_load_attempts" validate:"min=1"`
	DetectorTimeout      time.Duration `mapstructure:"detector_timeout" validate:"gt=0"`
	StrictLabels         bool          `mapstructure:"strict_labels"`

	OCREngine       string `mapstructure:"ocr_engine" validate:"oneof=tesseract gemini"`
	OCRLanguage     string `mapstructure:"ocr_language" validate:"required"`
	TessdataPrefix  string `mapstructure:"tessdata_prefix"`
	GeminiAPIKey    string `mapstructure:"gemini_api_key" validate:"required_if=OCREngine gemini"`
	GeminiModelName string `mapstructure:"gemini_model_name"`

	EnsembleConcurrency int           `mapstructure:"ensemble_concurrency" validate:"min=1"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	MaxUploadSize       int64         `mapstructure:"max_upload_size" validate:"gt=0"`

	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" validate:"gt=0"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" validate:"min=1"`

	RedisAddress  string `mapstructure:"redis_address" validate:"omitempty,hostname_port"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" validate:"min=0"`
}

var envDefaults = map[string]interface{}{
	"app_env":                "development",
	"app_port":               5001,
	"log_level":              "debug",
	"detector_url":           "",
	"detector_confidence":    0.25,
	"detector_load_attempts": 3,
	"detector_timeout":       10 * time.Second,
	"strict_labels":          false,
	"ocr_engine":             "tesseract",
	"ocr_language":           "spa",
	"tessdata_prefix":        "",
	"gemini_api_key":         "",
	"gemini_model_name":      "gemini-1.5-flash",
	"ensemble_concurrency":   4,
	"request_timeout":        60 * time.Second,
	"max_upload_size":        10 * 1024 * 1024,
	"rate_limit_rps":         5.0,
	"rate_limit_burst":       10,
	"redis_address":          "",
	"redis_password":         "",
	"redis_db":               0,
}

// LoadEnv reads dotenv files, then the process environment, on top of the
// defaults above. Without files the local .env is read when it exists; files
// named by the caller must all load.
func LoadEnv(files ...string) (*Env, error) {
	if err := loadDotEnv(files); err != nil {
		return nil, err
	}

	v := viper.New()
	for key, value := range envDefaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var env Env
	if err := v.Unmarshal(&env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment: %w", err)
	}

	if err := NewValidator().Struct(env); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	return &env, nil
}

func loadDotEnv(files []string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}

	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", file, err)
		}
	}
	return nil
}
