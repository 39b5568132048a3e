package config

import (
	"CedulaOCR/pkg/log"
	"CedulaOCR/pkg/ocr"
	"context"
	"encoding/json"
	"image"
	"io"
	"io/fs"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecognizer struct{}

func (stubRecognizer) Name() string    { return "stub" }
func (stubRecognizer) Available() bool { return true }
func (stubRecognizer) Recognize(ctx context.Context, img image.Image, cfg ocr.Config) (string, error) {
	return "", nil
}

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	env, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, 5001, env.AppPort)
	assert.InDelta(t, 0.25, env.DetectorConfidence, 1e-9)
	assert.Equal(t, uint(3), env.DetectorLoadAttempts)
	assert.Equal(t, 10*time.Second, env.DetectorTimeout)
	assert.Equal(t, "tesseract", env.OCREngine)
	assert.Equal(t, "spa", env.OCRLanguage)
	assert.Equal(t, 4, env.EnsembleConcurrency)
	assert.Equal(t, 60*time.Second, env.RequestTimeout)
	assert.Equal(t, int64(10*1024*1024), env.MaxUploadSize)
	assert.False(t, env.StrictLabels)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("STRICT_LABELS", "true")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("DETECTOR_URL", "ws://localhost:8000/ws")

	env, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, env.AppPort)
	assert.True(t, env.StrictLabels)
	assert.Equal(t, 5*time.Second, env.RequestTimeout)
	assert.Equal(t, "ws://localhost:8000/ws", env.DetectorURL)
}

func TestLoadEnvReadsEveryFile(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "")
	require.NoError(t, os.Unsetenv("APP_PORT"))
	t.Setenv("OCR_LANGUAGE", "")
	require.NoError(t, os.Unsetenv("OCR_LANGUAGE"))

	dir := t.TempDir()
	first := filepath.Join(dir, "first.env")
	second := filepath.Join(dir, "second.env")
	require.NoError(t, os.WriteFile(first, []byte("APP_PORT=7070\n"), 0o600))
	require.NoError(t, os.WriteFile(second, []byte("OCR_LANGUAGE=eng\n"), 0o600))

	env, err := LoadEnv(first, second)
	require.NoError(t, err)

	assert.Equal(t, 7070, env.AppPort)
	assert.Equal(t, "eng", env.OCRLanguage)
}

func TestLoadEnvFailsOnMissingFile(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	dir := t.TempDir()
	good := filepath.Join(dir, "good.env")
	require.NoError(t, os.WriteFile(good, []byte("APP_PORT=7070\n"), 0o600))

	_, err := LoadEnv(filepath.Join(dir, "missing.env"), good)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "missing.env")
}

func TestLoadEnvRejectsInvalidValues(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	t.Setenv("OCR_ENGINE", "easyocr")
	_, err := LoadEnv()
	assert.Error(t, err)

	t.Setenv("OCR_ENGINE", "gemini")
	_, err = LoadEnv()
	assert.Error(t, err, "gemini needs an API key")

	t.Setenv("OCR_ENGINE", "tesseract")
	t.Setenv("DETECTOR_CONFIDENCE", "1.5")
	_, err = LoadEnv()
	assert.Error(t, err)
}

func TestServerMountsRoutes(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	env, err := LoadEnv()
	require.NoError(t, err)

	server, err := NewServer(
		WithFiber(NewFiber(env)),
		WithEnv(env),
		WithLogger(log.NewDiscardLogger()),
		WithRecognizer(stubRecognizer{}),
		WithDetector(LoadDetector(context.Background(), env, log.NewDiscardLogger())),
	)
	require.NoError(t, err)
	server.RegisterHandler()
	app := server.App()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, false, body["detectorLoaded"])
	assert.Equal(t, "stub", body["recognizer"])

	_ = server.Shutdown(context.Background())
}

func TestNewServerRequiresRecognizer(t *testing.T) {
	_, err := NewServer(WithRecognizer(nil))
	assert.Error(t, err)

	_, err = NewServer(WithFiber(fiber.New()), WithLogger(log.NewDiscardLogger()), WithEnv(&Env{}))
	assert.Error(t, err)
}

func TestNewRecognizer(t *testing.T) {
	_, err := NewRecognizer(context.Background(), &Env{OCREngine: "easyocr"})
	assert.Error(t, err)

	rec, err := NewRecognizer(context.Background(), &Env{OCREngine: "tesseract"})
	require.NoError(t, err)
	assert.Equal(t, "tesseract", rec.Name())
}
