package handlerUtil

import (
	"CedulaOCR/internal/api/cedula"
	"CedulaOCR/pkg/utils"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		level  logrus.Level
		traced bool
	}{
		{"missing upload", utils.ErrNoFile, fiber.StatusBadRequest, "MISSING_IMAGE", logrus.WarnLevel, false},
		{"deadline", fmt.Errorf("recognize: %w", context.DeadlineExceeded), fiber.StatusRequestTimeout, "REQUEST_TIMEOUT", logrus.WarnLevel, false},
		{"client gone", fmt.Errorf("ensemble: %w", context.Canceled), fiber.StatusServiceUnavailable, "REQUEST_CANCELLED", logrus.WarnLevel, false},
		{"unexpected", errors.New("boom"), fiber.StatusInternalServerError, "INTERNAL_ERROR", logrus.ErrorLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, hook := test.NewNullLogger()

			status, body := New(logger).Resolve("req-1", tt.err, "/api/process-front", "process_front")

			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Code)
			require.NotNil(t, hook.LastEntry())
			assert.Equal(t, tt.level, hook.LastEntry().Level)
			if tt.traced {
				assert.Equal(t, "req-1", body.TraceID)
			} else {
				assert.Empty(t, body.TraceID)
			}
		})
	}
}

func TestResolveKeepsClientErrorMessage(t *testing.T) {
	logger, _ := test.NewNullLogger()

	status, body := New(logger).Resolve("req-1", cedula.ErrInvalidImage, "/api/process-back", "process_back")

	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "INVALID_IMAGE", body.Code)
	assert.Equal(t, "image could not be decoded", body.Error)
}
