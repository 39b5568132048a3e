package handlerUtil

import (
	"CedulaOCR/internal/api/cedula"
	"CedulaOCR/pkg/log"
	"CedulaOCR/pkg/response"
	"CedulaOCR/pkg/utils"
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	fiberUtils "github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// Resolve translates err into the status and body sent to the client. Server
// side failures are logged with a trace ID that is echoed in the body.
func (h *ErrorHandler) Resolve(requestID string, err error, path string, operation string) (int, cedula.ErrorResponse) {
	fields := log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}

	// Upload errors
	switch {
	case errors.Is(err, utils.ErrNoFile):
		err = cedula.ErrMissingImage
	case errors.Is(err, utils.ErrFileTooLarge), errors.Is(err, fiber.ErrRequestEntityTooLarge):
		err = cedula.ErrImageTooLarge
	case errors.Is(err, utils.ErrNotAnImage), errors.Is(err, utils.ErrInvalidBase64):
		err = response.Wrap(cedula.ErrInvalidImage, err)
	case errors.Is(err, context.DeadlineExceeded):
		h.logger.WithFields(fields).Warn("Request timed out")
		return fiber.StatusRequestTimeout, cedula.ErrorResponse{
			Error: fiberUtils.StatusMessage(fiber.StatusRequestTimeout),
			Code:  "REQUEST_TIMEOUT",
		}
	case errors.Is(err, context.Canceled):
		h.logger.WithFields(fields).Warn("Request cancelled")
		return fiber.StatusServiceUnavailable, cedula.ErrorResponse{
			Error: "Request was cancelled",
			Code:  "REQUEST_CANCELLED",
		}
	}

	var respErr *response.Error
	if errors.As(err, &respErr) && respErr.Code < fiber.StatusInternalServerError {
		fields["code"] = respErr.Code
		h.logger.WithFields(fields).Warn("Operation failed with error response")
		return respErr.Code, cedula.ErrorResponse{
			Error: respErr.Message(),
			Code:  respErr.Key,
		}
	}

	traceID := log.ErrorWithTraceID(h.logger, fields, "Unexpected error")
	return fiber.StatusInternalServerError, cedula.ErrorResponse{
		Error:   "An unexpected error occurred",
		Code:    "INTERNAL_ERROR",
		TraceID: traceID,
	}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	status, body := h.Resolve(requestID, err, path, operation)
	return c.Status(status).JSON(body)
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(cedula.ErrorResponse{
		Error: "Validation failed: " + err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(cedula.ErrorResponse{
		Error: fiberUtils.StatusMessage(fiber.StatusRequestTimeout),
		Code:  "REQUEST_TIMEOUT",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
