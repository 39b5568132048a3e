package cedula

import (
	"CedulaOCR/pkg/response"
	"errors"
	"net/http"
)

var (
	ErrMissingImage        = response.NewError(http.StatusBadRequest, "MISSING_IMAGE", "no image found in request")
	ErrInvalidImage        = response.NewError(http.StatusUnprocessableEntity, "INVALID_IMAGE", "image could not be decoded")
	ErrImageTooLarge       = response.NewError(http.StatusRequestEntityTooLarge, "IMAGE_TOO_LARGE", "image exceeds the upload limit")
	ErrInternalServerError = response.NewError(http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
)

// ErrDuplicateLabel fails a detection-guided attempt in strict mode.
var ErrDuplicateLabel = errors.New("detector returned the same label more than once")
