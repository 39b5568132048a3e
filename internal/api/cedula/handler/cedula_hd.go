package cedulaHandler

import (
	"CedulaOCR/internal/api/cedula"
	contextPkg "CedulaOCR/pkg/context"
	"CedulaOCR/pkg/handlerUtil"
	"CedulaOCR/pkg/log"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/net/context"
)

type extractFunc func(ctx context.Context, image []byte) (interface{}, error)

func (h *CedulaHandler) frontExtractor(ctx context.Context, image []byte) (interface{}, error) {
	return h.cedulaService.ProcessFront(ctx, image)
}

func (h *CedulaHandler) backExtractor(ctx context.Context, image []byte) (interface{}, error) {
	return h.cedulaService.ProcessBack(ctx, image)
}

func (h *CedulaHandler) ProcessFront(ctx *fiber.Ctx) error {
	return h.process(ctx, "process_front", h.frontExtractor)
}

func (h *CedulaHandler) ProcessBack(ctx *fiber.Ctx) error {
	return h.process(ctx, "process_back", h.backExtractor)
}

func (h *CedulaHandler) process(ctx *fiber.Ctx, operation string, extract extractFunc) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := contextPkg.FromFiberCtx(ctx, h.requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing cédula extraction request")

	image, err := h.readImage(ctx, requestID)
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_image")
	}

	result, err := extract(c, image)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), operation)
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
		}).Info("Cédula extraction successful")
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
	}
}

// readImage accepts a multipart "image" file or a JSON body with a base64
// encoded image.
func (h *CedulaHandler) readImage(ctx *fiber.Ctx, requestID string) ([]byte, error) {
	contentType := string(ctx.Request().Header.ContentType())

	if strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		file, err := ctx.FormFile("image")
		if err != nil {
			return nil, cedula.ErrMissingImage
		}

		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"file_name":  file.Filename,
			"file_size":  file.Size,
		}).Debug("Processing file upload")

		return h.utils.ReadImageFile(file)
	}

	if len(ctx.Body()) == 0 {
		return nil, cedula.ErrMissingImage
	}

	var req cedula.ImageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return nil, cedula.ErrMissingImage
	}
	if strings.TrimSpace(req.ImageBase64) == "" {
		return nil, cedula.ErrMissingImage
	}
	if err := h.validator.Struct(req); err != nil {
		return nil, err
	}

	return h.utils.DecodeBase64Image(req.ImageBase64)
}

func (h *CedulaHandler) Health(ctx *fiber.Ctx) error {
	errHandler := handlerUtil.New(h.log)
	return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.cedulaService.Health(ctx.UserContext()))
}

func (h *CedulaHandler) handleFrontWebSocket(c *websocket.Conn) {
	h.serveWebSocket(c, "process_front_ws", h.frontExtractor)
}

func (h *CedulaHandler) handleBackWebSocket(c *websocket.Conn) {
	h.serveWebSocket(c, "process_back_ws", h.backExtractor)
}

// serveWebSocket treats every binary message as one image and answers with
// the same JSON the POST endpoint returns.
func (h *CedulaHandler) serveWebSocket(c *websocket.Conn, operation string, extract extractFunc) {
	requestID, _ := c.Locals(contextPkg.RequestIDHeader).(string)
	path, _ := c.Locals(pathLocal).(string)
	entry := h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       path,
		"operation":  operation,
	})
	entry.Info("WebSocket client connected")
	defer entry.Info("WebSocket client disconnected")

	errHandler := handlerUtil.New(h.log)

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			entry.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	maxReadTimeout := 60 * time.Second

	for {
		if err := c.SetReadDeadline(time.Now().Add(maxReadTimeout)); err != nil {
			entry.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				entry.Errorf("WebSocket error: %v", err)
			}
			break
		}

		if messageType != websocket.BinaryMessage {
			entry.Warnf("Received unexpected message type: %d", messageType)
			continue
		}

		var reply interface{}
		result, err := h.extractFrame(requestID, message, extract)
		if err != nil {
			_, body := errHandler.Resolve(requestID, err, path, operation)
			reply = body
		} else {
			reply = result
		}

		if err := c.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
			entry.Errorf("Error setting write deadline: %v", err)
			break
		}

		if err := c.WriteJSON(reply); err != nil {
			entry.Errorf("Error writing JSON response: %v", err)
			break
		}
	}
}

func (h *CedulaHandler) extractFrame(requestID string, frame []byte, extract extractFunc) (interface{}, error) {
	ctx := contextPkg.WithRequestID(context.Background(), requestID)
	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
	}
	return extract(ctx, frame)
}
