package cedulaHandler

import (
	cedulaService "CedulaOCR/internal/api/cedula/service"
	"CedulaOCR/internal/middleware"
	"CedulaOCR/pkg/utils"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

const pathLocal = "path"

type CedulaHandler struct {
	log            *logrus.Logger
	validator      *validator.Validate
	middleware     middleware.Middleware
	cedulaService  cedulaService.ICedulaService
	utils          utils.IUtils
	requestTimeout time.Duration
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	cs cedulaService.ICedulaService,
	utils utils.IUtils,
	requestTimeout time.Duration,
) *CedulaHandler {
	return &CedulaHandler{
		cedulaService:  cs,
		log:            log,
		validator:      validator,
		middleware:     middleware,
		utils:          utils,
		requestTimeout: requestTimeout,
	}
}

func (h *CedulaHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals(pathLocal, c.Path())
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	srv.Get("/health", h.Health)

	srv.Post("/process-front", h.middleware.NewRateLimiter, h.ProcessFront)
	srv.Use("/process-front/ws", wsMiddleware)
	srv.Get("/process-front/ws", websocket.New(h.handleFrontWebSocket))

	srv.Post("/process-back", h.middleware.NewRateLimiter, h.ProcessBack)
	srv.Use("/process-back/ws", wsMiddleware)
	srv.Get("/process-back/ws", websocket.New(h.handleBackWebSocket))
}
