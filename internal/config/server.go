package config

import (
	cedulaHandler "CedulaOCR/internal/api/cedula/handler"
	cedulaService "CedulaOCR/internal/api/cedula/service"
	"CedulaOCR/internal/middleware"
	"CedulaOCR/pkg/detector"
	"CedulaOCR/pkg/ocr"
	"CedulaOCR/pkg/redis"
	"CedulaOCR/pkg/utils"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	env         *Env
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	handlers    []handler
	redisServer redis.IRedis
	detector    detector.IRegionDetector
	recognizer  ocr.ITextRecognizer
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.env == nil {
		return nil, fmt.Errorf("environment is required")
	}
	if server.recognizer == nil {
		return nil, fmt.Errorf("text recognizer is required")
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}
	if server.utils == nil {
		server.utils = utils.New(server.env.MaxUploadSize)
	}
	if server.middleware == nil {
		server.middleware = middleware.New(server.log, middleware.Options{
			RateLimit: server.env.RateLimitRPS,
			Burst:     server.env.RateLimitBurst,
			Store:     server.redisServer,
		})
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithEnv(env *Env) ServerOption {
	return func(s *Server) error {
		s.env = env
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

// WithDetector accepts a nil detector.
func WithDetector(det detector.IRegionDetector) ServerOption {
	return func(s *Server) error {
		s.detector = det
		return nil
	}
}

func WithRecognizer(recognizer ocr.ITextRecognizer) ServerOption {
	return func(s *Server) error {
		if recognizer == nil {
			return errors.New("recognizer must not be nil")
		}
		s.recognizer = recognizer
		return nil
	}
}

func WithUtils(u utils.IUtils) ServerOption {
	return func(s *Server) error {
		s.utils = u
		return nil
	}
}

func (s *Server) RegisterHandler() {
	cedulaServices := cedulaService.NewCedulaService(s.log, s.detector, s.recognizer, cedulaService.Config{
		Confidence:          s.env.DetectorConfidence,
		StrictLabels:        s.env.StrictLabels,
		Language:            s.env.OCRLanguage,
		EnsembleConcurrency: s.env.EnsembleConcurrency,
	})
	cedulaHandlers := cedulaHandler.New(s.log, s.validator, s.middleware, cedulaServices, s.utils, s.env.RequestTimeout)

	s.handlers = append(s.handlers, cedulaHandlers)
}

// App mounts the middleware and handlers and returns the engine without
// listening.
func (s *Server) App() *fiber.App {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())
	s.setupHealthCheck()

	router := s.engine.Group("/api")
	for _, h := range s.handlers {
		h.Start(router)
	}

	return s.engine
}

func (s *Server) Run() error {
	return s.engine.Listen(fmt.Sprintf(":%d", s.env.AppPort))
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.engine.ShutdownWithContext(ctx)

	if s.detector != nil {
		err = errors.Join(err, s.detector.Close())
	}
	if closer, ok := s.recognizer.(io.Closer); ok {
		err = errors.Join(err, closer.Close())
	}
	if s.redisServer != nil {
		err = errors.Join(err, s.redisServer.Close())
	}

	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
