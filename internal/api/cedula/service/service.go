package cedulaService

import (
	"CedulaOCR/internal/api/cedula"
	"CedulaOCR/pkg/detector"
	"CedulaOCR/pkg/ocr"
	"context"

	"github.com/sirupsen/logrus"
)

type ICedulaService interface {
	ProcessFront(ctx context.Context, image []byte) (*cedula.FrontResponse, error)
	ProcessBack(ctx context.Context, image []byte) (cedula.BackResponse, error)
	Health(ctx context.Context) cedula.HealthResponse
}

type Config struct {
	// Confidence is the minimum detection score forwarded to the detector.
	Confidence float64
	// StrictLabels rejects a detection result carrying a label twice.
	StrictLabels bool
	// Language is the recognition hint for whole-image passes.
	Language string
	// EnsembleConcurrency bounds the reverse-side passes running at once.
	EnsembleConcurrency int
}

func DefaultConfig() Config {
	return Config{
		Confidence:          0.25,
		Language:            "spa",
		EnsembleConcurrency: 4,
	}
}

type cedulaService struct {
	log        *logrus.Logger
	detector   detector.IRegionDetector
	recognizer ocr.ITextRecognizer
	cfg        Config
}

// NewCedulaService wires the extraction pipeline. det may be nil, in which
// case every front extraction takes the heuristic path.
func NewCedulaService(
	log *logrus.Logger,
	det detector.IRegionDetector,
	recognizer ocr.ITextRecognizer,
	cfg Config,
) ICedulaService {
	defaults := DefaultConfig()
	if cfg.Confidence <= 0 || cfg.Confidence > 1 {
		cfg.Confidence = defaults.Confidence
	}
	if cfg.Language == "" {
		cfg.Language = defaults.Language
	}
	if cfg.EnsembleConcurrency <= 0 {
		cfg.EnsembleConcurrency = defaults.EnsembleConcurrency
	}

	return &cedulaService{
		log:        log,
		detector:   det,
		recognizer: recognizer,
		cfg:        cfg,
	}
}

func (s *cedulaService) Health(ctx context.Context) cedula.HealthResponse {
	resp := cedula.HealthResponse{
		Status:         "ok",
		DetectorLoaded: s.detector != nil,
	}
	if s.recognizer != nil {
		resp.RecognizerAvailable = s.recognizer.Available()
		resp.Recognizer = s.recognizer.Name()
	}
	return resp
}
