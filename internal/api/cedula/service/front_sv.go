package cedulaService

import (
	"CedulaOCR/internal/api/cedula"
	"CedulaOCR/internal/entity"
	"CedulaOCR/pkg/imgproc"
	logPkg "CedulaOCR/pkg/log"
	"CedulaOCR/pkg/ocr"
	"CedulaOCR/pkg/response"
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/sirupsen/logrus"
)

func (s *cedulaService) ProcessFront(ctx context.Context, data []byte) (*cedula.FrontResponse, error) {
	img, err := imgproc.Decode(data)
	if err != nil {
		return nil, response.Wrap(cedula.ErrInvalidImage, err)
	}

	fields, path := s.extractFront(ctx, img)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logPkg.WithRequestID(s.log, ctx).WithFields(logrus.Fields{
		"path":   path,
		"fields": len(fields),
	}).Debug("front extraction finished")

	return MapFront(fields), nil
}

// extractFront prefers the detection guided path and falls back to the whole
// image heuristics as a single unit when it is unavailable or fails.
func (s *cedulaService) extractFront(ctx context.Context, img image.Image) (entity.Fields, cedula.ExtractionPath) {
	if s.detector == nil {
		return s.extractFrontFallback(ctx, img), cedula.PathHeuristic
	}

	fields, err := s.extractFrontDetected(ctx, img)
	if err == nil {
		return fields, cedula.PathDetection
	}
	if ctx.Err() != nil {
		return nil, cedula.PathDetection
	}

	logPkg.WithRequestID(s.log, ctx).WithFields(logrus.Fields{
		"error": err.Error(),
	}).Warn("detection guided extraction failed, using heuristics")

	return s.extractFrontFallback(ctx, img), cedula.PathHeuristic
}

func (s *cedulaService) extractFrontDetected(ctx context.Context, img image.Image) (entity.Fields, error) {
	frame, err := imgproc.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	regions, err := s.detector.Detect(ctx, frame, s.cfg.Confidence)
	if err != nil {
		return nil, fmt.Errorf("detect regions: %w", err)
	}

	fields := make(entity.Fields, len(regions))
	for _, region := range regions {
		if region.Confidence < s.cfg.Confidence {
			continue
		}

		crop, err := imgproc.Crop(img, region.Box.Rect())
		if errors.Is(err, imgproc.ErrEmptyRegion) {
			logPkg.WithRequestID(s.log, ctx).WithFields(logrus.Fields{
				"label": region.Label,
				"bbox":  region.Box,
			}).Debug("skipping region outside the image")
			continue
		}
		if err != nil {
			return nil, err
		}

		text, err := s.recognizer.Recognize(ctx, crop, ocr.Config{Mode: ocr.SingleBlock})
		if err != nil {
			return nil, fmt.Errorf("recognize %s: %w", region.Label, err)
		}

		if _, seen := fields[region.Label]; seen && s.cfg.StrictLabels {
			return nil, fmt.Errorf("%w: %s", cedula.ErrDuplicateLabel, region.Label)
		}
		fields[region.Label] = Normalize(region.Label, text)
	}

	return fields, nil
}
