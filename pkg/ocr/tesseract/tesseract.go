package tesseract

import (
	"CedulaOCR/pkg/imgproc"
	"CedulaOCR/pkg/ocr"
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Recognizer runs Tesseract through gosseract. A fresh client is used for
// every pass so concurrent passes never share native state.
type Recognizer struct {
	tessdataPrefix string
}

func New(tessdataPrefix string) *Recognizer {
	return &Recognizer{
		tessdataPrefix: tessdataPrefix,
	}
}

func (r *Recognizer) Name() string { return "tesseract" }

func (r *Recognizer) Available() bool {
	return gosseract.Version() != ""
}

func (r *Recognizer) Recognize(ctx context.Context, img image.Image, cfg ocr.Config) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := imgproc.EncodePNG(img)
	if err != nil {
		return "", err
	}

	c := gosseract.NewClient()
	defer c.Close()

	if r.tessdataPrefix != "" {
		if err := c.SetTessdataPrefix(r.tessdataPrefix); err != nil {
			return "", fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := c.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if len(cfg.Languages) > 0 {
		if err := c.SetLanguage(cfg.Languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	if err := c.SetPageSegMode(gosseract.PageSegMode(cfg.Mode)); err != nil {
		return "", fmt.Errorf("set page seg mode: %w", err)
	}
	if cfg.Whitelist != "" {
		if err := c.SetWhitelist(cfg.Whitelist); err != nil {
			return "", fmt.Errorf("set whitelist: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}
