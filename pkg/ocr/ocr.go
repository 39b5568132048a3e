// Package ocr defines the text recognition capability used by the extraction
// pipeline and the recognition configurations it is invoked with. Engines
// live in sub packages.
package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"
)

// PageSegMode mirrors Tesseract's page segmentation modes.
type PageSegMode int

const (
	SingleBlock PageSegMode = 6
	SingleLine  PageSegMode = 7
	SingleWord  PageSegMode = 8
)

// UppercaseAlnumPercent restricts recognition to the characters that can
// appear in the disability block of the reverse side.
const UppercaseAlnumPercent = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789%"

type Config struct {
	Mode      PageSegMode
	Languages []string
	Whitelist string
}

// String renders the config the way the tesseract CLI would receive it.
func (c Config) String() string {
	parts := []string{fmt.Sprintf("--psm %d", c.Mode)}
	if len(c.Languages) > 0 {
		parts = append(parts, "-l "+strings.Join(c.Languages, "+"))
	}
	if c.Whitelist != "" {
		parts = append(parts, "-c tessedit_char_whitelist="+c.Whitelist)
	}
	return strings.Join(parts, " ")
}

type ITextRecognizer interface {
	Name() string
	Available() bool
	Recognize(ctx context.Context, img image.Image, cfg Config) (string, error)
}
