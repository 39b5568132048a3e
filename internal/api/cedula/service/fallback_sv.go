package cedulaService

import (
	"CedulaOCR/internal/entity"
	"CedulaOCR/pkg/imgproc"
	logPkg "CedulaOCR/pkg/log"
	"CedulaOCR/pkg/ocr"
	"context"
	"image"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// Whole-word matches where any Unicode letter, digit or underscore counts as
// part of the word, so a number glued to Ñ or º is rejected.
var (
	identityNumberPattern = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])(\p{Nd}{10})(?:$|[^\p{L}\p{N}_])`)
	birthDatePattern      = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])(\p{Nd}{2}/\p{Nd}{2}/\p{Nd}{4})(?:$|[^\p{L}\p{N}_])`)
)

func firstSubmatch(pattern *regexp.Regexp, text string) string {
	if m := pattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func (s *cedulaService) extractFrontFallback(ctx context.Context, img image.Image) entity.Fields {
	binary := imgproc.Otsu(imgproc.Grayscale(img))

	text, err := s.recognizer.Recognize(ctx, binary, ocr.Config{
		Mode:      ocr.SingleBlock,
		Languages: []string{s.cfg.Language},
	})
	if err != nil {
		logPkg.WithRequestID(s.log, ctx).WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("whole image recognition failed")
		return entity.Fields{}
	}

	return extractPatterns(text)
}

// extractPatterns pulls the front fields out of free text. Keys are only set
// for the patterns that matched.
func extractPatterns(text string) entity.Fields {
	fields := entity.Fields{}

	if id := firstSubmatch(identityNumberPattern, text); id != "" {
		fields[entity.LabelIdentityNumber] = id
	}

	candidates := nameCandidates(text)
	if len(candidates) > 0 {
		fields[entity.LabelFirstname] = Normalize(entity.LabelFirstname, candidates[0])
	}
	if len(candidates) > 1 {
		fields[entity.LabelLastname] = Normalize(entity.LabelLastname, candidates[1])
	}

	if date := firstSubmatch(birthDatePattern, text); date != "" {
		fields[entity.LabelBirthDate] = date
	}

	return fields
}

func nameCandidates(text string) []string {
	var candidates []string
	for _, line := range strings.Split(text, "\n") {
		cleaned := strings.TrimSpace(nonNameChars.ReplaceAllString(line, ""))
		if utf8.RuneCountInString(cleaned) <= 3 {
			continue
		}
		if !isAlpha(strings.ReplaceAll(cleaned, " ", "")) {
			continue
		}
		candidates = append(candidates, cleaned)
	}
	return candidates
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
