package cedulaService

import (
	"CedulaOCR/internal/api/cedula"
	"CedulaOCR/pkg/imgproc"
	logPkg "CedulaOCR/pkg/log"
	"CedulaOCR/pkg/ocr"
	"CedulaOCR/pkg/response"
	"context"
	"image"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	adaptiveBlockSize = 11
	adaptiveC         = 2
)

type categoryMatcher struct {
	pattern  *regexp.Regexp
	category string
}

// Order matters, the first matching category wins.
var categoryMatchers = []categoryMatcher{
	{regexp.MustCompile(`(?i)AUDITIVA|AUDIIIVA|AUDITI\w*`), "AUDITIVA"},
	{regexp.MustCompile(`(?i)VISUAL`), "VISUAL"},
	{regexp.MustCompile(`(?i)FÍSICA|FISICA|FISIC\w*`), "FÍSICA"},
	{regexp.MustCompile(`(?i)INTELECTUAL|INTELECT\w*`), "INTELECTUAL"},
	{regexp.MustCompile(`(?i)PSICOSOCIAL|PSICO\w*`), "PSICOSOCIAL"},
	{regexp.MustCompile(`(?i)MÚLTIPLE|MULTIPLE|MULTI\w*`), "MÚLTIPLE"},
}

var (
	percentagePattern = regexp.MustCompile(`(\d{1,2})%`)
	donorPattern      = regexp.MustCompile(`(?i)DONANTE|DONANE|DONAN\w*`)
)

type variant struct {
	name string
	img  image.Image
}

type pass struct {
	cfg     ocr.Config
	variant variant
}

func (s *cedulaService) ProcessBack(ctx context.Context, data []byte) (cedula.BackResponse, error) {
	img, err := imgproc.Decode(data)
	if err != nil {
		return nil, response.Wrap(cedula.ErrInvalidImage, err)
	}

	text, err := s.recognizeEnsemble(ctx, img)
	if err != nil {
		return nil, err
	}

	return MapBack(extractBackFields(text)), nil
}

func (s *cedulaService) ensembleConfigs() []ocr.Config {
	lang := []string{s.cfg.Language}
	return []ocr.Config{
		{Mode: ocr.SingleBlock, Languages: lang},
		{Mode: ocr.SingleLine, Languages: lang},
		{Mode: ocr.SingleWord, Languages: lang},
		{Mode: ocr.SingleBlock, Languages: lang, Whitelist: ocr.UppercaseAlnumPercent},
	}
}

// recognizeEnsemble runs every config over both binarized copies and folds the
// results config major, Otsu first. A failing pass contributes nothing.
func (s *cedulaService) recognizeEnsemble(ctx context.Context, img image.Image) (string, error) {
	gray := imgproc.Grayscale(img)
	variants := []variant{
		{name: "otsu", img: imgproc.Otsu(gray)},
		{name: "adaptive", img: imgproc.AdaptiveGaussian(gray, adaptiveBlockSize, adaptiveC)},
	}

	var passes []pass
	for _, cfg := range s.ensembleConfigs() {
		for _, v := range variants {
			passes = append(passes, pass{cfg: cfg, variant: v})
		}
	}

	texts := make([]string, len(passes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.EnsembleConcurrency)

	for i, p := range passes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := s.recognizer.Recognize(gctx, p.variant.img, p.cfg)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logPkg.WithRequestID(s.log, ctx).WithFields(logrus.Fields{
					"config":  p.cfg.String(),
					"variant": p.variant.name,
					"error":   err.Error(),
				}).Warn("recognition pass failed")
				return nil
			}
			texts[i] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, text := range texts {
		sb.WriteString(" ")
		sb.WriteString(text)
	}
	return strings.ToUpper(sb.String()), nil
}

func extractBackFields(text string) map[string]string {
	fields := map[string]string{}

	for _, m := range categoryMatchers {
		if m.pattern.MatchString(text) {
			fields[cedula.KeyTipoDiscapacidad] = m.category
			break
		}
	}

	if match := percentagePattern.FindStringSubmatch(text); match != nil {
		fields[cedula.KeyPorcentajeDiscapacidad] = match[1] + "%"
	}

	if donorPattern.MatchString(text) {
		fields[cedula.KeyDonante] = cedula.DonorAffirmative
	}

	return fields
}
