package gemini

import (
	"CedulaOCR/pkg/imgproc"
	"CedulaOCR/pkg/ocr"
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultModelName = "gemini-1.5-flash"

type Recognizer struct {
	modelName string
	client    *genai.Client
}

func New(ctx context.Context, apiKey string, modelName string) (*Recognizer, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	if modelName == "" {
		modelName = defaultModelName
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &Recognizer{
		modelName: modelName,
		client:    client,
	}, nil
}

func (g *Recognizer) Name() string { return "gemini" }

func (g *Recognizer) Available() bool { return g.client != nil }

func (g *Recognizer) Recognize(ctx context.Context, img image.Image, cfg ocr.Config) (string, error) {
	data, err := imgproc.EncodePNG(img)
	if err != nil {
		return "", err
	}

	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(0)

	res, err := model.GenerateContent(ctx, genai.Text(buildPrompt(cfg)), genai.ImageData("png", data))
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response from Gemini API")
	}

	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

func (g *Recognizer) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// buildPrompt translates the Tesseract-oriented config into instructions a
// vision model follows.
func buildPrompt(cfg ocr.Config) string {
	var sb strings.Builder
	sb.WriteString("Transcribe exactly the printed text visible in this image. ")
	sb.WriteString("Do not translate, explain or format it. Reply with the text only.\n")

	switch cfg.Mode {
	case ocr.SingleLine:
		sb.WriteString("The image contains a single line of text.\n")
	case ocr.SingleWord:
		sb.WriteString("The image contains a single word.\n")
	default:
		sb.WriteString("Keep the original line breaks.\n")
	}

	for _, lang := range cfg.Languages {
		if lang == "spa" {
			sb.WriteString("The text is in Spanish; keep accents.\n")
		}
	}

	if cfg.Whitelist != "" {
		sb.WriteString("Only output characters from this set: " + cfg.Whitelist + "\n")
	}
	return sb.String()
}
