package gemini

import (
	"CedulaOCR/pkg/ocr"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), "", "")
	require.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	t.Run("single word with whitelist", func(t *testing.T) {
		prompt := buildPrompt(ocr.Config{
			Mode:      ocr.SingleWord,
			Languages: []string{"spa"},
			Whitelist: ocr.UppercaseAlnumPercent,
		})

		assert.Contains(t, prompt, "single word")
		assert.Contains(t, prompt, "Spanish")
		assert.Contains(t, prompt, ocr.UppercaseAlnumPercent)
	})

	t.Run("block keeps line breaks", func(t *testing.T) {
		prompt := buildPrompt(ocr.Config{Mode: ocr.SingleBlock})

		assert.Contains(t, prompt, "line breaks")
		assert.NotContains(t, prompt, "Spanish")
		assert.NotContains(t, prompt, "characters from this set")
	})
}
