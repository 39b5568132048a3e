package cedulaService

import (
	"CedulaOCR/internal/entity"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	nonDigits    = regexp.MustCompile(`[^0-9]`)
	nonNameChars = regexp.MustCompile(`[^A-Za-zÀ-ÿ\t\n\v\f\r\x{1c}-\x{1f}\x{85}\p{Z}]`)
	dashReplacer = strings.NewReplacer("-", "", "–", "")
)

// Normalize cleans recognized text according to the field it belongs to.
// It is deterministic and idempotent.
func Normalize(label string, text string) string {
	switch label {
	case entity.LabelIdentityNumber:
		return normalizeIdentityNumber(text)
	case entity.LabelFirstname, entity.LabelLastname, entity.LabelLastnameFirst, entity.LabelLastnameSecond:
		return normalizeName(text)
	default:
		return strings.TrimSpace(text)
	}
}

func normalizeIdentityNumber(text string) string {
	text = strings.TrimSpace(dashReplacer.Replace(text))
	return nonDigits.ReplaceAllString(text, "")
}

// normalizeName keeps Latin letters and Unicode whitespace, uppercased. Letters whose
// uppercase form leaves the accepted range (ÿ becomes Ÿ) are dropped by the
// second pass.
func normalizeName(text string) string {
	text = norm.NFC.String(text)
	text = nonNameChars.ReplaceAllString(text, "")
	text = strings.ToUpper(text)
	text = nonNameChars.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
