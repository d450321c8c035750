//go:build !tesseract
// +build !tesseract

package ocr

import (
	"context"
	"errors"
	"image"
	"strings"

	"plate-slip-service/internal/config"
	"plate-slip-service/internal/domain/plate"
)

type TesseractRecognizer struct {
	languages []string
}

// NewTesseractRecognizer builds a recognizer stub for builds without
// the Tesseract libraries.
func NewTesseractRecognizer(cfg config.OCRConfig) *TesseractRecognizer {
	langs := strings.Split(cfg.Languages, ",")
	for i := range langs {
		langs[i] = strings.TrimSpace(langs[i])
	}
	return &TesseractRecognizer{languages: langs}
}

// Recognize returns an error when built without the tesseract tag.
func (r *TesseractRecognizer) Recognize(ctx context.Context, region image.Image) ([]plate.TextSpan, error) {
	_ = ctx
	_ = region
	return nil, errors.New("tesseract build tag is not enabled")
}
