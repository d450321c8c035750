//go:build tesseract
// +build tesseract

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"plate-slip-service/internal/config"
	"plate-slip-service/internal/domain/plate"
)

// minCropHeight is the height below which the crop is upscaled before OCR;
// Tesseract degrades badly on small glyphs.
const minCropHeight = 64

// TesseractRecognizer runs word-level OCR on a cropped plate region. The
// recognizer itself is the process-lifetime singleton; a fresh engine client
// is created per invocation because the underlying handle is stateful.
type TesseractRecognizer struct {
	languages []string
}

func NewTesseractRecognizer(cfg config.OCRConfig) *TesseractRecognizer {
	langs := strings.Split(cfg.Languages, ",")
	for i := range langs {
		langs[i] = strings.TrimSpace(langs[i])
	}
	return &TesseractRecognizer{languages: langs}
}

// Recognize returns text spans in engine emission order. Confidences are the
// engine's own word confidences scaled to [0,1], not recalibrated.
func (r *TesseractRecognizer) Recognize(ctx context.Context, region image.Image) ([]plate.TextSpan, error) {
	_ = ctx

	prepared := preprocess(region)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, prepared, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode crop for ocr: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.languages...); err != nil {
		return nil, fmt.Errorf("set ocr language: %w", err)
	}
	_ = client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK)
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set ocr image: %w", err)
	}

	words, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("ocr error: %w", err)
	}

	spans := make([]plate.TextSpan, 0, len(words))
	for _, w := range words {
		if strings.TrimSpace(w.Word) == "" {
			continue
		}
		spans = append(spans, plate.TextSpan{
			Text:       w.Word,
			Confidence: w.Confidence / 100,
		})
	}
	return spans, nil
}

// preprocess converts the crop to grayscale and upscales small regions.
func preprocess(img image.Image) image.Image {
	gray := imaging.Grayscale(img)
	if gray.Bounds().Dy() < minCropHeight {
		gray = imaging.Resize(gray, 0, minCropHeight*2, imaging.Lanczos)
	}
	return gray
}
