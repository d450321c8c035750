package render

import (
	"image"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"plate-slip-service/internal/config"
	"plate-slip-service/internal/domain/plate"
)

func TestRenderSlipDimensions(t *testing.T) {
	r := NewSlipRenderer(config.SlipConfig{}, zerolog.Nop())

	img := r.Render("ABC123", time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC), "Rs. 30.00")
	bounds := img.Bounds()
	if bounds.Dx() != slipWidth || bounds.Dy() != slipHeight {
		t.Errorf("slip dimensions = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), slipWidth, slipHeight)
	}
}

func TestRenderSlipWithSentinelReading(t *testing.T) {
	r := NewSlipRenderer(config.SlipConfig{}, zerolog.Nop())

	// Sentinel readings still render; visual fidelity is not a correctness
	// property, only that drawing completes.
	for _, reading := range []string{plate.SentinelNoText, plate.SentinelCropError, ""} {
		img := r.Render(reading, time.Now(), "Rs. 30.00")
		if img == nil {
			t.Errorf("Render(%q) returned nil image", reading)
		}
	}
}

func TestRenderFontFallback(t *testing.T) {
	// Bogus font paths must not fail construction or rendering.
	r := NewSlipRenderer(config.SlipConfig{
		FontRegularPath: "testdata/does-not-exist.ttf",
		FontBoldPath:    "testdata/does-not-exist-bold.ttf",
	}, zerolog.Nop())

	if r.regular == nil || r.bold == nil {
		t.Fatal("fallback fonts were not loaded")
	}
	if img := r.Render("KA01AB1234", time.Now(), "Rs. 30.00"); img == nil {
		t.Error("Render returned nil image with fallback fonts")
	}
}

func TestAnnotateBoxPreservesDimensions(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 120, 80))
	out := AnnotateBox(src, plate.BoundingBox{X1: 10, Y1: 10, X2: 60, Y2: 40})

	if out.Bounds() != src.Bounds() {
		t.Errorf("annotated bounds = %v, want %v", out.Bounds(), src.Bounds())
	}
}
