package render

import (
	"image"
	"os"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"plate-slip-service/internal/config"
)

// Slip layout constants. The layout is fixed; only the plate text and the
// timestamp vary between renders.
const (
	slipWidth  = 600
	slipHeight = 380

	colorBG          = "#0D0D1A"
	colorAccent      = "#7C3AED"
	colorAccentLight = "#A78BFA"
	colorWhite       = "#FFFFFF"
	colorGray        = "#94A3B8"
	colorBorder      = "#4C1D95"

	// Entry Time row format, day-month-year hour:minute:second.
	slipTimeFormat = "02 Jan 2006  15:04:05"

	footerCaption = "Powered by Smart Parking System"
)

// SlipRenderer draws parking receipts. Preferred typefaces are read from the
// configured paths at construction; when unavailable the embedded Go fonts
// are used instead, so construction never fails on fonts alone.
type SlipRenderer struct {
	regular *truetype.Font
	bold    *truetype.Font
	log     zerolog.Logger
}

func NewSlipRenderer(cfg config.SlipConfig, log zerolog.Logger) *SlipRenderer {
	r := &SlipRenderer{log: log}

	r.regular = loadFont(cfg.FontRegularPath)
	if r.regular == nil {
		r.regular, _ = truetype.Parse(goregular.TTF)
		if cfg.FontRegularPath != "" {
			log.Warn().Str("path", cfg.FontRegularPath).Msg("regular font not loaded, using embedded fallback")
		}
	}
	r.bold = loadFont(cfg.FontBoldPath)
	if r.bold == nil {
		r.bold, _ = truetype.Parse(gobold.TTF)
		if cfg.FontBoldPath != "" {
			log.Warn().Str("path", cfg.FontBoldPath).Msg("bold font not loaded, using embedded fallback")
		}
	}

	return r
}

// Render draws the receipt for one plate reading. The output is always a
// slipWidth x slipHeight image containing the title, divider, the four
// label/value rows and the footer caption.
func (r *SlipRenderer) Render(reading string, entryTime time.Time, fee string) image.Image {
	dc := gg.NewContext(slipWidth, slipHeight)

	dc.SetHexColor(colorBG)
	dc.Clear()

	// Border
	dc.DrawRoundedRectangle(12, 12, slipWidth-24, slipHeight-24, 14)
	dc.SetHexColor(colorBorder)
	dc.SetLineWidth(2)
	dc.Stroke()

	// Accent bar behind the title
	dc.DrawRoundedRectangle(12, 12, slipWidth-24, 48, 14)
	dc.SetHexColor(colorAccent)
	dc.Fill()

	dc.SetFontFace(r.face(r.bold, 30))
	dc.SetHexColor(colorWhite)
	dc.DrawStringAnchored("PARKING RECEIPT", slipWidth/2, 36, 0.5, 0.5)

	dc.SetHexColor(colorBorder)
	dc.SetLineWidth(1)
	dc.DrawLine(40, 75, slipWidth-40, 75)
	dc.Stroke()

	rows := []struct {
		label string
		value string
	}{
		{"Vehicle Plate", reading},
		{"Entry Time", entryTime.Format(slipTimeFormat)},
		{"Parking Fee", fee},
		{"Status", "ACTIVE"},
	}

	labelFace := r.face(r.regular, 16)
	valueFace := r.face(r.bold, 18)
	y := 105.0
	for _, row := range rows {
		dc.SetFontFace(labelFace)
		dc.SetHexColor(colorAccentLight)
		dc.DrawStringAnchored(row.label, 50, y, 0, 0.5)

		dc.SetFontFace(valueFace)
		dc.SetHexColor(colorWhite)
		dc.DrawStringAnchored(row.value, 270, y, 0, 0.5)

		y += 55
	}

	dc.SetFontFace(r.face(r.regular, 12))
	dc.SetHexColor(colorGray)
	dc.DrawStringAnchored(footerCaption, slipWidth/2, slipHeight-30, 0.5, 0.5)

	return dc.Image()
}

func (r *SlipRenderer) face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size})
}

func loadFont(path string) *truetype.Font {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil
	}
	return f
}
