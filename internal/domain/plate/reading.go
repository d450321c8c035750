package plate

import (
	"strings"
	"unicode"
)

const (
	// ConfidenceThreshold is inclusive: a span at exactly 0.2 is retained.
	ConfidenceThreshold = 0.2

	SentinelNoText    = "No text detected"
	SentinelCropError = "Crop Error"
)

// NormalizeSpans turns recognizer output into a Reading. Each span with
// confidence >= ConfidenceThreshold is stripped to alphanumerics and
// upper-cased; spans that strip to nothing are dropped; survivors are joined
// with a single space in emission order. Stripping happens per span before
// joining, so spaces inside one recognized span are removed too.
func NormalizeSpans(spans []TextSpan) Reading {
	if len(spans) == 0 {
		return Reading{Text: SentinelNoText, Code: ReadingEmpty}
	}

	cleaned := make([]string, 0, len(spans))
	for _, span := range spans {
		if span.Confidence < ConfidenceThreshold {
			continue
		}
		token := cleanToken(span.Text)
		if token == "" {
			continue
		}
		cleaned = append(cleaned, token)
	}

	if len(cleaned) == 0 {
		return Reading{Text: SentinelNoText, Code: ReadingFiltered}
	}
	return Reading{Text: strings.Join(cleaned, " "), Code: ReadingOK}
}

// CropErrorReading is the Reading used when the crop collapsed to zero area.
// Downstream treats it like "no text detected" but it stays distinguishable.
func CropErrorReading() Reading {
	return Reading{Text: SentinelCropError, Code: ReadingCropError}
}

func cleanToken(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}
