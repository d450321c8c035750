package plate

import (
	"time"

	"github.com/google/uuid"
)

// BoundingBox is a detector-produced region in source image coordinates,
// with X1 < X2 and Y1 < Y2.
type BoundingBox struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (b BoundingBox) Width() int  { return b.X2 - b.X1 }
func (b BoundingBox) Height() int { return b.Y2 - b.Y1 }
func (b BoundingBox) Area() int   { return b.Width() * b.Height() }

// Candidate is one detection in the detector's native ranking order.
type Candidate struct {
	Box        BoundingBox `json:"box"`
	Confidence float64     `json:"confidence"`
}

// TextSpan is one recognized text region with its engine confidence in [0,1].
// Confidences are pass-through from the OCR engine, not recalibrated.
type TextSpan struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// ReadingCode tags how a Reading was produced, so callers can tell
// "nothing found" apart from "found but filtered" without matching on
// message text.
type ReadingCode string

const (
	// ReadingOK means at least one span survived filtering.
	ReadingOK ReadingCode = "ok"
	// ReadingEmpty means the recognizer returned no spans at all.
	ReadingEmpty ReadingCode = "recognition_empty"
	// ReadingFiltered means spans existed but all fell below the
	// confidence threshold or stripped to nothing.
	ReadingFiltered ReadingCode = "recognition_filtered"
	// ReadingCropError means padding/clamping collapsed the crop, so the
	// recognizer was never invoked.
	ReadingCropError ReadingCode = "crop_error"
)

// Reading is the final normalized plate string plus its diagnostic tag.
// Text is never the empty string: it is either a sentinel or a non-empty
// alphanumeric/space string.
type Reading struct {
	Text string      `json:"text"`
	Code ReadingCode `json:"code"`
}

// RecognitionResult is the assembled outcome of one processed upload.
type RecognitionResult struct {
	RequestID uuid.UUID
	NoPlate   bool
	Box       *BoundingBox
	Reading   Reading
	EntryTime time.Time
	Fee       string

	SlipFile      string
	AnnotatedFile string
	CropFile      string
	SlipObjectURL string
}
