package plate

import "image"

// SelectionStrategy picks one detection out of the detector's candidates.
// "first" preserves the legacy first-candidate-only behavior and is the
// default; the other strategies exist because taking the first box is a
// documented precision/recall tradeoff, not a rule.
type SelectionStrategy string

const (
	SelectFirst             SelectionStrategy = "first"
	SelectHighestConfidence SelectionStrategy = "highest_confidence"
	SelectLargestArea       SelectionStrategy = "largest_area"
)

func (s SelectionStrategy) Valid() bool {
	switch s {
	case SelectFirst, SelectHighestConfidence, SelectLargestArea:
		return true
	}
	return false
}

// SelectCandidate applies the strategy to the detector's ranked output.
// Returns false when there are no candidates. All unselected candidates are
// discarded, including genuinely distinct additional plates.
func SelectCandidate(candidates []Candidate, strategy SelectionStrategy) (BoundingBox, bool) {
	if len(candidates) == 0 {
		return BoundingBox{}, false
	}

	best := candidates[0]
	switch strategy {
	case SelectHighestConfidence:
		for _, c := range candidates[1:] {
			if c.Confidence > best.Confidence {
				best = c
			}
		}
	case SelectLargestArea:
		for _, c := range candidates[1:] {
			if c.Box.Area() > best.Box.Area() {
				best = c
			}
		}
	default:
		// first in the detector's native ranking
	}
	return best.Box, true
}

// PaddedRect expands the box by padding on all four sides and clamps the
// result to [0,width) x [0,height). The second return value is false when
// clamping collapsed the rectangle to zero area; callers must treat that as
// a crop error and must not invoke the recognizer.
func PaddedRect(box BoundingBox, padding, width, height int) (image.Rectangle, bool) {
	r := image.Rect(box.X1-padding, box.Y1-padding, box.X2+padding, box.Y2+padding)
	r = r.Intersect(image.Rect(0, 0, width, height))
	if r.Empty() {
		return image.Rectangle{}, false
	}
	return r, true
}
