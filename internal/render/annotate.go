package render

import (
	"image"

	"github.com/fogleman/gg"

	"plate-slip-service/internal/domain/plate"
)

// AnnotateBox returns a copy of the source image with the detection box
// stroked in the accent color. Used only for the debug artifact.
func AnnotateBox(img image.Image, box plate.BoundingBox) image.Image {
	dc := gg.NewContextForImage(img)
	dc.SetHexColor(colorAccent)
	dc.SetLineWidth(3)
	dc.DrawRectangle(float64(box.X1), float64(box.Y1), float64(box.Width()), float64(box.Height()))
	dc.Stroke()
	return dc.Image()
}
