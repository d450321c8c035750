//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"

	"gocv.io/x/gocv"

	"plate-slip-service/internal/config"
	"plate-slip-service/internal/domain/plate"
)

// YOLODetector wraps a YOLO plate-detection network exported to ONNX. The
// network is loaded once at startup and treated as shared read-only state;
// it is never reloaded because of a per-request failure.
type YOLODetector struct {
	net           gocv.Net
	inputSize     int
	confThreshold float32
	nmsThreshold  float32
}

func NewYOLODetector(cfg config.DetectorConfig) (*YOLODetector, error) {
	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load detection model from %s", cfg.ModelPath)
	}
	return &YOLODetector{
		net:           net,
		inputSize:     cfg.InputSize,
		confThreshold: float32(cfg.ConfThreshold),
		nmsThreshold:  float32(cfg.NMSThreshold),
	}, nil
}

func (d *YOLODetector) Close() error {
	return d.net.Close()
}

// Detect runs the network on raw image bytes and returns candidates ordered
// by descending confidence, boxes clamped to the source extent.
func (d *YOLODetector) Detect(ctx context.Context, imageData []byte) ([]plate.Candidate, error) {
	_ = ctx

	mat, err := decodeToMat(imageData)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	origW := mat.Cols()
	origH := mat.Rows()

	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(d.inputSize, d.inputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	defer out.Close()

	boxes, scores, err := d.decodeOutput(out, origW, origH)
	if err != nil {
		return nil, err
	}
	if len(boxes) == 0 {
		return nil, nil
	}

	keep := gocv.NMSBoxes(boxes, scores, d.confThreshold, d.nmsThreshold)

	candidates := make([]plate.Candidate, 0, len(keep))
	for _, i := range keep {
		r := boxes[i]
		box := plate.BoundingBox{
			X1: clamp(r.Min.X, 0, origW),
			Y1: clamp(r.Min.Y, 0, origH),
			X2: clamp(r.Max.X, 0, origW),
			Y2: clamp(r.Max.Y, 0, origH),
		}
		if box.Width() <= 0 || box.Height() <= 0 {
			continue
		}
		candidates = append(candidates, plate.Candidate{
			Box:        box,
			Confidence: float64(scores[i]),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	return candidates, nil
}

// decodeOutput parses the (1, 4+nc, N) YOLO output layout: rows 0..3 are
// cx, cy, w, h in input-size coordinates, remaining rows are class scores.
func (d *YOLODetector) decodeOutput(out gocv.Mat, origW, origH int) ([]image.Rectangle, []float32, error) {
	sizes := out.Size()
	if len(sizes) != 3 || sizes[1] < 5 {
		return nil, nil, fmt.Errorf("unexpected detector output shape %v", sizes)
	}
	rows := sizes[1]
	cols := sizes[2]

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read detector output: %w", err)
	}

	sx := float32(origW) / float32(d.inputSize)
	sy := float32(origH) / float32(d.inputSize)

	var boxes []image.Rectangle
	var scores []float32
	for j := 0; j < cols; j++ {
		score := float32(0)
		for i := 4; i < rows; i++ {
			if s := data[i*cols+j]; s > score {
				score = s
			}
		}
		if score < d.confThreshold {
			continue
		}

		cx := data[0*cols+j] * sx
		cy := data[1*cols+j] * sy
		w := data[2*cols+j] * sx
		h := data[3*cols+j] * sy

		boxes = append(boxes, image.Rect(
			int(cx-w/2), int(cy-h/2),
			int(cx+w/2), int(cy+h/2),
		))
		scores = append(scores, score)
	}
	return boxes, scores, nil
}

// decodeToMat turns image bytes into a gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if err == nil {
		mat.Close()
	}
	return gocv.Mat{}, errors.New("failed to decode image")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
