//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"plate-slip-service/internal/config"
	"plate-slip-service/internal/domain/plate"
)

type YOLODetector struct {
	inputSize     int
	confThreshold float32
	nmsThreshold  float32
}

// NewYOLODetector builds a detector stub for builds without OpenCV.
func NewYOLODetector(cfg config.DetectorConfig) (*YOLODetector, error) {
	return &YOLODetector{
		inputSize:     cfg.InputSize,
		confThreshold: float32(cfg.ConfThreshold),
		nmsThreshold:  float32(cfg.NMSThreshold),
	}, nil
}

func (d *YOLODetector) Close() error {
	return nil
}

// Detect returns an error when built without the gocv tag.
func (d *YOLODetector) Detect(ctx context.Context, imageData []byte) ([]plate.Candidate, error) {
	_ = ctx
	_ = imageData
	return nil, errors.New("gocv build tag is not enabled")
}
