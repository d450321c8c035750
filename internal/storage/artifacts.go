package storage

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// Fixed debug artifact names. Concurrent requests may race to overwrite
// these; last writer wins.
const (
	AnnotatedLatestName = "annotated_latest.jpg"
	CropLatestName      = "crop_latest.jpg"
)

// ArtifactStore persists rendered slips and debug images under one local
// directory, the only shared mutable resource in the service.
type ArtifactStore struct {
	dir string
}

func NewArtifactStore(dir string) (*ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &ArtifactStore{dir: dir}, nil
}

func (s *ArtifactStore) Dir() string {
	return s.dir
}

// SlipFilename derives the slip name from the reading and entry time. A
// colliding plate+timestamp pair overwrites the earlier file.
func SlipFilename(reading string, entryTime time.Time) string {
	return fmt.Sprintf("slip_%s_%s.png",
		strings.ReplaceAll(reading, " ", "_"),
		entryTime.Format("20060102_150405"))
}

// SaveImage encodes img according to the filename's extension and writes it
// into the store.
func (s *ArtifactStore) SaveImage(name string, img image.Image) error {
	path, err := s.Resolve(name)
	if err != nil {
		return err
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("save artifact %s: %w", name, err)
	}
	return nil
}

// Resolve maps an artifact name to its on-disk path, rejecting names that
// would escape the store directory.
func (s *ArtifactStore) Resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

// URL returns the path under which the HTTP layer serves this artifact.
func (s *ArtifactStore) URL(name string) string {
	return "/static/slips/" + name
}
