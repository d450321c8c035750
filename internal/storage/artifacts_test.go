package storage

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSlipFilename(t *testing.T) {
	ts := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

	tests := []struct {
		name     string
		reading  string
		expected string
	}{
		{
			name:     "plain reading",
			reading:  "ABC123",
			expected: "slip_ABC123_20250314_150926.png",
		},
		{
			name:     "multi token reading",
			reading:  "KA 01 AB",
			expected: "slip_KA_01_AB_20250314_150926.png",
		},
		{
			name:     "sentinel reading",
			reading:  "No text detected",
			expected: "slip_No_text_detected_20250314_150926.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SlipFilename(tt.reading, ts); got != tt.expected {
				t.Errorf("SlipFilename(%q) = %q, want %q", tt.reading, got, tt.expected)
			}
		})
	}
}

func TestSlipFilenameDeterministic(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if SlipFilename("AB12", ts) != SlipFilename("AB12", ts) {
		t.Error("same reading and timestamp must produce the same filename")
	}
}

func TestArtifactStoreSaveImage(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore: %v", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	if err := store.SaveImage("test.png", img); err != nil {
		t.Fatalf("SaveImage: %v", err)
	}

	info, err := os.Stat(filepath.Join(store.Dir(), "test.png"))
	if err != nil {
		t.Fatalf("saved artifact missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("saved artifact is empty")
	}
}

func TestArtifactStoreResolveRejectsTraversal(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore: %v", err)
	}

	for _, name := range []string{"", "../escape.png", "a/b.png", ".hidden"} {
		if _, err := store.Resolve(name); err == nil {
			t.Errorf("Resolve(%q) should be rejected", name)
		}
	}

	if _, err := store.Resolve("slip_AB12_20250101_000000.png"); err != nil {
		t.Errorf("Resolve rejected a valid name: %v", err)
	}
}

func TestArtifactStoreURL(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore: %v", err)
	}

	if got := store.URL("x.png"); got != "/static/slips/x.png" {
		t.Errorf("URL() = %q", got)
	}
}
