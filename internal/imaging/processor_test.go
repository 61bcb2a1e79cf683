// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// createTestImage creates a simple test image with the given dimensions.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

// encodePNG encodes a test image as PNG bytes.
func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func TestProcess(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := encodePNG(t, createTestImage(1600, 900))

	result, err := p.Process(bytes.NewReader(data), "hero-123-456.png")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if result.Width != 1600 || result.Height != 900 {
		t.Errorf("dimensions = %dx%d, want 1600x900", result.Width, result.Height)
	}
	if result.MimeType != MimeTypePNG {
		t.Errorf("MimeType = %q, want %q", result.MimeType, MimeTypePNG)
	}
	if result.Filename != "hero-123-456.png" {
		t.Errorf("Filename = %q", result.Filename)
	}
	if _, err := os.Stat(filepath.Join(dir, "hero-123-456.png")); err != nil {
		t.Errorf("original not saved: %v", err)
	}

	// 1600px source gets all three width variants
	if len(result.Variants) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(result.Variants))
	}
	for _, v := range result.Variants {
		if _, err := os.Stat(v.FilePath); err != nil {
			t.Errorf("variant %s not saved: %v", v.Filename, err)
		}
	}

	// Aspect ratio preserved: 480w variant of a 16:9 source is 270 tall
	if result.Variants[0].Width != 480 || result.Variants[0].Height != 270 {
		t.Errorf("480w variant = %dx%d, want 480x270",
			result.Variants[0].Width, result.Variants[0].Height)
	}
}

func TestProcessSkipsLargerVariants(t *testing.T) {
	p := NewProcessor(t.TempDir())

	data := encodePNG(t, createTestImage(600, 400))

	result, err := p.Process(bytes.NewReader(data), "small.png")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	// Only the 480 width is below the 600px source
	if len(result.Variants) != 1 {
		t.Fatalf("expected 1 variant, got %d", len(result.Variants))
	}
	if result.Variants[0].Width != 480 {
		t.Errorf("variant width = %d, want 480", result.Variants[0].Width)
	}
}

func TestProcessRejectsUnsupportedData(t *testing.T) {
	p := NewProcessor(t.TempDir())

	if _, err := p.Process(bytes.NewReader([]byte("not an image")), "file.txt"); err == nil {
		t.Error("expected error for non-image data")
	}
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := encodePNG(t, createTestImage(1600, 900))
	result, err := p.Process(bytes.NewReader(data), "gone.png")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if err := p.Delete("gone.png"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := os.Stat(result.FilePath); !os.IsNotExist(err) {
		t.Error("original still exists after Delete")
	}
	for _, v := range result.Variants {
		if _, err := os.Stat(v.FilePath); !os.IsNotExist(err) {
			t.Errorf("variant %s still exists after Delete", v.Filename)
		}
	}

	// Deleting a missing file is not an error
	if err := p.Delete("never-existed.png"); err != nil {
		t.Errorf("Delete of missing file failed: %v", err)
	}
}

func TestProcessorIsImage(t *testing.T) {
	p := NewProcessor("./uploads")

	tests := []struct {
		mimeType string
		want     bool
	}{
		{MimeTypeJPEG, true},
		{MimeTypePNG, true},
		{MimeTypeGIF, true},
		{MimeTypeWebP, true},
		{"application/pdf", false},
		{"application/octet-stream", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			if got := p.IsImage(tt.mimeType); got != tt.want {
				t.Errorf("IsImage(%q) = %v, want %v", tt.mimeType, got, tt.want)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg magic bytes", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "jpeg"},
		{"png magic bytes", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "png"},
		{"gif magic bytes", []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61}, "gif"},
		{"unknown", []byte{0x00, 0x01, 0x02, 0x03}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFormat(tt.data); got != tt.want {
				t.Errorf("detectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVariantFilename(t *testing.T) {
	tests := []struct {
		filename string
		width    int
		want     string
	}{
		{"hero.jpg", 480, "hero-480w.jpg"},
		{"photo-123-456.png", 1200, "photo-123-456-1200w.png"},
		{"noext", 768, "noext-768w"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := variantFilename(tt.filename, tt.width); got != tt.want {
				t.Errorf("variantFilename(%q, %d) = %q, want %q", tt.filename, tt.width, got, tt.want)
			}
		})
	}
}

func TestFormatToMimeType(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"jpeg", MimeTypeJPEG},
		{"jpg", MimeTypeJPEG},
		{"png", MimeTypePNG},
		{"gif", MimeTypeGIF},
		{"webp", MimeTypeWebP},
		{"unknown", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := formatToMimeType(tt.format); got != tt.want {
				t.Errorf("formatToMimeType(%q) = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}

func TestApplyOrientation(t *testing.T) {
	// Verify it doesn't panic for all orientations 1-8 plus out-of-range
	tests := []int{1, 2, 3, 4, 5, 6, 7, 8, 0, 9}

	for _, orientation := range tests {
		t.Run("orientation_"+string(rune('0'+orientation)), func(t *testing.T) {
			img := createTestImage(10, 10)
			result := applyOrientation(img, orientation)
			if result == nil {
				t.Error("applyOrientation returned nil")
			}
		})
	}
}
