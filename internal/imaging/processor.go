// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging handles uploaded image files: validation, storage under
// the uploads directory, and thumbnail generation.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // WebP decoder
)

// Thumbnail dimensions for gallery covers and image previews.
const (
	ThumbWidth  = 400
	ThumbHeight = 300
)

// UploadResult contains the result of storing an uploaded image.
type UploadResult struct {
	// FileName is the stored file's name relative to the uploads directory.
	FileName string
	Width    int
	Height   int
	MimeType string
	Size     int64
}

// Processor stores and resizes uploaded images using pure Go libraries.
type Processor struct {
	uploadsDir string
}

// NewProcessor creates a new image processor rooted at uploadsDir.
func NewProcessor(uploadsDir string) *Processor {
	return &Processor{
		uploadsDir: uploadsDir,
	}
}

// SaveUpload validates and stores an uploaded image. The stored file gets a
// random name so uploads never collide and client-supplied names never touch
// the filesystem. EXIF orientation is applied during decoding; the original
// metadata is not preserved.
func (p *Processor) SaveUpload(reader io.Reader, originalName string) (*UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	format := detectFormat(data)
	if format == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()

	// Re-encode instead of writing client bytes verbatim. This strips EXIF
	// and guarantees the stored file really is the format we detected.
	processed, format, err := encodeImage(img, format, 95)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	fileName := uuid.New().String() + extForFormat(format)
	if err := p.writeFile(fileName, processed); err != nil {
		return nil, err
	}

	return &UploadResult{
		FileName: fileName,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		MimeType: "image/" + format,
		Size:     int64(len(processed)),
	}, nil
}

// CreateThumbnail generates a thumbnail for a stored image and returns the
// thumbnail's file name relative to the uploads directory. The source image
// is fit within ThumbWidth x ThumbHeight preserving aspect ratio.
func (p *Processor) CreateThumbnail(fileName string) (string, error) {
	sourcePath, err := p.resolve(fileName)
	if err != nil {
		return "", err
	}

	img, err := imaging.Open(sourcePath, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to open source image: %w", err)
	}

	thumb := imaging.Fit(img, ThumbWidth, ThumbHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	thumbName := filepath.Join("thumbnails", strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))+".jpg")
	if err := p.writeFile(thumbName, buf.Bytes()); err != nil {
		return "", err
	}
	return thumbName, nil
}

// DeleteFile removes a stored file. Missing files are not an error.
func (p *Processor) DeleteFile(fileName string) error {
	path, err := p.resolve(fileName)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// resolve joins fileName to the uploads directory and verifies the result
// stays inside it.
func (p *Processor) resolve(fileName string) (string, error) {
	clean := filepath.Clean(fileName)
	if strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid file name")
	}

	absBase, err := filepath.Abs(p.uploadsDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve uploads directory: %w", err)
	}

	absTarget := filepath.Join(absBase, clean)
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path traversal detected")
	}
	return absTarget, nil
}

func (p *Processor) writeFile(fileName string, data []byte) error {
	path, err := p.resolve(fileName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

// encodeImage encodes an image with the specified format and quality.
// WebP and GIF inputs are converted to JPEG: WebP encoding is unavailable
// in pure Go, and animated GIFs lose animation on decode anyway. Returns
// the bytes and the format actually written.
func encodeImage(img image.Image, format string, quality int) ([]byte, string, error) {
	var buf bytes.Buffer

	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "png", nil
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "jpeg", nil
	}
}

func extForFormat(format string) string {
	if format == "png" {
		return ".png"
	}
	return ".jpg"
}
