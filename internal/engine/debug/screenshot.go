package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Screenshot writes framebuffer captures as timestamped PNG files.
// Reading the pixels is the renderer's job; this type only flips and
// encodes them, so it stays free of GL calls.
type Screenshot struct {
	dir    string
	prefix string
}

// NewScreenshot returns a Screenshot writing into dir. The directory is
// created on first save.
func NewScreenshot(dir string) *Screenshot {
	return &Screenshot{dir: dir, prefix: "meridian"}
}

// SavePixels encodes raw RGBA pixels as a PNG and returns the written
// path. The pixels are in GL order (bottom row first) and are flipped
// to image order here.
func (s *Screenshot) SavePixels(pixels []byte, width, height int) (string, error) {
	rowSize := width * 4
	if len(pixels) != rowSize*height {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", rowSize*height, len(pixels))
	}

	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create screenshot directory: %w", err)
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		copy(img.Pix[y*rowSize:(y+1)*rowSize], pixels[src:src+rowSize])
	}

	name := fmt.Sprintf("%s_%s.png", s.prefix, time.Now().Format("2006-01-02_15-04-05"))
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create screenshot file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("failed to encode screenshot: %w", err)
	}
	return path, nil
}
