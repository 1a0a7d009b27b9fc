// Package debug provides frame capture and GL error reporting.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/microwave-sim/internal/engine/gpu"
	"github.com/Faultbox/microwave-sim/internal/logger"
)

// FrameCapture writes framebuffer contents to numbered PNG files.
type FrameCapture struct {
	outputDir string
	prefix    string
	seq       int
	now       func() time.Time
}

// NewFrameCapture creates a capture handler writing into outputDir.
func NewFrameCapture(outputDir, prefix string) *FrameCapture {
	return &FrameCapture{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// Capture reads the current framebuffer from dev and saves it.
func (fc *FrameCapture) Capture(dev gpu.Device, width, height int) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("invalid capture size %dx%d", width, height)
	}
	return fc.CaptureFromPixels(dev.ReadPixels(width, height), width, height)
}

// CaptureFromPixels saves raw RGBA pixel data with width*height*4 bytes.
// The image is flipped vertically since OpenGL has origin at bottom-left.
func (fc *FrameCapture) CaptureFromPixels(pixels []byte, width, height int) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		srcOffset := (height - 1 - y) * rowSize
		dstOffset := y * img.Stride
		copy(img.Pix[dstOffset:dstOffset+rowSize], pixels[srcOffset:srcOffset+rowSize])
	}

	return fc.save(img)
}

func (fc *FrameCapture) save(img image.Image) (string, error) {
	if fc.outputDir != "" {
		if err := os.MkdirAll(fc.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := fc.nextFilename()
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}

	logger.Info("frame captured", zap.String("path", filename))
	return filename, nil
}

func (fc *FrameCapture) nextFilename() string {
	fc.seq++
	timestamp := fc.now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s_%03d.png", fc.prefix, timestamp, fc.seq)
	if fc.outputDir != "" {
		filename = filepath.Join(fc.outputDir, filename)
	}
	return filename
}
