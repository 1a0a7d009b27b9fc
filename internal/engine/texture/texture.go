// Package texture decodes image files into raw texel data for GPU upload.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Pixels is decoded image data, top row first, tightly packed.
type Pixels struct {
	Width    int
	Height   int
	Channels int
	Data     []byte
}

// Load reads and decodes an image file.
func Load(path string) (*Pixels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, path)
}

// Decode decodes image bytes. The name's extension selects the TGA decoder,
// which has no magic number; everything else is sniffed by image.Decode.
func Decode(data []byte, name string) (*Pixels, error) {
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		return decodeTGA(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return FromImage(img)
}

// FromImage converts a decoded image, keeping its natural channel count:
// 1 for greyscale, 3 for opaque colour, 4 when an alpha channel is present.
func FromImage(img image.Image) (*Pixels, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("image has empty size %dx%d", w, h)
	}

	switch src := img.(type) {
	case *image.Gray:
		px := &Pixels{Width: w, Height: h, Channels: 1, Data: make([]byte, w*h)}
		for y := 0; y < h; y++ {
			copy(px.Data[y*w:(y+1)*w], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return px, nil
	case *image.Gray16:
		gray := image.NewGray(b)
		draw.Draw(gray, b, src, b.Min, draw.Src)
		return FromImage(gray)
	case *image.Alpha, *image.Alpha16:
		return nil, fmt.Errorf("alpha-only images have no colour channels")
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)

	if !isOpaque(img) {
		return &Pixels{Width: w, Height: h, Channels: 4, Data: nrgba.Pix}, nil
	}

	px := &Pixels{Width: w, Height: h, Channels: 3, Data: make([]byte, w*h*3)}
	for i, j := 0, 0; i < len(nrgba.Pix); i, j = i+4, j+3 {
		px.Data[j] = nrgba.Pix[i]
		px.Data[j+1] = nrgba.Pix[i+1]
		px.Data[j+2] = nrgba.Pix[i+2]
	}
	return px, nil
}

func isOpaque(img image.Image) bool {
	switch img.(type) {
	case *image.YCbCr, *image.CMYK:
		return true
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}
