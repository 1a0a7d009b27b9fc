package texture

import "fmt"

// TGA image types handled by decodeTGA.
const (
	tgaTrueColor    = 2
	tgaGray         = 3
	tgaTrueColorRLE = 10
	tgaGrayRLE      = 11
)

// decodeTGA decodes uncompressed or RLE true-colour (24/32 bpp) and
// greyscale (8/16 bpp) TGA data. Rows are returned top row first and
// colour channels in RGB order, keeping the file's channel count.
func decodeTGA(data []byte) (*Pixels, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("TGA data too short")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	if width == 0 || height == 0 {
		return nil, fmt.Errorf("TGA has empty size %dx%d", width, height)
	}
	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}

	var channels int
	switch imageType {
	case tgaTrueColor, tgaTrueColorRLE:
		if bpp != 24 && bpp != 32 {
			return nil, fmt.Errorf("unsupported true-color TGA depth %d", bpp)
		}
	case tgaGray, tgaGrayRLE:
		if bpp != 8 && bpp != 16 {
			return nil, fmt.Errorf("unsupported grayscale TGA depth %d", bpp)
		}
	default:
		return nil, fmt.Errorf("unsupported TGA type %d", imageType)
	}
	channels = bpp / 8

	offset := 18 + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("TGA data truncated")
	}

	raw := make([]byte, width*height*channels)
	if imageType == tgaTrueColorRLE || imageType == tgaGrayRLE {
		if err := unpackRLE(raw, data[offset:], channels); err != nil {
			return nil, err
		}
	} else {
		if len(data)-offset < len(raw) {
			return nil, fmt.Errorf("TGA pixel data truncated")
		}
		copy(raw, data[offset:offset+len(raw)])
	}

	px := &Pixels{Width: width, Height: height, Channels: channels, Data: make([]byte, len(raw))}
	rowSize := width * channels
	for y := 0; y < height; y++ {
		srcY := y
		if !topToBottom {
			srcY = height - 1 - y
		}
		src := raw[srcY*rowSize : (srcY+1)*rowSize]
		dst := px.Data[y*rowSize : (y+1)*rowSize]
		copy(dst, src)
		if channels >= 3 {
			// BGR(A) -> RGB(A)
			for i := 0; i < len(dst); i += channels {
				dst[i], dst[i+2] = dst[i+2], dst[i]
			}
		}
	}
	return px, nil
}

// unpackRLE expands TGA run-length packets into dst.
func unpackRLE(dst, src []byte, channels int) error {
	out, in := 0, 0
	for out < len(dst) {
		if in >= len(src) {
			return fmt.Errorf("TGA RLE data truncated")
		}
		header := src[in]
		in++
		count := int(header&0x7F) + 1

		if header&0x80 != 0 {
			if in+channels > len(src) {
				return fmt.Errorf("TGA RLE data truncated")
			}
			pixel := src[in : in+channels]
			in += channels
			for i := 0; i < count && out < len(dst); i++ {
				copy(dst[out:], pixel)
				out += channels
			}
			continue
		}

		n := count * channels
		if in+n > len(src) {
			return fmt.Errorf("TGA RLE data truncated")
		}
		if out+n > len(dst) {
			n = len(dst) - out
		}
		copy(dst[out:], src[in:in+n])
		in += count * channels
		out += n
	}
	return nil
}
