package connect

import (
	"bytes"
	"image"
	"image/jpeg"
)

// rotateJPEG rotates the encoded JPEG clockwise by the given number of
// degrees (90, 180, or 270). Any other value, or a decode or encode
// failure, returns the original bytes so a bad frame still reaches
// Connect unrotated rather than not at all.
func rotateJPEG(data []byte, rotation int) []byte {
	switch rotation {
	case 90, 180, 270:
	default:
		return data
	}

	src, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	var dst *image.RGBA
	switch rotation {
	case 90:
		dst = image.NewRGBA(image.Rect(0, 0, height, width))
		for y := 0; y < width; y++ {
			for x := 0; x < height; x++ {
				dst.Set(x, y, src.At(bounds.Min.X+y, bounds.Min.Y+height-1-x))
			}
		}
	case 180:
		dst = image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				dst.Set(x, y, src.At(bounds.Min.X+width-1-x, bounds.Min.Y+height-1-y))
			}
		}
	case 270:
		dst = image.NewRGBA(image.Rect(0, 0, height, width))
		for y := 0; y < width; y++ {
			for x := 0; x < height; x++ {
				dst.Set(x, y, src.At(bounds.Min.X+width-1-y, bounds.Min.Y+x))
			}
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return data
	}
	return buf.Bytes()
}
