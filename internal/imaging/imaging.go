// Package imaging holds the pixel utilities behind the editing tools:
// mask binarization for the drawing canvas, bounded downscaling for
// inpainting sources, and canvas expansion for outpainting.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"

	_ "image/jpeg" // register decoders for uploads

	"golang.org/x/image/draw"
)

var (
	// ErrInvalidImage is returned when data does not decode as PNG or JPEG.
	ErrInvalidImage = errors.New("imaging: invalid image data")
)

// maskThreshold separates stroke pixels from background when a drawn
// canvas capture is binarized.
const maskThreshold = 128

// Decode decodes PNG or JPEG bytes.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}

// Probe returns the dimensions of encoded image data without decoding
// the full pixel buffer.
func Probe(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return cfg.Width, cfg.Height, nil
}

// EncodePNG encodes an image as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("imaging: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// BinarizeMask turns a drawing-canvas capture into the black/white mask
// the editing endpoint expects. Stroke pixels are composited over a white
// background using their alpha and then thresholded: anything darker than
// the threshold becomes pure black, everything else pure white.
func BinarizeMask(data []byte) ([]byte, error) {
	src, err := Decode(data)
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := src.At(x, y).RGBA()
			// Composite over white, 16-bit channels.
			cr := blendOverWhite(r, a)
			cg := blendOverWhite(g, a)
			cb := blendOverWhite(b, a)
			// Luma approximation is enough for a binary mask.
			luma := (cr + cg + cb) / 3
			v := uint8(255)
			if luma>>8 < maskThreshold {
				v = 0
			}
			out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: v})
		}
	}

	return EncodePNG(out)
}

func blendOverWhite(c, a uint32) uint32 {
	// c is alpha-premultiplied; white contributes (0xffff - a).
	return c + (0xffff - a)
}

// FitWithin downscales img so neither side exceeds maxSide, preserving
// aspect ratio. Images already within bounds are returned re-encoded but
// unscaled. CatmullRom keeps edits usable after heavy downscaling.
func FitWithin(data []byte, maxSide int) ([]byte, int, int, error) {
	src, err := Decode(data)
	if err != nil {
		return nil, 0, 0, err
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxSide && h <= maxSide {
		out, err := EncodePNG(src)
		return out, w, h, err
	}

	nw, nh := w, h
	if w > h {
		nw = maxSide
		nh = h * maxSide / w
	} else {
		nh = maxSide
		nw = w * maxSide / h
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	out, err := EncodePNG(dst)
	return out, nw, nh, err
}

// Expand places the source image on a white canvas of targetW x targetH
// at the given fractional position (0 puts it at the left/top edge,
// 1 at the right/bottom edge) and returns the expanded canvas together
// with its preserve mask: black where the original pixels sit, white in
// the extended region.
func Expand(data []byte, targetW, targetH int, hPos, vPos float64) (canvas, mask []byte, err error) {
	src, err := Decode(data)
	if err != nil {
		return nil, nil, err
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > targetW || h > targetH {
		return nil, nil, fmt.Errorf("imaging: source %dx%d exceeds target canvas %dx%d", w, h, targetW, targetH)
	}
	hPos = clamp01(hPos)
	vPos = clamp01(vPos)

	x := int(float64(targetW-w) * hPos)
	y := int(float64(targetH-h) * vPos)
	placed := image.Rect(x, y, x+w, y+h)

	out := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, placed, src, bounds.Min, draw.Src)

	maskImg := image.NewGray(image.Rect(0, 0, targetW, targetH))
	draw.Draw(maskImg, maskImg.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(maskImg, placed, image.NewUniform(color.Black), image.Point{}, draw.Src)

	canvas, err = EncodePNG(out)
	if err != nil {
		return nil, nil, err
	}
	mask, err = EncodePNG(maskImg)
	if err != nil {
		return nil, nil, err
	}
	return canvas, mask, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
