package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestProbe(t *testing.T) {
	t.Run("reports dimensions", func(t *testing.T) {
		w, h, err := Probe(encode(t, solid(40, 30, color.White)))
		require.NoError(t, err)
		assert.Equal(t, 40, w)
		assert.Equal(t, 30, h)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, _, err := Probe([]byte("nope"))
		assert.ErrorIs(t, err, ErrInvalidImage)
	})
}

func TestBinarizeMask(t *testing.T) {
	t.Run("opaque strokes become black, rest white", func(t *testing.T) {
		// Transparent canvas with an opaque black stroke square.
		canvas := image.NewRGBA(image.Rect(0, 0, 20, 20))
		for y := 5; y < 10; y++ {
			for x := 5; x < 10; x++ {
				canvas.Set(x, y, color.RGBA{A: 255})
			}
		}

		out, err := BinarizeMask(encode(t, canvas))
		require.NoError(t, err)

		mask := decodePNG(t, out)
		r, _, _, _ := mask.At(7, 7).RGBA()
		assert.Zero(t, r, "stroke pixel should be black")

		r, _, _, _ = mask.At(0, 0).RGBA()
		assert.EqualValues(t, 0xffff, r, "untouched pixel should be white")
	})

	t.Run("untouched canvas yields an all-white mask", func(t *testing.T) {
		// A capture with no strokes must not select any edit region.
		canvas := image.NewRGBA(image.Rect(0, 0, 8, 8))

		out, err := BinarizeMask(encode(t, canvas))
		require.NoError(t, err)

		mask := decodePNG(t, out)
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				r, _, _, _ := mask.At(x, y).RGBA()
				require.EqualValues(t, 0xffff, r)
			}
		}
	})

	t.Run("faint strokes below threshold stay white", func(t *testing.T) {
		canvas := image.NewRGBA(image.Rect(0, 0, 4, 4))
		canvas.Set(1, 1, color.RGBA{A: 40}) // mostly transparent black

		out, err := BinarizeMask(encode(t, canvas))
		require.NoError(t, err)

		mask := decodePNG(t, out)
		r, _, _, _ := mask.At(1, 1).RGBA()
		assert.EqualValues(t, 0xffff, r)
	})
}

func TestFitWithin(t *testing.T) {
	t.Run("large landscape image downscaled preserving aspect", func(t *testing.T) {
		out, w, h, err := FitWithin(encode(t, solid(2048, 1024, color.White)), 1024)
		require.NoError(t, err)
		assert.Equal(t, 1024, w)
		assert.Equal(t, 512, h)

		pw, ph, err := Probe(out)
		require.NoError(t, err)
		assert.Equal(t, w, pw)
		assert.Equal(t, h, ph)
	})

	t.Run("large portrait image downscaled preserving aspect", func(t *testing.T) {
		_, w, h, err := FitWithin(encode(t, solid(512, 2048, color.White)), 1024)
		require.NoError(t, err)
		assert.Equal(t, 256, w)
		assert.Equal(t, 1024, h)
	})

	t.Run("small image untouched", func(t *testing.T) {
		_, w, h, err := FitWithin(encode(t, solid(640, 480, color.White)), 1024)
		require.NoError(t, err)
		assert.Equal(t, 640, w)
		assert.Equal(t, 480, h)
	})
}

func TestExpand(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}

	t.Run("centered placement produces canvas and preserve mask", func(t *testing.T) {
		canvas, mask, err := Expand(encode(t, solid(256, 256, red)), 512, 512, 0.5, 0.5)
		require.NoError(t, err)

		img := decodePNG(t, canvas)
		assert.Equal(t, 512, img.Bounds().Dx())
		assert.Equal(t, 512, img.Bounds().Dy())

		// Center holds the original, corners are white fill.
		r, _, _, _ := img.At(256, 256).RGBA()
		assert.EqualValues(t, 0xffff, r)
		_, g, _, _ := img.At(256, 256).RGBA()
		assert.Zero(t, g)

		m := decodePNG(t, mask)
		r, _, _, _ = m.At(256, 256).RGBA()
		assert.Zero(t, r, "original region is black in the mask")
		r, _, _, _ = m.At(0, 0).RGBA()
		assert.EqualValues(t, 0xffff, r, "extended region is white in the mask")
	})

	t.Run("top-left placement", func(t *testing.T) {
		_, mask, err := Expand(encode(t, solid(256, 256, red)), 512, 512, 0, 0)
		require.NoError(t, err)

		m := decodePNG(t, mask)
		r, _, _, _ := m.At(10, 10).RGBA()
		assert.Zero(t, r)
		r, _, _, _ = m.At(500, 500).RGBA()
		assert.EqualValues(t, 0xffff, r)
	})

	t.Run("source larger than target rejected", func(t *testing.T) {
		_, _, err := Expand(encode(t, solid(600, 600, red)), 512, 512, 0.5, 0.5)
		assert.Error(t, err)
	})

	t.Run("position clamped to unit range", func(t *testing.T) {
		_, _, err := Expand(encode(t, solid(256, 256, red)), 512, 512, -3, 7)
		assert.NoError(t, err)
	})
}
