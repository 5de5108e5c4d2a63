package bedrock

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imagestudio/server/internal/domain/studio"
)

// pngBytes encodes a solid-color PNG of the given size.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// responseBody marshals an endpoint response with the given images.
func responseBody(t *testing.T, errMsg string, images ...[]byte) []byte {
	t.Helper()
	encoded := make([]string, 0, len(images))
	for _, img := range images {
		encoded = append(encoded, base64.StdEncoding.EncodeToString(img))
	}
	body, err := json.Marshal(map[string]any{"images": encoded, "error": errMsg})
	require.NoError(t, err)
	return body
}

func TestDecodeResponse(t *testing.T) {
	t.Run("decodes every returned image", func(t *testing.T) {
		first := pngBytes(t, 512, 512)
		second := pngBytes(t, 512, 512)

		result, err := DecodeResponse(responseBody(t, "", first, second))
		require.NoError(t, err)
		require.Equal(t, 2, result.Count())

		assert.Equal(t, first, result.Images[0].Data)
		assert.Equal(t, second, result.Images[1].Data)
		assert.Equal(t, 512, result.Images[0].Width)
		assert.Equal(t, 512, result.Images[0].Height)
	})

	t.Run("empty images means filtered", func(t *testing.T) {
		_, err := DecodeResponse(responseBody(t, ""))
		assert.ErrorIs(t, err, studio.ErrNoImages)
	})

	t.Run("filter reason is carried", func(t *testing.T) {
		_, err := DecodeResponse(responseBody(t, "blocked by content filters"))
		require.ErrorIs(t, err, studio.ErrNoImages)
		assert.Contains(t, err.Error(), "blocked by content filters")
	})

	t.Run("malformed body", func(t *testing.T) {
		_, err := DecodeResponse([]byte("not json at all"))
		var modelErr *studio.ModelError
		require.ErrorAs(t, err, &modelErr)
	})

	t.Run("invalid base64 entry", func(t *testing.T) {
		body, err := json.Marshal(map[string]any{"images": []string{"%%%not-base64%%%"}})
		require.NoError(t, err)

		_, err = DecodeResponse(body)
		var modelErr *studio.ModelError
		require.ErrorAs(t, err, &modelErr)
	})

	t.Run("entry that is not an image", func(t *testing.T) {
		_, err := DecodeResponse(responseBody(t, "", []byte("plain text payload")))
		var modelErr *studio.ModelError
		require.ErrorAs(t, err, &modelErr)
	})
}
