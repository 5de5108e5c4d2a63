package bedrock

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/imagestudio/server/internal/domain/studio"
	"github.com/imagestudio/server/internal/imaging"
)

// invokeResponse is the endpoint response body. On success Images holds
// base64-encoded PNGs; Error is set when some or all images were withheld,
// e.g. by the content filter.
type invokeResponse struct {
	Images []string `json:"images"`
	Error  string   `json:"error"`
}

// DecodeResponse turns the raw endpoint response body into a domain
// result. It decodes exactly the entries the endpoint reports: N wire
// entries yield N images, zero entries yield ErrNoImages, and anything
// that does not parse yields a ModelError without partial image data.
func DecodeResponse(body []byte) (*studio.Result, error) {
	var resp invokeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, studio.NewModelError("decode response", "malformed response body", err)
	}

	if len(resp.Images) == 0 {
		if resp.Error != "" {
			return nil, fmt.Errorf("%w: %s", studio.ErrNoImages, resp.Error)
		}
		return nil, studio.ErrNoImages
	}

	result := &studio.Result{
		Images:       make([]studio.Image, 0, len(resp.Images)),
		FilterReason: resp.Error,
	}
	for i, entry := range resp.Images {
		data, err := base64.StdEncoding.DecodeString(entry)
		if err != nil {
			return nil, studio.NewModelError("decode response",
				fmt.Sprintf("image %d is not valid base64", i), err)
		}
		w, h, err := imaging.Probe(data)
		if err != nil {
			return nil, studio.NewModelError("decode response",
				fmt.Sprintf("image %d is not a decodable image", i), err)
		}
		result.Images = append(result.Images, studio.Image{Data: data, Width: w, Height: h})
	}

	return result, nil
}
