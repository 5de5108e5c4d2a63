package studio

import "context"

// Image is a single decoded output image.
type Image struct {
	// Data holds the raw encoded image bytes as returned by the model,
	// always PNG for Nova Canvas.
	Data []byte

	Width  int
	Height int
}

// Result holds the outcome of one generation call.
type Result struct {
	Images []Image

	// FilterReason carries the endpoint's explanation when some or all
	// requested images were withheld, e.g. by the content filter.
	FilterReason string
}

// Count returns the number of produced images.
func (r *Result) Count() int {
	return len(r.Images)
}

// Invoker is the outbound port to the hosted image model. Implementations
// perform exactly one synchronous remote call per Generate invocation;
// there is no retry, batching or queueing behind this interface.
type Invoker interface {
	Generate(ctx context.Context, req *Request) (*Result, error)
}
