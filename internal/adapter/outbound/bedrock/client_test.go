package bedrock

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imagestudio/server/internal/domain/studio"
	"github.com/imagestudio/server/internal/shared/logger"
)

// stubInvoker implements ModelInvoker in memory.
type stubInvoker struct {
	calls int
	last  *bedrockruntime.InvokeModelInput
	fn    func(*bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error)
}

func (s *stubInvoker) InvokeModel(_ context.Context, in *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	s.calls++
	s.last = in
	return s.fn(in)
}

func newTestClient(stub *stubInvoker, cfg *Config) *Client {
	log := logger.New(&logger.Config{Level: "error", Output: io.Discard})
	return NewWithInvoker(stub, cfg, log, nil)
}

func textImageRequest() *studio.Request {
	return &studio.Request{
		Kind:     studio.TaskTextImage,
		Prompt:   "a red bicycle",
		Count:    1,
		Width:    512,
		Height:   512,
		CFGScale: 6.5,
	}
}

func TestClient_Generate(t *testing.T) {
	t.Run("returns the endpoint's image bytes", func(t *testing.T) {
		want := pngBytes(t, 512, 512)
		stub := &stubInvoker{fn: func(*bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error) {
			return &bedrockruntime.InvokeModelOutput{Body: responseBody(t, "", want)}, nil
		}}
		client := newTestClient(stub, nil)

		result, err := client.Generate(context.Background(), textImageRequest())
		require.NoError(t, err)
		require.Equal(t, 1, result.Count())
		assert.Equal(t, want, result.Images[0].Data)

		assert.Equal(t, 1, stub.calls)
		require.NotNil(t, stub.last.ModelId)
		assert.Equal(t, "amazon.nova-canvas-v1:0", *stub.last.ModelId)
		assert.Equal(t, "application/json", *stub.last.ContentType)
	})

	t.Run("invalid request never reaches the endpoint", func(t *testing.T) {
		stub := &stubInvoker{fn: func(*bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error) {
			t.Fatal("endpoint must not be called")
			return nil, nil
		}}
		client := newTestClient(stub, nil)

		req := textImageRequest()
		req.Prompt = "   "
		_, err := client.Generate(context.Background(), req)
		assert.ErrorIs(t, err, studio.ErrInvalidRequest)
		assert.Zero(t, stub.calls)
	})

	t.Run("api errors surface as model errors", func(t *testing.T) {
		stub := &stubInvoker{fn: func(*bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"}
		}}
		client := newTestClient(stub, nil)

		_, err := client.Generate(context.Background(), textImageRequest())
		var modelErr *studio.ModelError
		require.ErrorAs(t, err, &modelErr)
		assert.Contains(t, modelErr.Message, "slow down")
	})

	t.Run("filtered result passes through", func(t *testing.T) {
		stub := &stubInvoker{fn: func(*bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error) {
			return &bedrockruntime.InvokeModelOutput{Body: responseBody(t, "content filtered")}, nil
		}}
		client := newTestClient(stub, nil)

		_, err := client.Generate(context.Background(), textImageRequest())
		assert.ErrorIs(t, err, studio.ErrNoImages)
	})
}

func TestClient_Breaker(t *testing.T) {
	t.Run("opens after consecutive failures", func(t *testing.T) {
		stub := &stubInvoker{fn: func(*bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error) {
			return nil, errors.New("connection reset")
		}}
		cfg := DefaultConfig()
		cfg.FailureThreshold = 3
		client := newTestClient(stub, cfg)

		for i := 0; i < 3; i++ {
			_, err := client.Generate(context.Background(), textImageRequest())
			require.Error(t, err)
		}
		require.Equal(t, 3, stub.calls)

		// Open breaker fails fast without touching the endpoint.
		_, err := client.Generate(context.Background(), textImageRequest())
		assert.ErrorIs(t, err, studio.ErrModelUnavailable)
		assert.Equal(t, 3, stub.calls)
	})

	t.Run("filtered results do not trip the breaker", func(t *testing.T) {
		stub := &stubInvoker{fn: func(*bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error) {
			return &bedrockruntime.InvokeModelOutput{Body: responseBody(t, "filtered")}, nil
		}}
		cfg := DefaultConfig()
		cfg.FailureThreshold = 2
		client := newTestClient(stub, cfg)

		for i := 0; i < 5; i++ {
			_, err := client.Generate(context.Background(), textImageRequest())
			require.ErrorIs(t, err, studio.ErrNoImages)
		}
		assert.Equal(t, 5, stub.calls)
	})
}
