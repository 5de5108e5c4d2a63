// Package bedrock adapts domain generation requests to the Amazon
// Bedrock runtime API: payload shaping, a single synchronous InvokeModel
// call and response decoding.
package bedrock

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
	"github.com/sony/gobreaker/v2"

	"github.com/imagestudio/server/internal/domain/studio"
	"github.com/imagestudio/server/internal/shared/logger"
	"github.com/imagestudio/server/internal/shared/metrics"
)

const contentTypeJSON = "application/json"

// ModelInvoker is the slice of the Bedrock runtime API the client uses.
type ModelInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Config holds the invoker configuration.
type Config struct {
	// ModelID is the Bedrock model identifier, e.g. amazon.nova-canvas-v1:0.
	ModelID string

	// Region is the AWS region where Bedrock is activated.
	Region string

	// Timeout bounds a single InvokeModel call.
	Timeout time.Duration

	// Breaker settings. The breaker never retries: it only fails fast
	// once the endpoint has proven unhealthy.
	FailureThreshold uint32
	BreakerTimeout   time.Duration
}

// DefaultConfig returns the default invoker configuration.
func DefaultConfig() *Config {
	return &Config{
		ModelID:          "amazon.nova-canvas-v1:0",
		Region:           "us-east-1",
		Timeout:          2 * time.Minute,
		FailureThreshold: 5,
		BreakerTimeout:   60 * time.Second,
	}
}

// Client invokes the hosted image model. It implements studio.Invoker.
type Client struct {
	api     ModelInvoker
	cfg     *Config
	breaker *gobreaker.CircuitBreaker[*studio.Result]
	log     *logger.Logger
	metrics *metrics.Metrics
}

// New creates a client backed by the real Bedrock runtime, resolving AWS
// credentials from the default chain.
func New(ctx context.Context, cfg *Config, log *logger.Logger, m *metrics.Metrics) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, studio.NewModelError("load aws config", "", err)
	}

	return NewWithInvoker(bedrockruntime.NewFromConfig(awsCfg), cfg, log, m), nil
}

// NewWithInvoker creates a client over an existing invoker. Tests use
// this with a stub.
func NewWithInvoker(api ModelInvoker, cfg *Config, log *logger.Logger, m *metrics.Metrics) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	breaker := gobreaker.NewCircuitBreaker[*studio.Result](gobreaker.Settings{
		Name:        "bedrock-invoke",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// A filtered result is a healthy endpoint saying no.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, studio.ErrNoImages)
		},
	})

	return &Client{
		api:     api,
		cfg:     cfg,
		breaker: breaker,
		log:     log,
		metrics: m,
	}
}

// Generate performs one synchronous model invocation for the request.
// The request is re-validated so an invalid request can never reach the
// remote endpoint through any code path.
func (c *Client) Generate(ctx context.Context, req *studio.Request) (*studio.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	payload, err := BuildPayload(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (*studio.Result, error) {
		return c.invoke(ctx, payload)
	})
	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = studio.ErrModelUnavailable
		}
		c.record(req.Kind, "error", duration, 0)
		c.log.ErrorContext(ctx, "model invocation failed",
			logger.String("task", req.Kind.String()),
			logger.String("model_id", c.cfg.ModelID),
			logger.Err(err),
		)
		return nil, err
	}

	c.record(req.Kind, "ok", duration, result.Count())
	c.log.InfoContext(ctx, "model invocation completed",
		logger.String("task", req.Kind.String()),
		logger.String("model_id", c.cfg.ModelID),
		logger.Int("images", result.Count()),
		logger.Int64("duration_ms", duration.Milliseconds()),
	)
	return result, nil
}

func (c *Client) invoke(ctx context.Context, payload []byte) (*studio.Result, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	out, err := c.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.cfg.ModelID),
		ContentType: aws.String(contentTypeJSON),
		Accept:      aws.String(contentTypeJSON),
		Body:        payload,
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return nil, studio.NewModelError("invoke model", apiErr.ErrorMessage(), err)
		}
		return nil, studio.NewModelError("invoke model", "", err)
	}

	return DecodeResponse(out.Body)
}

func (c *Client) record(kind studio.TaskKind, status string, d time.Duration, images int) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordGeneration(kind.String(), status, d, images)
}

// Compile-time interface check
var _ studio.Invoker = (*Client)(nil)
