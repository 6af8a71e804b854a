// Package backend implements the HTTP inference worker client.
//
// HTTPGenerator posts a whole batch of prompts to the worker in one request
// and expects one base64 image per prompt, in order. HTTPRemover uploads a
// single image for background removal.
//
// RETRY POLICY:
//   - Generation is retried only when the worker refused the connection, so a
//     batch that reached the worker is never generated twice
//   - Background removal is idempotent and is retried on any transport error
//   - HTTP error responses and context expiry are never retried
package backend

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/concave-dev/lumen/internal/batching"
	"github.com/concave-dev/lumen/internal/logging"
	"github.com/concave-dev/lumen/internal/netutil"
	"github.com/concave-dev/lumen/internal/version"
	"github.com/go-resty/resty/v2"
)

// restyLogger routes resty's internal logging through the structured logger.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) { logging.Error(format, v...) }
func (restyLogger) Warnf(format string, v ...interface{}) { logging.Warn(format, v...) }
func (restyLogger) Debugf(format string, v ...interface{}) { logging.Debug(format, v...) }

// retryPolicy decides whether a failed worker request may be sent again.
// HTTP error responses are never retried.
type retryPolicy func(err error) bool

// retryUndelivered retries only when the worker refused the connection, so
// the request body was never received. A batch is sent at most once.
func retryUndelivered(err error) bool {
	return netutil.IsConnectionRefusedError(err)
}

// retryTransport retries any transport failure except context expiry. Only
// idempotent requests may use it.
func retryTransport(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// newWorkerClient creates a resty client for the inference worker at
// config.URL. retry decides which transport errors are retried.
func newWorkerClient(config *Config, retry retryPolicy) *resty.Client {
	client := resty.New()
	client.SetLogger(restyLogger{})

	client.
		SetTimeout(config.Timeout).
		SetBaseURL(strings.TrimRight(config.URL, "/")).
		SetHeader("User-Agent", fmt.Sprintf("lumend/%s", version.LumendVersion))

	client.
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil && retry(err)
		})

	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logging.Debug("Backend: Worker request %s %s", req.Method, req.URL)
		return nil
	})

	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logging.Debug("Backend: Worker response %d (took %v)", resp.StatusCode(), resp.Time())
		return nil
	})

	return client
}

type generateRequest struct {
	Prompts           []string `json:"prompts"`
	NumInferenceSteps int      `json:"num_inference_steps"`
	Model             string   `json:"model"`
	Seed              int64    `json:"seed"`
}

type generateResponse struct {
	Images []string `json:"images"`
}

// HTTPGenerator sends each batch to an inference worker in one POST
// <url>/generate call and decodes the base64 images it returns.
type HTTPGenerator struct {
	client *resty.Client
	model  string
	seed   int64
}

// NewHTTPGenerator creates a generator for the worker at config.URL.
func NewHTTPGenerator(config *Config) *HTTPGenerator {
	return &HTTPGenerator{
		client: newWorkerClient(config, retryUndelivered),
		model:  config.Model,
		seed:   config.Seed,
	}
}

// GenerateBatch implements batching.Backend.
func (g *HTTPGenerator) GenerateBatch(ctx context.Context, prompts []batching.Prompt, steps int) ([][]byte, error) {
	var result generateResponse

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(generateRequest{
			Prompts:           StyledPrompts(prompts),
			NumInferenceSteps: steps,
			Model:             g.model,
			Seed:              g.seed,
		}).
		SetResult(&result).
		ForceContentType("application/json").
		Post("/generate")

	if err != nil {
		return nil, fmt.Errorf("inference worker unreachable: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("inference worker returned status %d: %s", resp.StatusCode(), truncateBody(resp.String()))
	}

	images := make([][]byte, len(result.Images))
	for i, encoded := range result.Images {
		img, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image %d: %w", i, err)
		}
		images[i] = img
	}

	return images, nil
}

// truncateBody keeps worker error bodies readable in logs.
func truncateBody(body string) string {
	const limit = 256
	if len(body) <= limit {
		return body
	}
	return body[:limit] + "..."
}
