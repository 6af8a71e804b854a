package backend

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// HTTPRemover forwards one image to <url>/remove-background as a multipart
// upload and returns the response body.
type HTTPRemover struct {
	client *resty.Client
}

// NewHTTPRemover creates a remover for the worker at config.URL.
func NewHTTPRemover(config *Config) *HTTPRemover {
	return &HTTPRemover{client: newWorkerClient(config, retryTransport)}
}

// RemoveBackground implements Remover.
func (r *HTTPRemover) RemoveBackground(ctx context.Context, image []byte) ([]byte, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetFileReader("file", "image", bytes.NewReader(image)).
		Post("/remove-background")

	if err != nil {
		return nil, fmt.Errorf("inference worker unreachable: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("inference worker returned status %d: %s", resp.StatusCode(), truncateBody(resp.String()))
	}

	if len(resp.Body()) == 0 {
		return nil, fmt.Errorf("inference worker returned an empty image")
	}

	return resp.Body(), nil
}
