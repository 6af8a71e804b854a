// Package client provides the HTTP client lumenctl uses to talk to lumend.
//
// LumenAPIClient wraps a Resty client configured with the CLI's timeout,
// a User-Agent carrying the lumenctl version, retries on connection errors
// only, and debug logging through the structured logger. Image endpoints
// return raw JPEG bytes; everything else is JSON.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/concave-dev/lumen/cmd/lumenctl/config"
	"github.com/concave-dev/lumen/cmd/lumenctl/utils"
	"github.com/concave-dev/lumen/internal/logging"
	"github.com/concave-dev/lumen/internal/netutil"
	"github.com/go-resty/resty/v2"
)

// HostResources mirrors the daemon's host snapshot in the health response.
type HostResources struct {
	CPUCores        int           `json:"cpuCores"`
	CPUUsage        float64       `json:"cpuUsage"`
	MemoryTotal     uint64        `json:"memoryTotal"`
	MemoryUsed      uint64        `json:"memoryUsed"`
	MemoryAvailable uint64        `json:"memoryAvailable"`
	MemoryUsage     float64       `json:"memoryUsage"`
	GoRoutines      int           `json:"goRoutines"`
	GoMemAlloc      uint64        `json:"goMemAlloc"`
	Uptime          time.Duration `json:"uptime"`
	Load1           float64       `json:"load1"`
	Load5           float64       `json:"load5"`
	Load15          float64       `json:"load15"`
}

// Health is the body of GET /api/v1/health.
type Health struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Version   string         `json:"version"`
	Instance  string         `json:"instance,omitempty"`
	Uptime    string         `json:"uptime"`
	Resources *HostResources `json:"resources,omitempty"`
}

// CacheStats is the cache section of the stats response.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// Stats is the body of GET /api/v1/stats.
type Stats struct {
	Timestamp time.Time        `json:"timestamp"`
	Batching  map[string]int64 `json:"batching"`
	Cache     *CacheStats      `json:"cache,omitempty"`
}

// Image is a JPEG returned by the daemon.
type Image struct {
	Data     []byte
	Cache    string // X-Cache header: HIT, MISS, or empty when caching is off
	Duration time.Duration
}

// errorBody is the JSON error shape every lumend endpoint uses.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// APIError is a non-2xx response from the daemon.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("API request failed with status %d: %s (%s)", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Message)
}

// LumenAPIClient talks to the lumend HTTP API.
type LumenAPIClient struct {
	client  *resty.Client
	baseURL string
}

// NewLumenAPIClient creates a client for the daemon at apiAddr. timeout is
// in seconds and bounds each request including retries' individual attempts.
func NewLumenAPIClient(apiAddr string, timeout int) *LumenAPIClient {
	client := resty.New()

	baseURL := fmt.Sprintf("http://%s/api/v1", apiAddr)

	client.SetLogger(utils.RestyLogger{})

	client.
		SetTimeout(time.Duration(timeout)*time.Second).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", fmt.Sprintf("lumenctl/%s", config.Version))

	client.
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// Only retry on connection errors, not HTTP errors
			return err != nil && IsConnectionRefusedError(err)
		})

	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logging.Debug("Making API request: %s %s", req.Method, req.URL)
		return nil
	})

	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logging.Debug("API response: %d %s (took %v)",
			resp.StatusCode(), resp.Status(), resp.Time())
		return nil
	})

	client.OnError(func(req *resty.Request, err error) {
		logging.Debug("API request failed: %s %s - %v", req.Method, req.URL, err)
	})

	return &LumenAPIClient{
		client:  client,
		baseURL: baseURL,
	}
}

// BaseURL returns the versioned API root the client targets.
func (api *LumenAPIClient) BaseURL() string {
	return api.baseURL
}

// GetHealth fetches daemon health and host resources.
func (api *LumenAPIClient) GetHealth() (*Health, error) {
	var health Health

	resp, err := api.client.R().
		SetResult(&health).
		Get("/health")
	if err != nil {
		return nil, api.connectError(err)
	}
	if resp.IsError() {
		return nil, parseAPIError(resp)
	}

	return &health, nil
}

// GetStats fetches batching counters and cache hit rates.
func (api *LumenAPIClient) GetStats() (*Stats, error) {
	var stats Stats

	resp, err := api.client.R().
		SetResult(&stats).
		Get("/stats")
	if err != nil {
		return nil, api.connectError(err)
	}
	if resp.IsError() {
		return nil, parseAPIError(resp)
	}

	return &stats, nil
}

// GenerateImage requests one image. The call blocks until the batch holding
// the prompt has been rendered.
func (api *LumenAPIClient) GenerateImage(prompt, style string) (*Image, error) {
	body := map[string]string{"text_prompt": prompt}
	if style != "" {
		body["style"] = style
	}

	resp, err := api.client.R().
		SetHeader("Accept", "image/jpeg").
		SetBody(body).
		Post("/generate-image")
	if err != nil {
		return nil, api.connectError(err)
	}
	if resp.IsError() {
		return nil, parseAPIError(resp)
	}

	return &Image{
		Data:     resp.Body(),
		Cache:    resp.Header().Get("X-Cache"),
		Duration: resp.Time(),
	}, nil
}

// RemoveBackground uploads an image and returns it as a JPEG on a white
// background. The part's content type is sniffed from data.
func (api *LumenAPIClient) RemoveBackground(fileName string, data []byte) (*Image, error) {
	contentType := http.DetectContentType(data)

	resp, err := api.client.R().
		SetHeader("Accept", "image/jpeg").
		SetMultipartField("file", fileName, contentType, bytes.NewReader(data)).
		Post("/remove-background")
	if err != nil {
		return nil, api.connectError(err)
	}
	if resp.IsError() {
		return nil, parseAPIError(resp)
	}

	return &Image{
		Data:     resp.Body(),
		Duration: resp.Time(),
	}, nil
}

func (api *LumenAPIClient) connectError(err error) error {
	return fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
}

// parseAPIError turns an error response into an APIError, falling back to
// the raw body when it is not the daemon's JSON error shape.
func parseAPIError(resp *resty.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode()}

	var body errorBody
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(resp.String())
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode())
	}
	return apiErr
}

// IsConnectionRefusedError reports whether err means nothing is listening
// at the target address.
func IsConnectionRefusedError(err error) bool {
	return netutil.IsConnectionRefusedError(err)
}

// CreateAPIClient creates a client for quick status calls using --timeout.
func CreateAPIClient() *LumenAPIClient {
	return NewLumenAPIClient(config.Global.APIAddr, config.Global.Timeout)
}

// CreateImageClient creates a client whose timeout covers a full batch
// wait. timeout is in seconds.
func CreateImageClient(timeout int) *LumenAPIClient {
	if timeout < config.Global.Timeout {
		timeout = config.Global.Timeout
	}
	return NewLumenAPIClient(config.Global.APIAddr, timeout)
}
