package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/concave-dev/lumen/internal/batching"
	"github.com/concave-dev/lumen/internal/cache"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	mu      sync.Mutex
	prompts []batching.Prompt
	image   []byte
	err     error
}

func (f *fakeSubmitter) Submit(ctx context.Context, prompt batching.Prompt) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.image, f.err
}

func (f *fakeSubmitter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type memoryCache struct {
	data   map[string][]byte
	getErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	img, ok := m.data[key]
	return img, ok, nil
}

func (m *memoryCache) Set(ctx context.Context, key string, image []byte) error {
	m.data[key] = image
	return nil
}

var testSettings = GenerationSettings{InferenceSteps: 20, Model: "sdxl"}

func postGenerate(handler gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/generate-image", handler)

	req := httptest.NewRequest(http.MethodPost, "/generate-image", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestHandleGenerateImage_Success tests that the generated image is returned as JPEG
func TestHandleGenerateImage_Success(t *testing.T) {
	submitter := &fakeSubmitter{image: []byte{0xff, 0xd8, 0xff}}

	w := postGenerate(HandleGenerateImage(submitter, nil, testSettings),
		`{"text_prompt":"a red fox","style":"ukiyo-e"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, w.Body.Bytes())

	require.Len(t, submitter.prompts, 1)
	assert.Equal(t, batching.Prompt{Text: "a red fox", Style: "ukiyo-e"}, submitter.prompts[0])
}

// TestHandleGenerateImage_BadRequest tests request body validation
func TestHandleGenerateImage_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"text_prompt":`},
		{"missing prompt", `{"style":"noir"}`},
		{"blank prompt", `{"text_prompt":"   "}`},
		{"prompt too long", `{"text_prompt":"` + strings.Repeat("a", 2001) + `"}`},
		{"control characters", `{"text_prompt":"a\u0000b"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submitter := &fakeSubmitter{image: []byte("img")}

			w := postGenerate(HandleGenerateImage(submitter, nil, testSettings), tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, 0, submitter.calls())
		})
	}
}

// TestHandleGenerateImage_Failure tests that pipeline errors become 503 with a generic message
func TestHandleGenerateImage_Failure(t *testing.T) {
	submitter := &fakeSubmitter{err: &batching.BackendFailure{
		BatchID:      "b1",
		RequestCount: 4,
		Err:          errors.New("CUDA out of memory"),
	}}

	w := postGenerate(HandleGenerateImage(submitter, nil, testSettings), `{"text_prompt":"x"}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), MsgGenerationFailed)
	assert.NotContains(t, w.Body.String(), "CUDA")
}

// TestHandleGenerateImage_Cache tests that a repeated prompt is served from cache
func TestHandleGenerateImage_Cache(t *testing.T) {
	submitter := &fakeSubmitter{image: []byte("generated")}
	imageCache := newMemoryCache()
	handler := HandleGenerateImage(submitter, imageCache, testSettings)

	first := postGenerate(handler, `{"text_prompt":"a lighthouse","style":"oil painting"}`)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	key := cache.Key("a lighthouse in the style of oil painting", 20, "sdxl")
	assert.Equal(t, []byte("generated"), imageCache.data[key])

	second := postGenerate(handler, `{"text_prompt":"a lighthouse","style":"oil painting"}`)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, []byte("generated"), second.Body.Bytes())

	assert.Equal(t, 1, submitter.calls())
}

// TestHandleGenerateImage_CacheError tests that a broken cache falls through to generation
func TestHandleGenerateImage_CacheError(t *testing.T) {
	submitter := &fakeSubmitter{image: []byte("generated")}
	imageCache := newMemoryCache()
	imageCache.getErr = errors.New("connection reset")

	w := postGenerate(HandleGenerateImage(submitter, imageCache, testSettings), `{"text_prompt":"x"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, submitter.calls())
}
