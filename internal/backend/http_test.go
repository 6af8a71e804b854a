package backend

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/concave-dev/lumen/internal/batching"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workerConfig(url string) *Config {
	config := DefaultConfig()
	config.Kind = KindHTTP
	config.URL = url
	config.Model = "sdxl-turbo"
	config.Seed = 42
	config.Timeout = 5 * time.Second
	return config
}

// TestHTTPGenerator_GenerateBatch tests the worker request body and image decoding
func TestHTTPGenerator_GenerateBatch(t *testing.T) {
	var got generateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		images := make([]string, len(got.Prompts))
		for i, p := range got.Prompts {
			images[i] = base64.StdEncoding.EncodeToString([]byte("img:" + p))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(generateResponse{Images: images})
	}))
	defer server.Close()

	g := NewHTTPGenerator(workerConfig(server.URL))
	images, err := g.GenerateBatch(context.Background(), []batching.Prompt{
		{Text: "a cat"},
		{Text: "a dog", Style: "cubism"},
	}, 25)
	require.NoError(t, err)

	assert.Equal(t, []string{"a cat", "a dog in the style of cubism"}, got.Prompts)
	assert.Equal(t, 25, got.NumInferenceSteps)
	assert.Equal(t, "sdxl-turbo", got.Model)
	assert.Equal(t, int64(42), got.Seed)

	require.Len(t, images, 2)
	assert.Equal(t, "img:a cat", string(images[0]))
	assert.Equal(t, "img:a dog in the style of cubism", string(images[1]))
}

// TestHTTPGenerator_Errors tests worker failure modes
func TestHTTPGenerator_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "CUDA out of memory", http.StatusInternalServerError)
		}},
		{"bad base64", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"images":["%%%"]}`))
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"images":`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			g := NewHTTPGenerator(workerConfig(server.URL))
			_, err := g.GenerateBatch(context.Background(), []batching.Prompt{{Text: "x"}}, 20)
			assert.Error(t, err)
		})
	}
}

// TestHTTPGenerator_ContextDeadline tests that a slow worker is cut off by the context
func TestHTTPGenerator_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	g := NewHTTPGenerator(workerConfig(server.URL))
	_, err := g.GenerateBatch(ctx, []batching.Prompt{{Text: "slow"}}, 20)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestHTTPRemover_RemoveBackground tests the multipart upload and response passthrough
func TestHTTPRemover_RemoveBackground(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/remove-background", r.URL.Path)

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		data, err := io.ReadAll(file)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(append([]byte("cut:"), data...))
	}))
	defer server.Close()

	r := NewHTTPRemover(workerConfig(server.URL))
	out, err := r.RemoveBackground(context.Background(), []byte("pixels"))
	require.NoError(t, err)
	assert.Equal(t, "cut:pixels", string(out))
}

// TestHTTPRemover_Errors tests remover failure modes
func TestHTTPRemover_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}},
		{"empty body", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			r := NewHTTPRemover(workerConfig(server.URL))
			_, err := r.RemoveBackground(context.Background(), []byte("pixels"))
			assert.Error(t, err)
		})
	}
}

// dropAfterRead returns a worker handler that reads the request, counts it
// and closes the connection without answering
func dropAfterRead(t *testing.T, calls *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		_, _ = io.ReadAll(r.Body)

		conn, _, err := w.(http.Hijacker).Hijack()
		if err != nil {
			t.Errorf("hijack failed: %v", err)
			return
		}
		conn.Close()
	}
}

// TestHTTPGenerator_DeliveredBatchNotResent tests that a batch the worker
// received is not sent again when the connection drops before a response
func TestHTTPGenerator_DeliveredBatchNotResent(t *testing.T) {
	var calls int32
	server := httptest.NewServer(dropAfterRead(t, &calls))
	defer server.Close()

	g := NewHTTPGenerator(workerConfig(server.URL))
	_, err := g.GenerateBatch(context.Background(), []batching.Prompt{{Text: "once"}}, 20)
	require.Error(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

// TestHTTPRemover_RetriesDroppedConnection tests that the idempotent remover
// call is retried after a dropped connection
func TestHTTPRemover_RetriesDroppedConnection(t *testing.T) {
	var calls int32
	server := httptest.NewServer(dropAfterRead(t, &calls))
	defer server.Close()

	r := NewHTTPRemover(workerConfig(server.URL))
	_, err := r.RemoveBackground(context.Background(), []byte("pixels"))
	require.Error(t, err)

	assert.Greater(t, atomic.LoadInt32(&calls), int32(1))
}

// TestRetryPolicies tests which transport errors each policy retries
func TestRetryPolicies(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}

	tests := []struct {
		name        string
		err         error
		undelivered bool
		transport   bool
	}{
		{"connection refused", refused, true, true},
		{"dropped connection", io.EOF, false, true},
		{"deadline", context.DeadlineExceeded, false, false},
		{"cancelled", fmt.Errorf("post: %w", context.Canceled), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.undelivered, retryUndelivered(tt.err))
			assert.Equal(t, tt.transport, retryTransport(tt.err))
		})
	}
}
