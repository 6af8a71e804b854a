package handlers

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/concave-dev/lumen/cmd/lumenctl/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// barrierGenerator blocks every call until want calls are in flight
type barrierGenerator struct {
	want int

	mu      sync.Mutex
	arrived int
	ready   chan struct{}
	fail    map[int]bool
}

func newBarrierGenerator(want int) *barrierGenerator {
	return &barrierGenerator{want: want, ready: make(chan struct{}), fail: map[int]bool{}}
}

func (g *barrierGenerator) GenerateImage(prompt, style string) (*client.Image, error) {
	g.mu.Lock()
	g.arrived++
	n := g.arrived
	if n == g.want {
		close(g.ready)
	}
	g.mu.Unlock()

	select {
	case <-g.ready:
	case <-time.After(5 * time.Second):
		return nil, errors.New("requests were not concurrent")
	}

	if g.fail[n] {
		return nil, errors.New("API request failed with status 503: Image generation failed")
	}
	return &client.Image{Data: []byte(prompt), Cache: "MISS"}, nil
}

// TestGenerateImages_Concurrent tests that all requests are in flight together
// and each image lands in its own indexed file
func TestGenerateImages_Concurrent(t *testing.T) {
	dir := t.TempDir()
	gen := newBarrierGenerator(4)

	results := generateImages(gen, "a red fox", "", filepath.Join(dir, "fox.jpg"), 4)
	require.Len(t, results, 4)

	for i, r := range results {
		assert.Empty(t, r.Error)
		assert.Equal(t, i+1, r.Index)
		assert.Equal(t, "MISS", r.Cache)

		data, err := os.ReadFile(r.Path)
		require.NoError(t, err)
		assert.Equal(t, "a red fox", string(data))
	}
	assert.Equal(t, filepath.Join(dir, "fox-3.jpg"), results[2].Path)
}

// TestGenerateImages_Single tests that a single request keeps the path unchanged
func TestGenerateImages_Single(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "fox.jpg")

	results := generateImages(newBarrierGenerator(1), "a red fox", "", out, 1)
	require.Len(t, results, 1)
	assert.Equal(t, out, results[0].Path)
	assert.FileExists(t, out)
}

// TestGenerateImages_PartialFailure tests that one failure leaves the rest intact
func TestGenerateImages_PartialFailure(t *testing.T) {
	gen := newBarrierGenerator(3)
	gen.fail[2] = true

	results := generateImages(gen, "a red fox", "", filepath.Join(t.TempDir(), "fox.jpg"), 3)

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
			assert.Empty(t, r.Path)
		} else {
			assert.FileExists(t, r.Path)
		}
	}
	assert.Equal(t, 1, failed)
}

// TestDefaultRemoveBgOutput tests the derived output name
func TestDefaultRemoveBgOutput(t *testing.T) {
	assert.Equal(t, "photo-nobg.jpg", DefaultRemoveBgOutput("photo.png"))
	assert.Equal(t, "dir/cat-nobg.jpg", DefaultRemoveBgOutput("dir/cat.webp"))
	assert.Equal(t, "raw-nobg.jpg", DefaultRemoveBgOutput("raw"))
}
