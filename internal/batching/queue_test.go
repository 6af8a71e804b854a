package batching

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func entry(id string) PendingEntry {
	return PendingEntry{RequestID: id, Prompt: Prompt{Text: "prompt " + id}}
}

// TestQueue_TryDrainUpTo tests drain bounds and FIFO order
func TestQueue_TryDrainUpTo(t *testing.T) {
	tests := []struct {
		name      string
		enqueued  int
		n         int
		wantIDs   []string
		wantAfter int
	}{
		{"empty queue", 0, 4, nil, 0},
		{"zero n", 3, 0, nil, 3},
		{"negative n", 3, -1, nil, 3},
		{"fewer than n", 2, 4, []string{"0", "1"}, 0},
		{"exactly n", 4, 4, []string{"0", "1", "2", "3"}, 0},
		{"more than n", 6, 4, []string{"0", "1", "2", "3"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue()
			for i := 0; i < tt.enqueued; i++ {
				q.Enqueue(entry(strconv.Itoa(i)))
			}

			batch := q.TryDrainUpTo(tt.n)

			var ids []string
			for _, e := range batch {
				ids = append(ids, e.RequestID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantAfter, q.Len())
		})
	}
}

// TestQueue_EnqueueWakes tests that Enqueue leaves exactly one wake token
func TestQueue_EnqueueWakes(t *testing.T) {
	q := NewQueue()

	select {
	case <-q.Wake():
		t.Fatal("wake token present before any enqueue")
	default:
	}

	q.Enqueue(entry("a"))
	q.Enqueue(entry("b"))

	select {
	case <-q.Wake():
	default:
		t.Fatal("expected wake token after enqueue")
	}

	select {
	case <-q.Wake():
		t.Fatal("wake channel should hold at most one token")
	default:
	}
}

// TestQueue_ConcurrentProducers tests that no entry is lost or duplicated
// under concurrent enqueue
func TestQueue_ConcurrentProducers(t *testing.T) {
	q := NewQueue()

	const producers = 10
	const perProducer = 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(entry(strconv.Itoa(p*perProducer + i)))
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for {
		batch := q.TryDrainUpTo(7)
		if len(batch) == 0 {
			break
		}
		require.LessOrEqual(t, len(batch), 7)
		for _, e := range batch {
			require.False(t, seen[e.RequestID], "duplicate entry %s", e.RequestID)
			seen[e.RequestID] = true
		}
	}

	assert.Len(t, seen, producers*perProducer)
	assert.Equal(t, 0, q.Len())
}

// TestQueue_FIFOProperty tests that draining in arbitrary chunk sizes returns
// entries in enqueue order
func TestQueue_FIFOProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 60).Draw(rt, "n")
		q := NewQueue()
		for i := 0; i < n; i++ {
			q.Enqueue(entry(strconv.Itoa(i)))
		}

		next := 0
		for {
			chunk := rapid.IntRange(1, 8).Draw(rt, "chunk")
			batch := q.TryDrainUpTo(chunk)
			if len(batch) == 0 {
				break
			}
			if len(batch) > chunk {
				rt.Fatalf("drained %d entries with n=%d", len(batch), chunk)
			}
			for _, e := range batch {
				if e.RequestID != strconv.Itoa(next) {
					rt.Fatalf("expected entry %d, got %s", next, e.RequestID)
				}
				next++
			}
		}

		if next != n {
			rt.Fatalf("drained %d entries, enqueued %d", next, n)
		}
	})
}
