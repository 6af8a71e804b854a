// Package resources: cached host snapshots for the stats endpoint. Gathering
// CPU and memory figures through gopsutil is slow enough that polling clients
// share one snapshot per TTL.
package resources

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// FormatDuration formats a duration for humans.
// Examples: "250ms", "2.5s", "1.2m", "3.4h", "2d5h"
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d.Nanoseconds())/1e6)
	} else if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	} else if d < 24*time.Hour {
		return fmt.Sprintf("%.1fh", d.Hours())
	} else {
		days := int(d.Hours() / 24)
		hours := d.Hours() - float64(days*24)
		if hours < 1 {
			return fmt.Sprintf("%dd", days)
		}
		return fmt.Sprintf("%dd%.0fh", days, hours)
	}
}

// Sampler serves host snapshots, gathering a new one at most once per TTL.
type Sampler struct {
	startTime time.Time
	ttl       time.Duration
	gather    func(time.Time) *HostResources

	mu       sync.Mutex
	snapshot *HostResources
	takenAt  time.Time

	hits   int64
	misses int64
}

// NewSampler creates a sampler for a daemon started at startTime.
func NewSampler(startTime time.Time, ttl time.Duration) *Sampler {
	return &Sampler{
		startTime: startTime,
		ttl:       ttl,
		gather:    GatherHostResources,
	}
}

// Snapshot returns a snapshot no older than the TTL. Uptime is always
// current even when the rest of the snapshot is reused.
func (s *Sampler) Snapshot() HostResources {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil || time.Since(s.takenAt) >= s.ttl {
		atomic.AddInt64(&s.misses, 1)
		s.snapshot = s.gather(s.startTime)
		s.takenAt = time.Now()
	} else {
		atomic.AddInt64(&s.hits, 1)
	}

	snap := *s.snapshot
	snap.Uptime = time.Since(s.startTime)
	return snap
}

// Stats returns how many snapshots were reused and how many were gathered.
func (s *Sampler) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&s.hits), atomic.LoadInt64(&s.misses)
}
