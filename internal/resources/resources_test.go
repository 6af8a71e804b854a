package resources

import (
	"runtime"
	"testing"
	"time"
)

// TestGatherHostResources tests the core resource gathering logic
func TestGatherHostResources(t *testing.T) {
	startTime := time.Now().Add(-time.Hour)

	resources := GatherHostResources(startTime)

	if time.Since(resources.Timestamp) > time.Minute {
		t.Error("GatherHostResources().Timestamp should be recent")
	}

	diff := resources.Uptime - time.Hour
	if diff < 0 || diff > 5*time.Second {
		t.Errorf("Uptime = %v, want about 1h", resources.Uptime)
	}

	if resources.CPUCores != runtime.NumCPU() {
		t.Errorf("CPUCores = %d, want %d", resources.CPUCores, runtime.NumCPU())
	}

	if resources.GoRoutines <= 0 {
		t.Errorf("GoRoutines = %d, want positive", resources.GoRoutines)
	}

	if resources.MemoryTotal == 0 {
		t.Error("MemoryTotal should be populated")
	}
}

// TestSampler_ReusesWithinTTL tests that snapshots are gathered once per TTL
func TestSampler_ReusesWithinTTL(t *testing.T) {
	calls := 0
	s := NewSampler(time.Now(), time.Hour)
	s.gather = func(start time.Time) *HostResources {
		calls++
		return &HostResources{CPUCores: calls}
	}

	first := s.Snapshot()
	second := s.Snapshot()

	if calls != 1 {
		t.Errorf("gather called %d times, want 1", calls)
	}
	if first.CPUCores != second.CPUCores {
		t.Errorf("snapshots differ within TTL: %d vs %d", first.CPUCores, second.CPUCores)
	}

	hits, misses := s.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats() = (%d, %d), want (1, 1)", hits, misses)
	}
}

// TestSampler_RefreshesAfterTTL tests that an expired snapshot is regathered
func TestSampler_RefreshesAfterTTL(t *testing.T) {
	calls := 0
	s := NewSampler(time.Now(), 0)
	s.gather = func(start time.Time) *HostResources {
		calls++
		return &HostResources{}
	}

	s.Snapshot()
	s.Snapshot()

	if calls != 2 {
		t.Errorf("gather called %d times, want 2", calls)
	}
}

// TestFormatDuration tests human-readable durations
func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{2500 * time.Millisecond, "2.5s"},
		{90 * time.Second, "1.5m"},
		{3 * time.Hour, "3.0h"},
		{48 * time.Hour, "2d"},
		{53 * time.Hour, "2d5h"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
