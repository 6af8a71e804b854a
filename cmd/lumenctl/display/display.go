// Package display formats lumenctl output as aligned tables or indented
// JSON depending on --output.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/concave-dev/lumen/cmd/lumenctl/client"
	"github.com/concave-dev/lumen/cmd/lumenctl/config"
	"github.com/concave-dev/lumen/cmd/lumenctl/utils"
	"github.com/concave-dev/lumen/internal/logging"
	"github.com/dustin/go-humanize"
)

// out is where all display functions write. Tests replace it.
var out io.Writer = os.Stdout

// ImageResult describes one image request made by generate or remove-bg.
type ImageResult struct {
	Index    int           `json:"index"`
	Path     string        `json:"path,omitempty"`
	Bytes    int           `json:"bytes"`
	Cache    string        `json:"cache,omitempty"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

func encodeJSON(v any) {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		logging.Error("Failed to encode JSON: %v", err)
		fmt.Fprintln(out, "Error encoding JSON output")
	}
}

// DisplayHealth shows daemon health. Host resources are included when the
// daemon reports them.
func DisplayHealth(health *client.Health) {
	if config.Global.Output == "json" {
		encodeJSON(health)
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Status:\t%s\n", health.Status)
	fmt.Fprintf(w, "Version:\t%s\n", health.Version)
	if health.Instance != "" {
		fmt.Fprintf(w, "Instance:\t%s\n", health.Instance)
	}
	fmt.Fprintf(w, "Uptime:\t%s\n", health.Uptime)

	r := health.Resources
	if r == nil {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "CPU:\t%d cores, %.1f%% used\n", r.CPUCores, r.CPUUsage)
	fmt.Fprintf(w, "Memory:\t%s / %s (%.1f%%)\n",
		humanize.IBytes(r.MemoryUsed), humanize.IBytes(r.MemoryTotal), r.MemoryUsage)
	fmt.Fprintf(w, "Load:\t%.2f %.2f %.2f\n", r.Load1, r.Load5, r.Load15)
	if config.Global.Verbose {
		fmt.Fprintf(w, "Goroutines:\t%d\n", r.GoRoutines)
		fmt.Fprintf(w, "Go Heap:\t%s\n", humanize.IBytes(r.GoMemAlloc))
		fmt.Fprintf(w, "Host Uptime:\t%s\n", utils.FormatDuration(r.Uptime))
	}
}

// DisplayStats shows batching counters sorted by name, then cache hit rate.
func DisplayStats(stats *client.Stats) {
	if config.Global.Output == "json" {
		encodeJSON(stats)
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	names := make([]string, 0, len(stats.Batching))
	for name := range stats.Batching {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "COUNTER\tVALUE")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%s\n", name, humanize.Comma(stats.Batching[name]))
	}

	if stats.Cache == nil {
		fmt.Fprintf(w, "cache\tdisabled\n")
		return
	}

	total := stats.Cache.Hits + stats.Cache.Misses
	fmt.Fprintf(w, "cache_hits\t%s\n", humanize.Comma(stats.Cache.Hits))
	fmt.Fprintf(w, "cache_misses\t%s\n", humanize.Comma(stats.Cache.Misses))
	if total > 0 {
		fmt.Fprintf(w, "cache_hit_rate\t%.1f%%\n", float64(stats.Cache.Hits)*100/float64(total))
	}
}

// DisplayImageResults shows one row per image request.
func DisplayImageResults(results []ImageResult) {
	if config.Global.Output == "json" {
		encodeJSON(results)
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "#\tFILE\tSIZE\tCACHE\tTIME\tERROR")
	for _, r := range results {
		size, cache, errMsg := "-", r.Cache, r.Error
		if r.Error == "" {
			size = humanize.Bytes(uint64(r.Bytes))
			errMsg = "-"
		}
		if cache == "" {
			cache = "-"
		}
		path := r.Path
		if path == "" {
			path = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.Index, path, size, cache, r.Duration.Round(time.Millisecond), errMsg)
	}
}
