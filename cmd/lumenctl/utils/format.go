package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FormatDuration renders a duration in its largest whole unit: "45s", "12m", "3h", "2d".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	} else if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	} else {
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// IndexedPath inserts a 1-based index before the extension of path:
// "out.jpg" becomes "out-2.jpg". A path without extension gets ".jpg".
func IndexedPath(path string, index int) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%s-%d%s", base, index, ext)
}
