package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/concave-dev/lumen/cmd/lumenctl/client"
	"github.com/concave-dev/lumen/cmd/lumenctl/config"
	"github.com/concave-dev/lumen/cmd/lumenctl/display"
	"github.com/concave-dev/lumen/cmd/lumenctl/utils"
	"github.com/concave-dev/lumen/internal/logging"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Generator is the part of the API client generate needs.
type Generator interface {
	GenerateImage(prompt, style string) (*client.Image, error)
}

// HandleGenerate handles the generate command. With --count N the requests
// are sent concurrently so the daemon can batch them together.
func HandleGenerate(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	if err := config.ValidateGenerateFlags(); err != nil {
		return err
	}

	logging.Info("Requesting %d image(s) from API server", config.Generate.Count)

	api := client.CreateImageClient(config.Generate.Timeout)
	results := generateImages(api, config.Generate.Prompt, config.Generate.Style,
		config.Generate.Out, config.Generate.Count)

	display.DisplayImageResults(results)

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	if failed == len(results) && failed > 0 {
		return wrapConnectError(fmt.Errorf("all %d image request(s) failed: %s", failed, results[0].Error))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d image request(s) failed", failed, len(results))
	}

	logging.Success("Generated %d image(s)", len(results))
	return nil
}

// generateImages fires count requests at once and writes each image to its
// output path. A failed request does not cancel the others.
func generateImages(api Generator, prompt, style, out string, count int) []display.ImageResult {
	results := make([]display.ImageResult, count)

	var g errgroup.Group
	for i := 0; i < count; i++ {
		path := out
		if count > 1 {
			path = utils.IndexedPath(out, i+1)
		}

		g.Go(func() error {
			results[i] = generateOne(api, prompt, style, path, i+1)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func generateOne(api Generator, prompt, style, path string, index int) display.ImageResult {
	result := display.ImageResult{Index: index}

	img, err := api.GenerateImage(prompt, style)
	if err != nil {
		logging.Debug("Image request %d failed: %v", index, err)
		result.Error = err.Error()
		return result
	}

	result.Bytes = len(img.Data)
	result.Cache = img.Cache
	result.Duration = img.Duration

	if err := writeImage(path, img.Data); err != nil {
		result.Error = err.Error()
		return result
	}
	result.Path = path
	return result
}

// HandleRemoveBackground handles the remove-bg command
func HandleRemoveBackground(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	in := config.RemoveBg.In
	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("failed to read input image: %w", err)
	}

	out := config.RemoveBg.Out
	if out == "" {
		out = DefaultRemoveBgOutput(in)
	}

	logging.Info("Uploading %s to API server", in)

	api := client.CreateImageClient(config.RemoveBg.Timeout)
	img, err := api.RemoveBackground(filepath.Base(in), data)
	if err != nil {
		return wrapConnectError(err)
	}

	if err := writeImage(out, img.Data); err != nil {
		return err
	}

	display.DisplayImageResults([]display.ImageResult{{
		Index:    1,
		Path:     out,
		Bytes:    len(img.Data),
		Duration: img.Duration,
	}})

	logging.Success("Background removed: %s", out)
	return nil
}

// DefaultRemoveBgOutput derives "photo-nobg.jpg" from "photo.png".
func DefaultRemoveBgOutput(in string) string {
	return strings.TrimSuffix(in, filepath.Ext(in)) + "-nobg.jpg"
}

func writeImage(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
