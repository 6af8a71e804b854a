package commands

import (
	"github.com/concave-dev/lumen/cmd/lumenctl/config"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate images from a text prompt",
	Long: `Send a text prompt to lumend and save the resulting JPEG.

With --count N the requests are sent concurrently, so the daemon can put
them in the same batch. Outputs are numbered: --out fox.jpg --count 3
writes fox-1.jpg, fox-2.jpg and fox-3.jpg.`,
	Args: cobra.NoArgs,
}

var removeBgCmd = &cobra.Command{
	Use:   "remove-bg",
	Short: "Remove the background from an image",
	Long: `Upload an image to lumend and save the result as a JPEG with the
background replaced by white.`,
	Args: cobra.NoArgs,
}

// GetImageCommands returns the image command references
func GetImageCommands() (*cobra.Command, *cobra.Command) {
	return generateCmd, removeBgCmd
}

// SetupImageFlags configures flags for the image commands
func SetupImageFlags(genCmd, rmbgCmd *cobra.Command) {
	genCmd.Flags().StringVarP(&config.Generate.Prompt, "prompt", "p", "", "Text prompt")
	genCmd.Flags().StringVarP(&config.Generate.Style, "style", "s", "", "Style qualifier appended to the prompt")
	genCmd.Flags().StringVar(&config.Generate.Out, "out", "image.jpg", "Output file")
	genCmd.Flags().IntVarP(&config.Generate.Count, "count", "n", 1, "Number of concurrent requests")
	genCmd.Flags().IntVar(&config.Generate.Timeout, "image-timeout", config.DefaultImageTimeout,
		"Per-request timeout in seconds, including time spent waiting for a batch")
	genCmd.MarkFlagRequired("prompt")

	rmbgCmd.Flags().StringVar(&config.RemoveBg.In, "in", "", "Input image file")
	rmbgCmd.Flags().StringVar(&config.RemoveBg.Out, "out", "", "Output JPEG file (default <in>-nobg.jpg)")
	rmbgCmd.Flags().IntVar(&config.RemoveBg.Timeout, "image-timeout", config.DefaultImageTimeout,
		"Request timeout in seconds")
	rmbgCmd.MarkFlagRequired("in")
}
