package backend

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png"

	"github.com/concave-dev/lumen/internal/batching"
	"github.com/lucasb-eyer/go-colorful"
)

// PlaceholderSize is the edge length of generated placeholder images.
const PlaceholderSize = 256

const jpegQuality = 90

// PlaceholderGenerator renders one solid-color JPEG per prompt. The color is
// derived from the styled prompt, so identical prompts yield identical bytes.
type PlaceholderGenerator struct {
	size int
}

// NewPlaceholderGenerator creates a placeholder generator.
func NewPlaceholderGenerator() *PlaceholderGenerator {
	return &PlaceholderGenerator{size: PlaceholderSize}
}

// GenerateBatch implements batching.Backend. steps is ignored.
func (g *PlaceholderGenerator) GenerateBatch(ctx context.Context, prompts []batching.Prompt, steps int) ([][]byte, error) {
	images := make([][]byte, len(prompts))
	for i, p := range prompts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := g.render(StyledPrompt(p))
		if err != nil {
			return nil, fmt.Errorf("failed to render prompt %d: %w", i, err)
		}
		images[i] = img
	}
	return images, nil
}

func (g *PlaceholderGenerator) render(text string) ([]byte, error) {
	h := fnv.New32a()
	h.Write([]byte(text))
	sum := h.Sum32()

	fill := colorful.Hsv(float64(sum%360), 0.55, 0.85)

	img := image.NewRGBA(image.Rect(0, 0, g.size, g.size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: fill}, image.Point{}, draw.Src)

	return encodeJPEG(img)
}

// PlaceholderRemover does no segmentation. It decodes the upload, flattens
// any transparency onto white and re-encodes it as JPEG, which is the output
// format the service always returns.
type PlaceholderRemover struct{}

// NewPlaceholderRemover creates a placeholder remover.
func NewPlaceholderRemover() *PlaceholderRemover {
	return &PlaceholderRemover{}
}

// RemoveBackground implements Remover.
func (r *PlaceholderRemover) RemoveBackground(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return encodeJPEG(FlattenAlpha(src, color.White))
}

// FlattenAlpha composites src over a solid background, dropping the alpha
// channel. JPEG cannot carry transparency.
func FlattenAlpha(src image.Image, background color.Color) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
	return dst
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
