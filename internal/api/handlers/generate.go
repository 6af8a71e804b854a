// Package handlers implements the HTTP handlers of the Lumen API. Handlers
// depend on small interfaces so they can be tested without a running
// batching pipeline or Redis.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/concave-dev/lumen/internal/backend"
	"github.com/concave-dev/lumen/internal/batching"
	"github.com/concave-dev/lumen/internal/cache"
	"github.com/concave-dev/lumen/internal/logging"
	"github.com/concave-dev/lumen/internal/validate"
	"github.com/gin-gonic/gin"
)

// Client-facing error messages. Backend details are logged, never returned.
const (
	MsgGenerationFailed = "Image generation failed. Please try again later."
	MsgRemovalFailed    = "Background removal failed. Please try again later."
	MsgInvalidFileType  = "Invalid file type. Only image files are allowed."
)

// ImageSubmitter generates one image through the batching pipeline.
type ImageSubmitter interface {
	Submit(ctx context.Context, prompt batching.Prompt) ([]byte, error)
}

// ImageCache is the subset of the Redis image cache the handler uses.
type ImageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, image []byte) error
}

// GenerateImageRequest is the body of POST /generate-image.
type GenerateImageRequest struct {
	TextPrompt string `json:"text_prompt" binding:"required,max=2000"`
	Style      string `json:"style" binding:"max=200"`
}

// GenerationSettings are the inputs besides the prompt that determine the
// generated image, and therefore its cache key.
type GenerationSettings struct {
	InferenceSteps int
	Model          string
}

// HandleGenerateImage returns a JPEG for the prompt in the request body.
// imageCache may be nil.
func HandleGenerateImage(submitter ImageSubmitter, imageCache ImageCache, settings GenerationSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GenerateImageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request body",
				"details": err.Error(),
			})
			return
		}

		if err := validate.PromptFormat(req.TextPrompt, req.Style); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid prompt",
				"details": err.Error(),
			})
			return
		}

		prompt := batching.Prompt{Text: req.TextPrompt, Style: req.Style}
		ctx := c.Request.Context()

		var key string
		if imageCache != nil {
			key = cache.Key(backend.StyledPrompt(prompt), settings.InferenceSteps, settings.Model)

			img, ok, err := imageCache.Get(ctx, key)
			if err != nil {
				logging.Warn("API: Image cache lookup failed: %v", err)
			} else if ok {
				c.Header("X-Cache", "HIT")
				c.Data(http.StatusOK, "image/jpeg", img)
				return
			}
		}

		img, err := submitter.Submit(ctx, prompt)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logging.Debug("API: Client went away before image was ready")
			} else {
				logging.Error("API: Image generation failed: %v", err)
			}
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": MsgGenerationFailed})
			return
		}

		if imageCache != nil {
			if err := imageCache.Set(ctx, key, img); err != nil {
				logging.Warn("API: Failed to cache generated image: %v", err)
			}
		}

		c.Header("X-Cache", "MISS")
		c.Data(http.StatusOK, "image/jpeg", img)
	}
}
