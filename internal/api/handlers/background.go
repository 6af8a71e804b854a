package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/concave-dev/lumen/internal/backend"
	"github.com/concave-dev/lumen/internal/logging"
	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
)

// HandleRemoveBackground strips the background from the multipart "file"
// upload and returns a JPEG. Uploads larger than maxBytes are rejected.
func HandleRemoveBackground(remover backend.Remover, maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Missing file upload",
				"details": err.Error(),
			})
			return
		}

		if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
			c.JSON(http.StatusBadRequest, gin.H{"error": MsgInvalidFileType})
			return
		}

		if maxBytes > 0 && file.Size > maxBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "File too large. Maximum size is " + humanize.IBytes(uint64(maxBytes)) + ".",
			})
			return
		}

		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Unreadable file upload",
				"details": err.Error(),
			})
			return
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Unreadable file upload",
				"details": err.Error(),
			})
			return
		}

		out, err := remover.RemoveBackground(c.Request.Context(), data)
		if err != nil {
			logging.Error("API: Background removal failed for %s (%s): %v",
				file.Filename, humanize.IBytes(uint64(len(data))), err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": MsgRemovalFailed})
			return
		}

		c.Data(http.StatusOK, "image/jpeg", out)
	}
}
