package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"postframe/queue-api/cdn"
	"postframe/queue-api/service"
	"postframe/queue-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Non-technical messages shown when the CDN can't be reached. Keyed off
// the transport classification, never off error strings.
func uploadErrorMessage(kind cdn.Kind) string {
	switch kind {
	case cdn.KindConnReset:
		return "The connection was interrupted. Please check your connection and try again"
	case cdn.KindTimeout:
		return "The upload timed out. Please try again"
	case cdn.KindDNS:
		return "We couldn't reach the upload service. Please check your connection"
	}
	return "A network error occurred. Please check your connection and try again"
}

func (a *API) Upload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	if !strings.HasPrefix(c.Request.Header.Get("Content-Type"), "multipart/form-data") {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid multipart form",
			"requestID": requestID,
		})
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No file provided",
			"requestID": requestID,
		})
		return
	}

	fh := files[0]

	code, f, err := validators.ImageValidator(fh, a.Cfg.Upload.MaxSize)
	if err != nil {
		if code == http.StatusInternalServerError {
			zap.L().Error("Failed to validate file", zap.Error(err))
			err = errors.New("internal server error")
		}

		c.AbortWithStatusJSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to read uploaded file", zap.Error(err))
		return
	}

	if len(data) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "File is empty",
			"requestID": requestID,
		})
		return
	}

	start := time.Now()

	outcome, err := a.Pipeline.Run(c.Request.Context(), fh.Filename, data)
	if err != nil {
		if errors.Is(err, service.ErrBadImage) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "Failed to process image",
				"details":   err.Error(),
				"requestID": requestID,
			})
			return
		}

		kind := cdn.Kind(0)
		var cdnErr *cdn.Error
		if errors.As(err, &cdnErr) {
			kind = cdnErr.Kind
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     uploadErrorMessage(kind),
			"retryable": true,
			"requestID": requestID,
		})

		zap.L().Error("Upload failed",
			zap.String("kind", kind.String()),
			zap.Error(err),
			zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"imageUrl":          outcome.ImageURL,
		"originalFileName":  outcome.OriginalFileName,
		"processedFileName": outcome.ProcessedFileName,
		"originalFileSize":  outcome.OriginalFileSize,
		"processedFileSize": outcome.ProcessedFileSize,
		"processedFileType": outcome.ProcessedFileType,
		"compressionRatio":  outcome.CompressionRatio,
		"uploadTime":        time.Since(start).Milliseconds(),
		"requestID":         requestID,
	})
}
