package api

import (
	"net/http"

	"postframe/queue-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) QueueFetch(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	email := c.Query("email")
	if err := validators.EmailValidator(email); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	items, err := a.Queue.List(c.Request.Context(), email)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to fetch queue",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch queue", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"queueItems": items,
	})
}
