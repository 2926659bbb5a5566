package api

import (
	"errors"
	"net/http"

	"postframe/queue-api/model"
	"postframe/queue-api/service"
	"postframe/queue-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type queueAddBody struct {
	Email     string          `json:"email"`
	ImageData model.ImageData `json:"imageData"`
}

func (a *API) QueueAdd(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data queueAddBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	if data.ImageData.URL == "" || data.ImageData.Name == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "imageData must include url and name",
			"requestID": requestID,
		})
		return
	}

	item, err := a.Queue.Register(c.Request.Context(), data.Email, data.ImageData)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "User not found",
				"requestID": requestID,
			})
		case errors.Is(err, service.ErrUserNotVerified):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":     "User not verified",
				"requestID": requestID,
			})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Failed to queue image",
				"requestID": requestID,
			})

			zap.L().Error("Failed to queue image", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"queueItem": item,
	})
}
