package api

import (
	"errors"
	"net/http"

	"postframe/queue-api/model"
	"postframe/queue-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type bankMoveBody struct {
	Email         string           `json:"email"`
	RecordID      string           `json:"recordId"`
	PublishDate   string           `json:"publishDate"`
	PublishTime   string           `json:"publishTime"`
	ImageData     *model.ImageData `json:"imageData"`
	WorkspaceCode string           `json:"workspaceCode"`
}

func (a *API) BankMoveToQueue(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data bankMoveBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	// Each required field gets its own error so the client can point
	// at the exact omission
	if data.RecordID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "recordId is missing",
			"requestID": requestID,
		})
		return
	}

	if data.ImageData == nil || data.ImageData.URL == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "imageData is missing",
			"requestID": requestID,
		})
		return
	}

	if data.PublishDate == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "publishDate is missing",
			"requestID": requestID,
		})
		return
	}

	if data.PublishTime == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "publishTime is missing",
			"requestID": requestID,
		})
		return
	}

	item, err := a.Queue.Promote(c.Request.Context(), service.PromoteRequest{
		Email:         data.Email,
		BankID:        data.RecordID,
		PublishDate:   data.PublishDate,
		PublishTime:   data.PublishTime,
		Image:         *data.ImageData,
		WorkspaceCode: data.WorkspaceCode,
	})
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
				"error":     "Failed to move item to queue",
				"requestID": requestID,
			})

			zap.L().Error("Failed to move item to queue", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"queueItem": item,
	})
}
