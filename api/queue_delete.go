package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type queueDeleteBody struct {
	RecordID string `json:"recordId"`
}

func (a *API) QueueDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data queueDeleteBody
	if err := c.ShouldBind(&data); err != nil || data.RecordID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "recordId is missing",
			"requestID": requestID,
		})
		return
	}

	if err := a.Queue.Delete(c.Request.Context(), data.RecordID); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to delete queue item",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete queue item", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
