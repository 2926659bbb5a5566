package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type queueReorderBody struct {
	UserEmail string   `json:"userEmail"`
	NewOrder  []string `json:"newOrder"`
}

func (a *API) QueueReorder(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data queueReorderBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if data.UserEmail == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "userEmail is missing",
			"requestID": requestID,
		})
		return
	}

	if len(data.NewOrder) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "newOrder must be a non-empty array of record ids",
			"requestID": requestID,
		})
		return
	}

	for _, id := range data.NewOrder {
		if id == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "newOrder contains an empty record id",
				"requestID": requestID,
			})
			return
		}
	}

	if err := a.Queue.Reorder(c.Request.Context(), data.UserEmail, data.NewOrder); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to reorder queue",
			"requestID": requestID,
		})

		zap.L().Error("Failed to reorder queue", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
