package api

import (
	"errors"
	"net/http"
	"time"

	"postframe/queue-api/model"
	"postframe/queue-api/security"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (a *API) InviteAccept(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	token := c.Query("token")
	if token == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "token is missing",
			"requestID": requestID,
		})
		return
	}

	email, workspaceCode, err := security.ParseInviteToken(token, time.Now())
	if err != nil {
		msg := "Invalid invite token"
		if errors.Is(err, security.ErrTokenExpired) {
			msg = "This invite link has expired"
		}

		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     msg,
			"requestID": requestID,
		})
		return
	}

	// Workspace codes without a known experience type are kept as-is;
	// resolution happens lazily at promotion time
	var user model.User
	err = a.DB.Where("email = ?", email).First(&user).Error

	switch {
	case err == nil:
		user.WorkspaceCode = workspaceCode
		user.Verified = true

		if err := a.DB.Save(&user).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to update invited user", zap.Error(err), zap.String("requestID", requestID))
			return
		}

	case errors.Is(err, gorm.ErrRecordNotFound):
		userID, err := gonanoid.Generate(idCharset, 16)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to generate user ID", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		user = model.User{
			ID:            userID,
			Email:         email,
			WorkspaceCode: workspaceCode,
			Verified:      true,
		}

		if err := a.DB.Create(&user).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to create invited user", zap.Error(err), zap.String("requestID", requestID))
			return
		}

	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up invited user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"userId":        user.ID,
		"email":         user.Email,
		"workspaceCode": user.WorkspaceCode,
	})
}
