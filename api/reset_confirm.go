package api

import (
	"errors"
	"net/http"
	"time"

	"postframe/queue-api/model"
	"postframe/queue-api/security"
	"postframe/queue-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type resetConfirmBody struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (a *API) ResetConfirm(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data resetConfirmBody
	if err := c.ShouldBind(&data); err != nil || data.Token == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "token is missing",
			"requestID": requestID,
		})
		return
	}

	if err := validators.PasswordValidator(data.NewPassword); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	email, err := security.ParseResetToken(data.Token, time.Now())
	if err != nil {
		msg := "Invalid reset token"
		if errors.Is(err, security.ErrTokenExpired) {
			msg = "This reset link has expired"
		}

		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     msg,
			"requestID": requestID,
		})
		return
	}

	hash, err := a.Argon.GenerateFromPassword(data.NewPassword)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	res := a.DB.Model(model.User{}).
		Where("email = ?", email).
		Update("password_hash", hash)
	if res.Error != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update password", zap.Error(res.Error), zap.String("requestID", requestID))
		return
	}

	if res.RowsAffected == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid reset token",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
