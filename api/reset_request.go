package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"postframe/queue-api/model"
	"postframe/queue-api/security"
	"postframe/queue-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type resetRequestBody struct {
	Email string `json:"email"`
}

func (a *API) ResetRequest(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data resetRequestBody
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

	var user model.User
	if err := a.DB.Where("email = ?", data.Email).First(&user).Error; err != nil {
		// Don't reveal whether the address exists
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"success": true})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	token := security.NewResetToken(user.Email, time.Now())
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", a.Cfg.Host.PublicURL, token)

	if err := a.Mailer.SendResetMail(user.Email, resetLink); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to send reset email",
			"requestID": requestID,
		})

		zap.L().Error("Failed to send reset mail", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
