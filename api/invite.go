package api

import (
	"fmt"
	"net/http"
	"time"

	"postframe/queue-api/security"
	"postframe/queue-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type inviteBody struct {
	Email         string `json:"email"`
	Message       string `json:"message"`
	WorkspaceCode string `json:"workspaceCode"`
	SenderEmail   string `json:"senderEmail"`
}

func (a *API) Invite(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data inviteBody
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

	if data.WorkspaceCode == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "workspaceCode is missing",
			"requestID": requestID,
		})
		return
	}

	token := security.NewInviteToken(data.Email, data.WorkspaceCode, time.Now())
	inviteLink := fmt.Sprintf("%s/api/invite/accept?token=%s", a.Cfg.Host.PublicURL, token)

	// The link is returned either way so the inviter can pass it along
	// manually when mail delivery is down
	emailSent := true
	if err := a.Mailer.SendInviteMail(data.Email, inviteLink, data.Message, data.SenderEmail); err != nil {
		emailSent = false
		zap.L().Error("Failed to send invite mail", zap.Error(err), zap.String("requestID", requestID))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"inviteLink": inviteLink,
		"emailSent":  emailSent,
	})
}
