// Package middleware contains any custom middleware used in the app
package middleware

import (
	"postframe/queue-api/util"

	"github.com/gin-gonic/gin"
)

const requestIDLength = 10

// NewRequestIDMiddleware tags every request with a short random id that
// handlers echo in error bodies and logs, so one report can be traced
// through both.
func NewRequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("requestID", util.RandStr(requestIDLength))
		c.Next()
	}
}
