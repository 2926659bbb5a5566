package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Heartbeat answers HEAD probes so deploy tooling can tell the process
// is up without touching the database or the record store.
func (a *API) Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Validate only exists to run the JWT middleware; reaching it at all
// means the session cookie checked out.
func (a *API) Validate(c *gin.Context) {
	c.Status(http.StatusOK)
}
