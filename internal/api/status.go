package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"whatsapp-relay/internal/session"
)

type StatusHandler struct {
	Gate *session.Gate
}

func NewStatusHandler(gate *session.Gate) *StatusHandler {
	return &StatusHandler{Gate: gate}
}

// GetStatus reports session readiness: 200 with client info once the session
// is ready, 503 with the current lifecycle state otherwise.
func (h *StatusHandler) GetStatus(c *gin.Context) {
	if !h.Gate.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success":    false,
			"status":     h.Gate.State(),
			"clientInfo": nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"status":     h.Gate.State(),
		"clientInfo": h.Gate.Info(),
	})
}
