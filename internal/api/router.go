package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"whatsapp-relay/internal/config"
	"whatsapp-relay/internal/dispatch"
	"whatsapp-relay/internal/media"
	"whatsapp-relay/internal/recipient"
	"whatsapp-relay/internal/session"
	"whatsapp-relay/internal/ws"
)

// NewRouter wires the HTTP surface: the public status/pairing endpoints and
// the bearer-protected send and address book routes.
func NewRouter(cfg *config.Config, log zerolog.Logger, gate *session.Gate, parser *recipient.Parser, dispatcher *dispatch.Dispatcher, resolver *media.Resolver, hub *ws.Hub, db *gorm.DB) *gin.Engine {
	if !strings.EqualFold(cfg.AppEnv, "development") && !strings.EqualFold(cfg.AppEnv, "dev") {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(RequestID(), Logger(log), Recovery(log))

	statusHandler := NewStatusHandler(gate)
	sendHandler := NewSendHandler(gate, parser, dispatcher, resolver, hub, log)
	contactHandler := NewContactHandler(db, parser)

	r.GET("/status", statusHandler.GetStatus)
	r.GET("/ws", func(c *gin.Context) {
		hub.ServeWS(c.Writer, c.Request)
	})

	protected := r.Group("", Auth(cfg.APIToken))
	{
		protected.POST("/send-message", sendHandler.SendMessage)
		protected.POST("/send-media", sendHandler.SendMedia)

		protected.GET("/contacts", contactHandler.GetContacts)
		protected.POST("/contacts", contactHandler.CreateContact)
		protected.PUT("/contacts/:phone", contactHandler.UpdateContact)
		protected.DELETE("/contacts/:phone", contactHandler.DeleteContact)
	}

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "route not found")
	})

	return r
}
