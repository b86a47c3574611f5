package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"whatsapp-relay/internal/dispatch"
	"whatsapp-relay/internal/media"
	"whatsapp-relay/internal/recipient"
	"whatsapp-relay/internal/session"
	"whatsapp-relay/internal/ws"
)

type SendHandler struct {
	Gate       *session.Gate
	Parser     *recipient.Parser
	Dispatcher *dispatch.Dispatcher
	Resolver   *media.Resolver
	Hub        *ws.Hub
	Log        zerolog.Logger
}

func NewSendHandler(gate *session.Gate, parser *recipient.Parser, dispatcher *dispatch.Dispatcher, resolver *media.Resolver, hub *ws.Hub, log zerolog.Logger) *SendHandler {
	return &SendHandler{
		Gate:       gate,
		Parser:     parser,
		Dispatcher: dispatcher,
		Resolver:   resolver,
		Hub:        hub,
		Log:        log,
	}
}

type sendMessageRequest struct {
	Numbers string `json:"numbers"`
	Message string `json:"message"`
}

// SendMessage relays a text body to every valid number in the request.
func (h *SendHandler) SendMessage(c *gin.Context) {
	if !h.Gate.Ready() {
		fail(c, http.StatusServiceUnavailable, "client is not ready")
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Numbers == "" || req.Message == "" {
		fail(c, http.StatusBadRequest, "numbers and message are required")
		return
	}

	recipients := h.Parser.Parse(req.Numbers)
	if len(recipients) == 0 {
		fail(c, http.StatusBadRequest, "no valid numbers provided")
		return
	}

	// Deliberately detached from the request context: a client disconnect
	// must not abort a batch that has started sending.
	summary, err := h.Dispatcher.DispatchText(context.Background(), recipients, req.Message)
	if err != nil {
		if errors.Is(err, dispatch.ErrMessageTooLong) {
			fail(c, http.StatusRequestEntityTooLarge, "message exceeds maximum length")
			return
		}
		fail(c, http.StatusInternalServerError, "dispatch failed")
		return
	}

	h.Hub.NotifyDispatch("message", summary)
	respondSummary(c, summary)
}

type sendMediaRequest struct {
	Numbers     string `json:"numbers"`
	Caption     string `json:"caption"`
	MediaURL    string `json:"mediaUrl"`
	MediaBase64 string `json:"mediaBase64"`
	MimeType    string `json:"mimetype"`
}

// SendMedia relays one media payload to every valid number. The payload is
// resolved exactly once before dispatch; a resolution failure fails the
// whole batch with no partial sends.
func (h *SendHandler) SendMedia(c *gin.Context) {
	if !h.Gate.Ready() {
		fail(c, http.StatusServiceUnavailable, "client is not ready")
		return
	}

	var req sendMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Numbers == "" {
		fail(c, http.StatusBadRequest, "numbers is required")
		return
	}
	if req.MediaURL == "" && req.MediaBase64 == "" {
		fail(c, http.StatusBadRequest, "mediaUrl or mediaBase64 with mimetype is required")
		return
	}

	recipients := h.Parser.Parse(req.Numbers)
	if len(recipients) == 0 {
		fail(c, http.StatusBadRequest, "no valid numbers provided")
		return
	}

	resolved, err := h.Resolver.Resolve(c.Request.Context(), media.Payload{
		URL:      req.MediaURL,
		Data:     req.MediaBase64,
		MimeType: req.MimeType,
	})
	if err != nil {
		if errors.Is(err, media.ErrMissingMime) || errors.Is(err, media.ErrNoSource) {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		h.Log.Error().Err(err).Msg("media resolution failed")
		fail(c, http.StatusInternalServerError, "failed to resolve media")
		return
	}

	summary := h.Dispatcher.DispatchMedia(context.Background(), recipients, resolved, req.Caption)

	h.Hub.NotifyDispatch("media", summary)
	respondSummary(c, summary)
}

func respondSummary(c *gin.Context, summary dispatch.Summary) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"summary": summary,
		"results": gin.H{
			"sent":   summary.Sent,
			"failed": summary.Failed,
		},
	})
}
