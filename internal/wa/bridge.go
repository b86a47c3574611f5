package wa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"whatsapp-relay/internal/media"
)

const reconnectDelay = 5 * time.Second

// Bridge talks to the external WhatsApp session bridge: REST endpoints for
// outbound sends and a websocket feed for lifecycle events (QR codes,
// ready/disconnected, authentication results).
type Bridge struct {
	baseURL string
	token   string
	http    *http.Client
	events  chan Event
	log     zerolog.Logger
}

func NewBridge(baseURL, token string, log zerolog.Logger) *Bridge {
	return &Bridge{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 60 * time.Second},
		events:  make(chan Event, 16),
		log:     log.With().Str("component", "bridge").Logger(),
	}
}

type sendPayload struct {
	To       string `json:"to"`
	Body     string `json:"body,omitempty"`
	Caption  string `json:"caption,omitempty"`
	MimeType string `json:"mimetype,omitempty"`
	Data     string `json:"data,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

func (b *Bridge) SendText(ctx context.Context, to, body string) (string, error) {
	return b.post(ctx, "/api/send", sendPayload{To: to, Body: body})
}

func (b *Bridge) SendMedia(ctx context.Context, to string, m media.Resolved, caption string) (string, error) {
	return b.post(ctx, "/api/send-media", sendPayload{
		To:       to,
		Caption:  caption,
		MimeType: m.MimeType,
		Data:     base64.StdEncoding.EncodeToString(m.Data),
	})
}

func (b *Bridge) post(ctx context.Context, path string, payload sendPayload) (string, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("bridge: %s - %s", resp.Status, string(respBody))
	}

	var sent sendResponse
	if err := json.Unmarshal(respBody, &sent); err != nil {
		return "", err
	}
	return sent.ID, nil
}

func (b *Bridge) Events() <-chan Event {
	return b.events
}

// Run maintains the websocket connection to the bridge's event feed,
// reconnecting after a delay whenever the connection drops. It returns once
// the context is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	for {
		if err := b.consume(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.log.Warn().Err(err).Msg("event feed disconnected, retrying")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (b *Bridge) consume(ctx context.Context) error {
	header := http.Header{}
	if b.token != "" {
		header.Set("Authorization", "Bearer "+b.token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, b.eventsURL(), header)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Unblock ReadJSON when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	b.log.Info().Msg("connected to bridge event feed")
	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			return err
		}
		select {
		case b.events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (b *Bridge) eventsURL() string {
	url := b.baseURL + "/ws/events"
	if strings.HasPrefix(url, "https://") {
		return "wss://" + strings.TrimPrefix(url, "https://")
	}
	return "ws://" + strings.TrimPrefix(url, "http://")
}
