package wa

import (
	"context"

	"whatsapp-relay/internal/media"
)

// EventType identifies a session lifecycle signal from the bridge.
type EventType string

const (
	EventQR            EventType = "qr"
	EventAuthenticated EventType = "authenticated"
	EventReady         EventType = "ready"
	EventDisconnected  EventType = "disconnected"
	EventAuthFailure   EventType = "auth_failure"
)

// ClientInfo describes the account behind an authenticated session.
type ClientInfo struct {
	DisplayName string `json:"displayName"`
	PhoneNumber string `json:"phoneNumber"`
	Platform    string `json:"platform"`
}

// Event is a lifecycle signal emitted by the session bridge.
type Event struct {
	Type   EventType   `json:"type"`
	QR     string      `json:"qr,omitempty"`
	Reason string      `json:"reason,omitempty"`
	Info   *ClientInfo `json:"info,omitempty"`
}

// Sender is the outbound send capability of the messaging client. Both
// methods return the external message ID assigned by the upstream network.
type Sender interface {
	SendText(ctx context.Context, to string, body string) (string, error)
	SendMedia(ctx context.Context, to string, m media.Resolved, caption string) (string, error)
}

// Client is the full external messaging client: the send capability plus the
// lifecycle event feed. Run blocks consuming events from the bridge until the
// context is cancelled.
type Client interface {
	Sender
	Events() <-chan Event
	Run(ctx context.Context) error
}
