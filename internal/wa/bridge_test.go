package wa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"whatsapp-relay/internal/media"
)

func TestBridgeSendText(t *testing.T) {
	var got sendPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/send" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer bridge-secret" {
			t.Errorf("missing bridge token, got %q", r.Header.Get("Authorization"))
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(sendResponse{ID: "3EB0ABC123"})
	}))
	defer srv.Close()

	b := NewBridge(srv.URL, "bridge-secret", zerolog.Nop())
	id, err := b.SendText(context.Background(), "51987654321", "hola")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "3EB0ABC123" {
		t.Fatalf("unexpected message id %q", id)
	}
	if got.To != "51987654321" || got.Body != "hola" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestBridgeSendMedia(t *testing.T) {
	var got sendPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/send-media" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(sendResponse{ID: "3EB0DEF456"})
	}))
	defer srv.Close()

	b := NewBridge(srv.URL, "", zerolog.Nop())
	m := media.Resolved{Data: []byte("png-bytes"), MimeType: "image/png"}
	if _, err := b.SendMedia(context.Background(), "51987654321", m, "caption"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded, err := base64.StdEncoding.DecodeString(got.Data)
	if err != nil || string(decoded) != "png-bytes" {
		t.Fatalf("media data not base64 encoded: %+v", got)
	}
	if got.MimeType != "image/png" || got.Caption != "caption" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestBridgeSendUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"session closed"}`, http.StatusBadGateway)
	}))
	defer srv.Close()

	b := NewBridge(srv.URL, "", zerolog.Nop())
	_, err := b.SendText(context.Background(), "51987654321", "hola")
	if err == nil {
		t.Fatal("expected error from upstream failure")
	}
	if !strings.Contains(err.Error(), "session closed") {
		t.Fatalf("error should carry the upstream body: %v", err)
	}
}

func TestBridgeEventsURL(t *testing.T) {
	cases := map[string]string{
		"http://localhost:3000":  "ws://localhost:3000/ws/events",
		"https://bridge.example": "wss://bridge.example/ws/events",
	}
	for base, want := range cases {
		b := NewBridge(base, "", zerolog.Nop())
		if got := b.eventsURL(); got != want {
			t.Errorf("eventsURL(%q) = %q, want %q", base, got, want)
		}
	}
}
