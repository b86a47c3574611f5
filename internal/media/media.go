package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrNoSource        = errors.New("media: either a URL or inline data is required")
	ErrMissingMime     = errors.New("media: mimetype is required for inline data")
	ErrInvalidEncoding = errors.New("media: invalid base64 data")
)

// maxDownloadBytes caps remote media downloads so a misbehaving URL cannot
// exhaust memory.
const maxDownloadBytes = 32 << 20

// Payload describes media before resolution: exactly one source must be set,
// either a remote URL or inline base64 data with an explicit mimetype.
type Payload struct {
	URL      string
	Data     string
	MimeType string
}

// Resolved is binary media ready to hand to the messaging client.
type Resolved struct {
	Data     []byte
	MimeType string
}

// Resolver turns a Payload into concrete bytes. Resolution happens once per
// batch, before any recipient is contacted, so a bad URL or broken encoding
// fails the whole request without partial sends.
type Resolver struct {
	client *http.Client
}

func NewResolver() *Resolver {
	return &Resolver{client: &http.Client{Timeout: 30 * time.Second}}
}

func (r *Resolver) Resolve(ctx context.Context, p Payload) (Resolved, error) {
	switch {
	case p.URL != "":
		return r.fetch(ctx, p)
	case p.Data != "":
		return decode(p)
	default:
		return Resolved{}, ErrNoSource
	}
}

func (r *Resolver) fetch(ctx context.Context, p Payload) (Resolved, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return Resolved{}, fmt.Errorf("media: invalid URL: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Resolved{}, fmt.Errorf("media: download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Resolved{}, fmt.Errorf("media: download failed: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return Resolved{}, fmt.Errorf("media: reading body: %w", err)
	}

	mimeType := p.MimeType
	if mimeType == "" {
		mimeType = resp.Header.Get("Content-Type")
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	return Resolved{Data: data, MimeType: mimeType}, nil
}

func decode(p Payload) (Resolved, error) {
	if p.MimeType == "" {
		return Resolved{}, ErrMissingMime
	}
	data, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return Resolved{}, ErrInvalidEncoding
	}
	return Resolved{Data: data, MimeType: p.MimeType}, nil
}
