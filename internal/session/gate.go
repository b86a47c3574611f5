package session

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"whatsapp-relay/internal/wa"
)

// State is the current position of the bridge session lifecycle.
type State string

const (
	StateStarting      State = "starting"
	StateWaitingQR     State = "waiting_qr"
	StateAuthenticated State = "authenticated"
	StateReady         State = "ready"
	StateDisconnected  State = "disconnected"
	StateAuthFailed    State = "auth_failure"
)

// Gate is the readiness gate for outbound sends. It is driven exclusively by
// lifecycle events from the messaging client and read by every request
// handler, so all access goes through a read-write lock.
//
// Authentication failure is terminal: the session cannot recover without
// re-pairing, so the gate records the failure and closes Done instead of
// killing the process itself. The supervisor in cmd/server decides what to do.
type Gate struct {
	mu    sync.RWMutex
	state State
	info  *wa.ClientInfo
	fatal error

	done     chan struct{}
	doneOnce sync.Once
	log      zerolog.Logger
}

func NewGate(log zerolog.Logger) *Gate {
	return &Gate{
		state: StateStarting,
		done:  make(chan struct{}),
		log:   log.With().Str("component", "session").Logger(),
	}
}

// Apply advances the state machine for one lifecycle event. Events arriving
// after a terminal auth failure are ignored.
func (g *Gate) Apply(ev wa.Event) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == StateAuthFailed {
		return
	}

	switch ev.Type {
	case wa.EventQR:
		g.state = StateWaitingQR
		g.log.Info().Msg("QR code received, waiting for scan")
	case wa.EventAuthenticated:
		g.state = StateAuthenticated
		g.log.Info().Msg("session authenticated")
	case wa.EventReady:
		g.state = StateReady
		g.info = ev.Info
		g.log.Info().Msg("client is ready")
	case wa.EventDisconnected:
		g.state = StateDisconnected
		g.info = nil
		g.log.Warn().Str("reason", ev.Reason).Msg("client disconnected")
	case wa.EventAuthFailure:
		g.state = StateAuthFailed
		g.info = nil
		g.fatal = fmt.Errorf("session authentication failed: %s", ev.Reason)
		g.log.Error().Str("reason", ev.Reason).Msg("authentication failed")
		g.doneOnce.Do(func() { close(g.done) })
	}
}

// Ready reports whether sends may be attempted.
func (g *Gate) Ready() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state == StateReady
}

// Info returns the authenticated account details, or nil before readiness.
func (g *Gate) Info() *wa.ClientInfo {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.info
}

// State returns the current lifecycle state for status reporting.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Fatal returns the terminal error, or nil while the session is usable.
func (g *Gate) Fatal() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.fatal
}

// Done is closed when the gate reaches its terminal state.
func (g *Gate) Done() <-chan struct{} {
	return g.done
}
