package wa

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"whatsapp-relay/internal/media"
)

// FakeCall records a single send attempt against the fake client.
type FakeCall struct {
	To       string
	Body     string
	Caption  string
	MimeType string
	IsMedia  bool
}

// Fake is an in-memory Client for tests. Failures are scripted per recipient
// through FailWith; successful sends return generated message IDs.
type Fake struct {
	mu       sync.Mutex
	failures map[string]error
	calls    []FakeCall
	events   chan Event
}

func NewFake() *Fake {
	return &Fake{
		failures: make(map[string]error),
		events:   make(chan Event, 16),
	}
}

// FailWith makes every send to the given recipient return err.
func (f *Fake) FailWith(to string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[to] = err
}

// Calls returns a copy of all recorded send attempts.
func (f *Fake) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *Fake) SendText(ctx context.Context, to, body string) (string, error) {
	return f.record(FakeCall{To: to, Body: body})
}

func (f *Fake) SendMedia(ctx context.Context, to string, m media.Resolved, caption string) (string, error) {
	return f.record(FakeCall{To: to, Caption: caption, MimeType: m.MimeType, IsMedia: true})
}

func (f *Fake) record(call FakeCall) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if err := f.failures[call.To]; err != nil {
		return "", err
	}
	return uuid.NewString(), nil
}

func (f *Fake) Events() <-chan Event {
	return f.events
}

// Emit pushes a lifecycle event into the feed, as the bridge would.
func (f *Fake) Emit(ev Event) {
	f.events <- ev
}

func (f *Fake) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
