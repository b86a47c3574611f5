package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"whatsapp-relay/internal/media"
	"whatsapp-relay/internal/recipient"
	"whatsapp-relay/internal/wa"
)

// ErrMessageTooLong rejects a text batch whose body exceeds the configured
// limit. The check is request-level: no recipient is contacted.
var ErrMessageTooLong = errors.New("dispatch: message exceeds maximum length")

// Sent records a successful delivery attempt for one recipient.
type Sent struct {
	Number    string `json:"number"`
	MessageID string `json:"messageId"`
}

// Failed records a failed delivery attempt for one recipient.
type Failed struct {
	Number string `json:"number"`
	Error  string `json:"error"`
}

// Summary aggregates the outcome of one batch. The sent and failed lists
// preserve the relative order of the input recipients, and
// TotalSent + TotalFailed always equals TotalRequested.
type Summary struct {
	TotalRequested int      `json:"totalRequested"`
	TotalSent      int      `json:"totalSent"`
	TotalFailed    int      `json:"totalFailed"`
	Sent           []Sent   `json:"-"`
	Failed         []Failed `json:"-"`
}

// Config tunes the dispatcher. Delay paces consecutive sends to stay under
// the upstream network's abuse heuristics; Concurrency above 1 enables a
// bounded worker pool instead of the default sequential loop.
type Config struct {
	MaxTextLength int
	Delay         time.Duration
	Concurrency   int
}

// Dispatcher sends one payload to many recipients, isolating per-recipient
// failures so a single rejection never aborts the rest of the batch. Sends
// are never retried within a batch.
type Dispatcher struct {
	sender wa.Sender
	cfg    Config
	log    zerolog.Logger
}

func New(sender wa.Sender, cfg Config, log zerolog.Logger) *Dispatcher {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Dispatcher{
		sender: sender,
		cfg:    cfg,
		log:    log.With().Str("component", "dispatch").Logger(),
	}
}

// DispatchText sends a text body to every recipient. Bodies longer than the
// configured maximum fail the whole request before any send is attempted.
func (d *Dispatcher) DispatchText(ctx context.Context, recipients []recipient.ID, body string) (Summary, error) {
	if d.cfg.MaxTextLength > 0 && utf8.RuneCountInString(body) > d.cfg.MaxTextLength {
		return Summary{}, ErrMessageTooLong
	}
	return d.run(ctx, recipients, func(ctx context.Context, to string) (string, error) {
		return d.sender.SendText(ctx, to, body)
	}), nil
}

// DispatchMedia sends already-resolved media to every recipient. Resolution
// happens upstream, once per batch, so the per-recipient loop only pays the
// send cost.
func (d *Dispatcher) DispatchMedia(ctx context.Context, recipients []recipient.ID, m media.Resolved, caption string) Summary {
	return d.run(ctx, recipients, func(ctx context.Context, to string) (string, error) {
		return d.sender.SendMedia(ctx, to, m, caption)
	})
}

type outcome struct {
	messageID string
	err       error
}

func (d *Dispatcher) run(ctx context.Context, recipients []recipient.ID, send func(context.Context, string) (string, error)) Summary {
	// Burst of one against the configured interval: the first send proceeds
	// immediately, every send after it waits out the delay.
	var limiter *rate.Limiter
	if d.cfg.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(d.cfg.Delay), 1)
	}

	outcomes := make([]outcome, len(recipients))
	if d.cfg.Concurrency > 1 {
		d.runPool(ctx, recipients, send, limiter, outcomes)
	} else {
		for i, id := range recipients {
			outcomes[i] = d.sendOne(ctx, string(id), send, limiter)
		}
	}

	summary := Summary{
		TotalRequested: len(recipients),
		Sent:           []Sent{},
		Failed:         []Failed{},
	}
	for i, id := range recipients {
		if outcomes[i].err != nil {
			summary.Failed = append(summary.Failed, Failed{Number: string(id), Error: outcomes[i].err.Error()})
			continue
		}
		summary.Sent = append(summary.Sent, Sent{Number: string(id), MessageID: outcomes[i].messageID})
	}
	summary.TotalSent = len(summary.Sent)
	summary.TotalFailed = len(summary.Failed)

	d.log.Info().
		Int("requested", summary.TotalRequested).
		Int("sent", summary.TotalSent).
		Int("failed", summary.TotalFailed).
		Msg("batch dispatched")
	return summary
}

func (d *Dispatcher) runPool(ctx context.Context, recipients []recipient.ID, send func(context.Context, string) (string, error), limiter *rate.Limiter, outcomes []outcome) {
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < d.cfg.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = d.sendOne(ctx, string(recipients[i]), send, limiter)
			}
		}()
	}
	for i := range recipients {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

func (d *Dispatcher) sendOne(ctx context.Context, to string, send func(context.Context, string) (string, error), limiter *rate.Limiter) outcome {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return outcome{err: err}
		}
	}

	id, err := send(ctx, to)
	if err != nil {
		d.log.Warn().Str("to", to).Err(err).Msg("send failed")
		return outcome{err: err}
	}
	return outcome{messageID: id}
}
