// Package audit persists chat messages and room lifecycle events off the game path.
// Writes are best effort: a failed write is logged and counted, never retried.
package audit

import (
	"context"
	"time"

	"github.com/oxjadex/catchme--catchyou/metrics"
	"github.com/rs/zerolog/log"
)

const writeTimeout = 5 * time.Second

type Sink interface {
	AppendChatMessage(ctx context.Context, username, message string, at time.Time) error
	AppendGameEvent(ctx context.Context, event string, at time.Time) error
}

type entry struct {
	chat     bool
	username string
	text     string
	event    string
	at       time.Time
}

// Recorder queues entries and writes them to a Sink from a background goroutine.
type Recorder struct {
	sink  Sink
	queue chan entry
	now   func() time.Time
}

func NewRecorder(sink Sink, queueSize int) *Recorder {
	return &Recorder{
		sink:  sink,
		queue: make(chan entry, queueSize),
		now:   time.Now,
	}
}

func (r *Recorder) RecordChat(username, text string) {
	r.enqueue(entry{chat: true, username: username, text: text, at: r.now()})
}

func (r *Recorder) RecordEvent(event string) {
	r.enqueue(entry{event: event, at: r.now()})
}

func (r *Recorder) enqueue(e entry) {
	select {
	case r.queue <- e:
	default:
		metrics.AuditFailures.Inc()
		log.Warn().Bool("chat", e.chat).Str("event", e.event).Msg("audit queue full, dropping entry")
	}
}

// Run writes queued entries until ctx is done, then flushes what is left.
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case e := <-r.queue:
			r.write(ctx, e)
		case <-ctx.Done():
			r.flush()
			return
		}
	}
}

func (r *Recorder) flush() {
	ctx := context.Background()
	for {
		select {
		case e := <-r.queue:
			r.write(ctx, e)
		default:
			return
		}
	}
}

func (r *Recorder) write(ctx context.Context, e entry) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	var err error
	if e.chat {
		err = r.sink.AppendChatMessage(ctx, e.username, e.text, e.at)
	} else {
		err = r.sink.AppendGameEvent(ctx, e.event, e.at)
	}

	if err != nil {
		metrics.AuditFailures.Inc()
		log.Error().Err(err).Bool("chat", e.chat).Str("event", e.event).Msg("error saving audit entry")
	}
}

// Discard is a Sink for deployments without a database.
type Discard struct{}

func (Discard) AppendChatMessage(context.Context, string, string, time.Time) error { return nil }
func (Discard) AppendGameEvent(context.Context, string, time.Time) error           { return nil }
