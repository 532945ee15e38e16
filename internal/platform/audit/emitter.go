package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sink persists audit events. Implementations must be safe for
// concurrent use.
type Sink interface {
	Append(ctx context.Context, ev Event) error
}

// Emitter writes audit events to a sink and always to the structured
// log. Emit never returns an error: a failing sink must not turn a
// completed business operation into a failure, so sink errors are
// logged and swallowed.
type Emitter struct {
	sink   Sink
	logger zerolog.Logger
}

// NewEmitter builds an emitter. sink may be nil, in which case events
// land only in the log.
func NewEmitter(sink Sink, logger zerolog.Logger) *Emitter {
	return &Emitter{sink: sink, logger: logger}
}

// Emit records one event synchronously. Events from a single goroutine
// are persisted in the order they were emitted.
func (e *Emitter) Emit(ctx context.Context, ev Event) {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	if e.sink != nil {
		if err := e.sink.Append(ctx, ev); err != nil {
			e.logger.Error().Err(err).
				Str("audit_id", ev.ID.String()).
				Str("action", ev.Action).
				Msg("audit sink append failed")
		}
	}

	entry := e.logger.Info()
	if ev.Outcome == OutcomeEmergency {
		entry = e.logger.Warn()
	}
	entry.
		Str("audit_id", ev.ID.String()).
		Str("actor", ev.Actor).
		Strs("roles", ev.Roles).
		Str("action", ev.Action).
		Str("outcome", string(ev.Outcome)).
		Str("subject_id", ev.SubjectID).
		Str("detail", ev.Detail).
		Str("request_id", ev.RequestID).
		Msg("audit")
}
