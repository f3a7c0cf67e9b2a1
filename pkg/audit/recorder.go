package audit

import (
	"context"
	"time"

	"github.com/decred/slog"
)

// Recorder logs every entry and forwards it to the configured sinks. Sink
// failures are logged and never fail the request being audited.
type Recorder struct {
	sinks []Sink
	log   slog.Logger
	now   func() time.Time
}

// NewRecorder creates a recorder writing to sinks
func NewRecorder(log slog.Logger, sinks ...Sink) *Recorder {
	if log == nil {
		log = slog.Disabled
	}
	return &Recorder{sinks: sinks, log: log, now: time.Now}
}

// Record assigns the entry a request id, fills in a missing timestamp,
// logs the entry and ingests it into every sink.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	entry.fill(r.now())

	switch entry.Result.Outcome {
	case OutcomeSuccess:
		r.log.Infof("AUDIT request=%s client_request=%s solver=%s intent=%s payment=%s amount=%d result=success duration=%dms",
			entry.RequestID, entry.ClientRequestID, entry.SolverAddress, entry.IntentHash, entry.PaymentID,
			entry.AmountCents, entry.DurationMs)
	case OutcomeRejected:
		r.log.Warnf("AUDIT request=%s client_request=%s solver=%s intent=%s amount=%d result=rejected reason=%q duration=%dms",
			entry.RequestID, entry.ClientRequestID, entry.SolverAddress, entry.IntentHash, entry.AmountCents,
			entry.Result.Reason, entry.DurationMs)
	default:
		r.log.Errorf("AUDIT request=%s client_request=%s solver=%s intent=%s amount=%d result=error message=%q duration=%dms",
			entry.RequestID, entry.ClientRequestID, entry.SolverAddress, entry.IntentHash, entry.AmountCents,
			entry.Result.Message, entry.DurationMs)
	}

	for _, sink := range r.sinks {
		if err := sink.Ingest(ctx, entry); err != nil {
			r.log.Errorf("Failed to write audit entry %s: %v", entry.RequestID, err)
		}
	}
}
