package audit

import (
	"time"

	"github.com/google/uuid"
)

// Outcome classifies an attestation request.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeRejected Outcome = "rejected"
	OutcomeError    Outcome = "error"
)

// Result is the outcome of one request. Reason is set for rejections,
// Message for errors.
type Result struct {
	Outcome Outcome `json:"status"`
	Reason  string  `json:"reason,omitempty"`
	Message string  `json:"message,omitempty"`
}

// Success returns a successful result
func Success() Result { return Result{Outcome: OutcomeSuccess} }

// Rejected returns a rejection with the reason shown to the solver
func Rejected(reason string) Result { return Result{Outcome: OutcomeRejected, Reason: reason} }

// Failed returns an internal failure result
func Failed(message string) Result { return Result{Outcome: OutcomeError, Message: message} }

// Entry is a single audit record.
//
// RequestID is assigned by the Recorder and is unique per recorded entry.
// ClientRequestID is the correlation id seen on the wire, which callers
// control and may repeat.
type Entry struct {
	Timestamp       int64  `json:"timestamp"`
	RequestID       string `json:"request_id"`
	ClientRequestID string `json:"client_request_id,omitempty"`
	SolverAddress   string `json:"solver_address"`
	IntentHash      string `json:"intent_hash"`
	PaymentID       string `json:"payment_id,omitempty"`
	AmountCents     int64  `json:"amount_cents"`
	Result          Result `json:"result"`
	RequestIP       string `json:"request_ip,omitempty"`
	DurationMs      int64  `json:"duration_ms"`
}

// fill stamps a fresh request id and, when missing, the timestamp
func (e *Entry) fill(now time.Time) {
	if e.Timestamp == 0 {
		e.Timestamp = now.Unix()
	}
	e.RequestID = uuid.NewString()
}
