package verifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/slog"

	"github.com/sage-x-project/sage-attest/pkg/attesterr"
)

// PresentationVerifier authenticates a presentation and extracts the
// payment it discloses
type PresentationVerifier interface {
	// Verify rejects presentations that fail authentication or come from a
	// server outside allowedServers. Missing payment fields are not an error.
	Verify(ctx context.Context, raw []byte, allowedServers []string) (*VerifiedPayment, error)
}

// DefaultPresentationVerifier implements PresentationVerifier
type DefaultPresentationVerifier struct {
	transcripts TranscriptVerifier
	roots       TrustRootProvider
	log         slog.Logger
}

// Option configures a DefaultPresentationVerifier
type Option func(*DefaultPresentationVerifier)

// WithTranscriptVerifier replaces the notary signature check
func WithTranscriptVerifier(tv TranscriptVerifier) Option {
	return func(v *DefaultPresentationVerifier) {
		v.transcripts = tv
	}
}

// WithLogger sets the verifier logger
func WithLogger(log slog.Logger) Option {
	return func(v *DefaultPresentationVerifier) {
		v.log = log
	}
}

// NewDefaultPresentationVerifier creates a verifier trusting roots
func NewDefaultPresentationVerifier(roots TrustRootProvider, opts ...Option) *DefaultPresentationVerifier {
	v := &DefaultPresentationVerifier{
		transcripts: NewNotarySignatureVerifier(),
		roots:       roots,
		log:         slog.Disabled,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify implements PresentationVerifier
func (v *DefaultPresentationVerifier) Verify(ctx context.Context, raw []byte, allowedServers []string) (*VerifiedPayment, error) {
	p, err := DecodePresentation(raw)
	if err != nil {
		return nil, attesterr.New(attesterr.KindVerification, "Invalid presentation format", err)
	}

	transcript, err := v.transcripts.Verify(ctx, p, v.roots)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, attesterr.New(attesterr.KindVerification, "Presentation verification failed", err)
	}

	if transcript.ServerName == "" {
		return nil, attesterr.Newf(attesterr.KindVerification, "Server name not found in presentation")
	}
	if len(transcript.Received) == 0 {
		return nil, attesterr.Newf(attesterr.KindVerification, "Transcript not found in presentation")
	}
	if !ServerAllowed(transcript.ServerName, allowedServers) {
		return nil, attesterr.Newf(attesterr.KindVerification, "Unexpected server: expected %s, got %s",
			strings.Join(allowedServers, ", "), transcript.ServerName)
	}

	payment := &VerifiedPayment{
		ServerName: transcript.ServerName,
		Timestamp:  transcript.Time,
		Notary:     transcript.Notary.Hex(),
		Extraction: ExtractionNone,
	}

	body, ok := ExtractBody(transcript.Received)
	if !ok {
		v.log.Debugf("No header/body separator in transcript from %s", transcript.ServerName)
		return payment, nil
	}

	payment.ResponseBody = string(body)
	if span, ok := jsonSpan(body); ok {
		if fields, ok := parseStructured(span); ok {
			payment.ResponseBody = string(span)
			payment.apply(fields, ExtractionStructured)
			return payment, nil
		}
	}

	if fields := parseRedacted(body); !fields.empty() {
		payment.apply(fields, ExtractionRedacted)
	}
	v.log.Debugf("Structured extraction failed for %s, redacted fallback used: %v",
		transcript.ServerName, payment.Extraction == ExtractionRedacted)

	return payment, nil
}

func (p *VerifiedPayment) apply(f paymentFields, how Extraction) {
	p.TransactionID = f.TransactionID
	p.AmountCents = f.AmountCents
	p.BeneficiaryIBAN = f.BeneficiaryIBAN
	p.Status = f.Status
	p.Extraction = how
}

// ServerAllowed reports whether server equals an allowed name or is a
// subdomain of one. Comparison ignores case and a trailing dot.
func ServerAllowed(server string, allowed []string) bool {
	server = normalizeHost(server)
	if server == "" {
		return false
	}
	for _, a := range allowed {
		a = normalizeHost(a)
		if a == "" {
			continue
		}
		if server == a || strings.HasSuffix(server, "."+a) {
			return true
		}
	}
	return false
}

func normalizeHost(h string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(h)), ".")
}

// String summarizes the payment for logs.
func (p *VerifiedPayment) String() string {
	return fmt.Sprintf("server=%s tx=%q amount_cents=%d iban=%q status=%q extraction=%s",
		p.ServerName, p.TransactionID, p.AmountCents, p.BeneficiaryIBAN, p.Status, p.Extraction)
}
