package audit

import "context"

// Sink receives audit entries. A sink only stores entries, it never
// answers queries.
type Sink interface {
	// Ingest stores one attestation outcome
	Ingest(ctx context.Context, entry Entry) error
}
