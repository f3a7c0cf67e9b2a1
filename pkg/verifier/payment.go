package verifier

// Extraction names the path that produced a VerifiedPayment's fields.
type Extraction string

const (
	ExtractionStructured Extraction = "structured"
	ExtractionRedacted   Extraction = "redacted"
	ExtractionNone       Extraction = "none"
)

// VerifiedPayment is what an authenticated presentation discloses about a
// payment. Zero values mean the field was not disclosed.
type VerifiedPayment struct {
	ServerName string
	// Timestamp is the notarized session time in unix seconds.
	Timestamp uint64
	// ResponseBody is the disclosed response body the fields were read from.
	ResponseBody string

	TransactionID   string
	AmountCents     int64
	BeneficiaryIBAN string
	Status          string

	Extraction Extraction
	Notary     string
}

// paymentFields is the extraction result before session metadata is added.
type paymentFields struct {
	TransactionID   string
	AmountCents     int64
	BeneficiaryIBAN string
	Status          string
}

func (f paymentFields) empty() bool {
	return f == paymentFields{}
}
