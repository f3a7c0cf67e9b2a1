package verifier

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"google.golang.org/protobuf/encoding/protowire"
)

// PresentationVersion is the only artifact version accepted.
const PresentationVersion = 1

// Presentation wire fields.
const (
	fieldVersion    protowire.Number = 1
	fieldServerName protowire.Number = 2
	fieldTime       protowire.Number = 3
	fieldSent       protowire.Number = 4
	fieldReceived   protowire.Number = 5
	fieldDisclosed  protowire.Number = 6
	fieldSignature  protowire.Number = 7

	fieldRangeStart protowire.Number = 1
	fieldRangeEnd   protowire.Number = 2
)

var commitmentTag = []byte("sage-attest/presentation/v1")

var (
	// ErrMalformedPresentation is returned for artifacts that do not decode.
	ErrMalformedPresentation = errors.New("malformed presentation")

	// ErrInvalidRanges is returned when disclosed ranges are out of bounds,
	// empty, unsorted or overlapping.
	ErrInvalidRanges = errors.New("invalid disclosed ranges")
)

// Range is a half-open byte range [Start, End) of the received transcript.
type Range struct {
	Start uint64
	End   uint64
}

// Presentation is a notarized TLS session with selectively disclosed
// received bytes. Bytes of Received outside Disclosed carry no meaning and
// are masked before use.
type Presentation struct {
	Version    uint64
	ServerName string
	// Time is the session time in unix seconds.
	Time      uint64
	Sent      []byte
	Received  []byte
	Disclosed []Range
	// Signature is the notary's r || s || v signature over Commitment.
	Signature []byte
}

// Marshal encodes the presentation in protobuf wire format.
func (p *Presentation) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, p.Version)
	b = protowire.AppendTag(b, fieldServerName, protowire.BytesType)
	b = protowire.AppendString(b, p.ServerName)
	b = protowire.AppendTag(b, fieldTime, protowire.VarintType)
	b = protowire.AppendVarint(b, p.Time)
	b = protowire.AppendTag(b, fieldSent, protowire.BytesType)
	b = protowire.AppendBytes(b, p.Sent)
	b = protowire.AppendTag(b, fieldReceived, protowire.BytesType)
	b = protowire.AppendBytes(b, p.Received)
	for _, r := range p.Disclosed {
		var rb []byte
		rb = protowire.AppendTag(rb, fieldRangeStart, protowire.VarintType)
		rb = protowire.AppendVarint(rb, r.Start)
		rb = protowire.AppendTag(rb, fieldRangeEnd, protowire.VarintType)
		rb = protowire.AppendVarint(rb, r.End)
		b = protowire.AppendTag(b, fieldDisclosed, protowire.BytesType)
		b = protowire.AppendBytes(b, rb)
	}
	if len(p.Signature) > 0 {
		b = protowire.AppendTag(b, fieldSignature, protowire.BytesType)
		b = protowire.AppendBytes(b, p.Signature)
	}
	return b
}

// DecodePresentation parses an artifact. Unknown fields are skipped.
func DecodePresentation(b []byte) (*Presentation, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty artifact", ErrMalformedPresentation)
	}

	p := &Presentation{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, wireError(protowire.ParseError(n))
		}
		b = b[n:]

		switch num {
		case fieldVersion, fieldTime:
			if typ != protowire.VarintType {
				return nil, wireTypeError(num, typ)
			}
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			if num == fieldVersion {
				p.Version = v
			} else {
				p.Time = v
			}
		case fieldServerName, fieldSent, fieldReceived, fieldSignature:
			if typ != protowire.BytesType {
				return nil, wireTypeError(num, typ)
			}
			var v []byte
			v, n = protowire.ConsumeBytes(b)
			switch num {
			case fieldServerName:
				p.ServerName = string(v)
			case fieldSent:
				p.Sent = append([]byte(nil), v...)
			case fieldReceived:
				p.Received = append([]byte(nil), v...)
			case fieldSignature:
				p.Signature = append([]byte(nil), v...)
			}
		case fieldDisclosed:
			if typ != protowire.BytesType {
				return nil, wireTypeError(num, typ)
			}
			var v []byte
			v, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				r, err := decodeRange(v)
				if err != nil {
					return nil, err
				}
				p.Disclosed = append(p.Disclosed, r)
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return nil, wireError(protowire.ParseError(n))
		}
		b = b[n:]
	}
	return p, nil
}

func decodeRange(b []byte) (Range, error) {
	var r Range
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return r, wireError(protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case (num == fieldRangeStart || num == fieldRangeEnd) && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			if num == fieldRangeStart {
				r.Start = v
			} else {
				r.End = v
			}
		case num == fieldRangeStart || num == fieldRangeEnd:
			return r, wireTypeError(num, typ)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return r, wireError(protowire.ParseError(n))
		}
		b = b[n:]
	}
	return r, nil
}

func wireError(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformedPresentation, err)
}

func wireTypeError(num protowire.Number, typ protowire.Type) error {
	return fmt.Errorf("%w: field %d has wire type %d", ErrMalformedPresentation, num, typ)
}

// ValidateRanges checks that disclosed ranges are non-empty, inside
// Received, sorted and non-overlapping.
func (p *Presentation) ValidateRanges() error {
	var prevEnd uint64
	for i, r := range p.Disclosed {
		if r.Start >= r.End || r.End > uint64(len(p.Received)) {
			return fmt.Errorf("%w: range %d [%d,%d) outside transcript of %d bytes",
				ErrInvalidRanges, i, r.Start, r.End, len(p.Received))
		}
		if i > 0 && r.Start < prevEnd {
			return fmt.Errorf("%w: range %d overlaps or precedes previous range", ErrInvalidRanges, i)
		}
		prevEnd = r.End
	}
	return nil
}

// Commitment is the hash the notary signs. It binds the session metadata,
// the sent bytes, the received length and every disclosed range with its
// content; masked bytes are not committed.
func (p *Presentation) Commitment() (common.Hash, error) {
	if err := p.ValidateRanges(); err != nil {
		return common.Hash{}, err
	}

	b := append([]byte(nil), commitmentTag...)
	b = binary.BigEndian.AppendUint64(b, p.Version)
	b = binary.BigEndian.AppendUint64(b, p.Time)
	b = appendLengthPrefixed(b, []byte(p.ServerName))
	b = appendLengthPrefixed(b, p.Sent)
	b = binary.BigEndian.AppendUint64(b, uint64(len(p.Received)))
	b = binary.BigEndian.AppendUint64(b, uint64(len(p.Disclosed)))
	for _, r := range p.Disclosed {
		b = binary.BigEndian.AppendUint64(b, r.Start)
		b = binary.BigEndian.AppendUint64(b, r.End)
		b = append(b, p.Received[r.Start:r.End]...)
	}
	return crypto.Keccak256Hash(b), nil
}

func appendLengthPrefixed(b, v []byte) []byte {
	b = binary.BigEndian.AppendUint64(b, uint64(len(v)))
	return append(b, v...)
}

// Masked returns the received transcript with every undisclosed byte
// replaced by RedactionSentinel. Ranges must be valid.
func (p *Presentation) Masked() []byte {
	out := make([]byte, len(p.Received))
	for i := range out {
		out[i] = RedactionSentinel
	}
	for _, r := range p.Disclosed {
		copy(out[r.Start:r.End], p.Received[r.Start:r.End])
	}
	return out
}
