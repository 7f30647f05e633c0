package objectstore

import (
	"encoding/base64"
	"fmt"
	"regexp"

	"github.com/dmitrijs2005/photogallery/internal/common"
)

// MaxContentTypeLength bounds the content type; it is stored in a
// VARCHAR(100) column.
const MaxContentTypeLength = 100

var envelopeRe = regexp.MustCompile(`^(?:data:)?([A-Za-z0-9+/.\-]+);base64,(.+)$`)

// Envelope is a parsed "<content-type>;base64,<payload>" upload string.
// A leading "data:" (as in data URLs) is accepted.
type Envelope struct {
	ContentType string
	Payload     string
	Body        []byte
}

// ParseEnvelope parses and decodes s. Any shape, content type length or
// base64 problem yields common.ErrInvalidPayloadFormat.
func ParseEnvelope(s string) (*Envelope, error) {
	m := envelopeRe.FindStringSubmatch(s)
	if m == nil || len(m[1]) > MaxContentTypeLength {
		return nil, common.ErrInvalidPayloadFormat
	}

	body, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidPayloadFormat, err)
	}

	return &Envelope{ContentType: m[1], Payload: m[2], Body: body}, nil
}

// EstimatedSize approximates the decoded size from the encoded length as
// floor(len*3/4). Padding is not subtracted.
func (e *Envelope) EstimatedSize() int64 {
	return int64(len(e.Payload)) * 3 / 4
}
