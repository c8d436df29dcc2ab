package mapper

import (
	"strings"

	"github.com/DanishBukhari/IntegWithGhl/internal/system/constants"
)

// CorrelationID is the CRM-minted contact id round-tripped through a job's
// free-text description. The zero value means "absent".
type CorrelationID struct {
	value string
}

// NewCorrelationID wraps a raw id, trimming surrounding whitespace.
func NewCorrelationID(raw string) CorrelationID {
	return CorrelationID{value: strings.TrimSpace(raw)}
}

func (c CorrelationID) IsPresent() bool {
	return c.value != ""
}

func (c CorrelationID) String() string {
	return c.value
}

// BuildJobDescription embeds a correlation id into free text using the fixed
// marker, placed on its own line after the text. An absent id returns the
// text unchanged. This is the exact inverse of ExtractCorrelationID.
func BuildJobDescription(id CorrelationID, freeText string) string {
	if !id.IsPresent() {
		return freeText
	}
	text := strings.TrimRight(freeText, "\n")
	if text == "" {
		return constants.CorrelationMarker + " " + id.value
	}
	return text + "\n\n" + constants.CorrelationMarker + " " + id.value
}

// ExtractCorrelationID scans a job description for the marker line and
// returns the embedded id. Marker absence yields the zero value, never an
// error; this link is the only connection between the two systems' records,
// so absence must degrade rather than fail.
func ExtractCorrelationID(description string) CorrelationID {
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, constants.CorrelationMarker) {
			return NewCorrelationID(strings.TrimPrefix(line, constants.CorrelationMarker))
		}
	}
	return CorrelationID{}
}
