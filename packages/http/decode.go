package http

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// BodyKind selects how a response body is decoded.
type BodyKind int

const (
	// BodyRaw keeps the body as an opaque byte slice.
	BodyRaw BodyKind = iota
	// BodyJSON decodes the body as JSON into any.
	BodyJSON
	// BodyText decodes the body as UTF-8 text.
	BodyText
)

func (k BodyKind) String() string {
	switch k {
	case BodyJSON:
		return "json"
	case BodyText:
		return "text"
	default:
		return "raw"
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ClassifyContentType picks the body kind from a Content-Type value.
// Matching is by case-insensitive substring, checked in order:
// "application/json", then "text". Anything else, including an empty
// value, is raw.
func ClassifyContentType(contentType string) BodyKind {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "application/json"):
		return BodyJSON
	case strings.Contains(ct, "text"):
		return BodyText
	default:
		return BodyRaw
	}
}

// Decode converts data according to kind. JSON yields map[string]any,
// []any, string, float64, bool or nil; text yields a string with invalid
// UTF-8 replaced by U+FFFD; raw returns data as is.
func Decode(kind BodyKind, data []byte) (any, error) {
	switch kind {
	case BodyJSON:
		var v any
		if err := json.Unmarshal(bytes.TrimPrefix(data, utf8BOM), &v); err != nil {
			return nil, &DecodeError{Kind: kind, Err: err}
		}
		return v, nil
	case BodyText:
		data = bytes.TrimPrefix(data, utf8BOM)
		if utf8.Valid(data) {
			return string(data), nil
		}
		return strings.ToValidUTF8(string(data), "\uFFFD"), nil
	default:
		if data == nil {
			data = []byte{}
		}
		return data, nil
	}
}
