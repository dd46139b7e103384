package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// NiceResponse is the normalized outcome of one request. The body shape is
// fixed by the Content-Type header at construction and never changes.
type NiceResponse struct {
	status  int
	headers http.Header
	kind    BodyKind
	body    any
}

// NewNiceResponse builds a response from already decoded parts. headers is
// copied. A raw body given as a string or nil is stored as a byte slice.
func NewNiceResponse(status int, headers http.Header, kind BodyKind, body any) *NiceResponse {
	if headers == nil {
		headers = http.Header{}
	}
	if kind == BodyRaw {
		switch b := body.(type) {
		case nil:
			body = []byte{}
		case string:
			body = []byte(b)
		}
	}
	return &NiceResponse{
		status:  status,
		headers: headers.Clone(),
		kind:    kind,
		body:    body,
	}
}

// NicifiableKeys is the presentation order of the response fields.
func (r *NiceResponse) NicifiableKeys() []string {
	return []string{"status", "headers", "body"}
}

func (r *NiceResponse) Status() int {
	return r.status
}

// Headers returns a copy of the response headers.
func (r *NiceResponse) Headers() http.Header {
	return r.headers.Clone()
}

// Header returns the first value of the named header, case-insensitively.
func (r *NiceResponse) Header(key string) string {
	return r.headers.Get(key)
}

func (r *NiceResponse) ContentType() string {
	return r.Header("Content-Type")
}

func (r *NiceResponse) BodyKind() BodyKind {
	return r.kind
}

// Body returns the decoded body: any for JSON, string for text, []byte for raw.
// Raw bodies are returned as a copy.
func (r *NiceResponse) Body() any {
	if b, ok := r.body.([]byte); ok {
		return bytes.Clone(b)
	}
	return r.body
}

// JSON returns the decoded JSON value and true when the body is JSON.
func (r *NiceResponse) JSON() (any, bool) {
	if r.kind != BodyJSON {
		return nil, false
	}
	return r.body, true
}

// Text returns the body text and true when the body is text.
func (r *NiceResponse) Text() (string, bool) {
	s, ok := r.body.(string)
	return s, ok && r.kind == BodyText
}

// Bytes returns a copy of the raw body and true when the body is raw.
func (r *NiceResponse) Bytes() ([]byte, bool) {
	b, ok := r.body.([]byte)
	if !ok {
		return nil, false
	}
	return bytes.Clone(b), true
}

func (r *NiceResponse) IsSuccess() bool {
	return r.status >= 200 && r.status < 300
}

func (r *NiceResponse) IsRedirect() bool {
	return r.status >= 300 && r.status < 400
}

func (r *NiceResponse) IsClientError() bool {
	return r.status >= 400 && r.status < 500
}

func (r *NiceResponse) IsServerError() bool {
	return r.status >= 500
}

// FlatHeaders returns lower-cased header names mapped to their values joined
// with ", ".
func (r *NiceResponse) FlatHeaders() map[string]string {
	flat := make(map[string]string, len(r.headers))
	for k, v := range r.headers {
		flat[strings.ToLower(k)] = strings.Join(v, ", ")
	}
	return flat
}

// SortedHeaderNames returns the lower-cased header names in order.
func (r *NiceResponse) SortedHeaderNames() []string {
	flat := r.FlatHeaders()
	names := make([]string, 0, len(flat))
	for k := range flat {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// FormatBody renders the body on one line.
func (r *NiceResponse) FormatBody() string {
	switch r.kind {
	case BodyJSON:
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Sprintf("%v", r.body)
		}
		return string(data)
	case BodyText:
		if text, ok := r.body.(string); ok {
			return strconv.Quote(text)
		}
		return fmt.Sprintf("%v", r.body)
	default:
		if raw, ok := r.body.([]byte); ok {
			return fmt.Sprintf("<%d bytes>", len(raw))
		}
		return fmt.Sprintf("%v", r.body)
	}
}

// String renders the response as status, headers, body in that order.
func (r *NiceResponse) String() string {
	var b strings.Builder
	b.WriteString("NiceResponse {\n")
	fmt.Fprintf(&b, "  status: %d,\n", r.status)

	flat := r.FlatHeaders()
	b.WriteString("  headers: {")
	for i, name := range r.SortedHeaderNames() {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, " %q: %q", name, flat[name])
	}
	if len(flat) > 0 {
		b.WriteString(" ")
	}
	b.WriteString("},\n")

	fmt.Fprintf(&b, "  body: %s,\n", r.FormatBody())
	b.WriteString("}")
	return b.String()
}

// MarshalJSON encodes the response with keys in presentation order.
// Raw bodies are base64 encoded.
func (r *NiceResponse) MarshalJSON() ([]byte, error) {
	headers, err := json.Marshal(r.FlatHeaders())
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(r.body)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"status":`)
	buf.WriteString(strconv.Itoa(r.status))
	buf.WriteString(`,"headers":`)
	buf.Write(headers)
	buf.WriteString(`,"body":`)
	buf.Write(body)
	buf.WriteString("}")
	return buf.Bytes(), nil
}
