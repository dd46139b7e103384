package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/abdul-hamid-achik/stacke2e/packages/http"
)

// JSONError is the JSON shape of a failed fetch.
type JSONError struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// JSONFormatter writes responses as indented JSON objects keyed status,
// headers, body.
type JSONFormatter struct {
	writer io.Writer
}

func NewJSONFormatter(w io.Writer) *JSONFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &JSONFormatter{writer: w}
}

func (f *JSONFormatter) FormatResponse(resp *http.NiceResponse) error {
	data, err := resp.MarshalJSON()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = f.writer.Write(buf.Bytes())
	return err
}

func (f *JSONFormatter) FormatError(err error) {
	kind := "error"
	switch {
	case http.IsTransportError(err):
		kind = "transport"
	case http.IsDecodeError(err):
		kind = "decode"
	}
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	_ = enc.Encode(JSONError{Error: err.Error(), Kind: kind})
}

// NewFormatter returns the formatter for format ("console" or "json").
func NewFormatter(format string, w io.Writer, noColor bool) (Formatter, error) {
	switch format {
	case "json":
		return NewJSONFormatter(w), nil
	case "console", "":
		return NewConsoleFormatter(WithWriter(w), WithNoColor(noColor)), nil
	default:
		return nil, fmt.Errorf("unknown output format: %q (supported: console, json)", format)
	}
}
