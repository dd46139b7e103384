package capture

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/stacke2e/packages/http"
	"github.com/tidwall/gjson"
)

const headerPrefix = "header:"

type Extractor struct {
	response *http.NiceResponse
	bodyJSON gjson.Result
}

func NewExtractor(resp *http.NiceResponse) *Extractor {
	e := &Extractor{
		response: resp,
	}
	if v, ok := resp.JSON(); ok {
		if data, err := json.Marshal(v); err == nil {
			e.bodyJSON = gjson.ParseBytes(data)
		}
	}
	return e
}

// Get resolves expr against the response. Supported forms are "status",
// "header:<name>", "body" and "body.<path>".
func (e *Extractor) Get(expr string) (any, bool) {
	switch {
	case expr == "status":
		return e.response.Status(), true
	case strings.HasPrefix(expr, headerPrefix):
		return e.extractFromHeader(strings.TrimPrefix(expr, headerPrefix))
	case expr == "body":
		return e.extractFromBody("")
	case strings.HasPrefix(expr, "body."):
		return e.extractFromBody(strings.TrimPrefix(expr, "body."))
	default:
		return nil, false
	}
}

// String is like Get but formats the value, returning "" when absent.
func (e *Extractor) String(expr string) string {
	v, ok := e.Get(expr)
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func (e *Extractor) extractFromBody(path string) (any, bool) {
	if !e.bodyJSON.Exists() {
		if path != "" {
			return nil, false
		}
		return e.response.Body(), true
	}

	if path == "" {
		return e.bodyJSON.Value(), true
	}

	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

func (e *Extractor) extractFromHeader(name string) (any, bool) {
	value := e.response.Header(name)
	if value == "" {
		return nil, false
	}
	return value, true
}

// ExtractAll resolves every named expression, skipping those that are absent.
func ExtractAll(resp *http.NiceResponse, exprs map[string]string) map[string]any {
	extractor := NewExtractor(resp)
	results := make(map[string]any)

	for name, expr := range exprs {
		if value, ok := extractor.Get(expr); ok {
			results[name] = value
		}
	}

	return results
}
