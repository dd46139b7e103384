package assertions

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/abdul-hamid-achik/stacke2e/packages/http"
	"github.com/xeipuuv/gojsonschema"
)

// MismatchError describes a failed check on a response.
type MismatchError struct {
	Check    string
	Message  string
	Response *http.NiceResponse
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s\n%s", e.Check, e.Message, e.Response)
}

func mismatch(resp *http.NiceResponse, check, format string, args ...any) error {
	return &MismatchError{Check: check, Message: fmt.Sprintf(format, args...), Response: resp}
}

// Status passes when the response status is one of codes.
func Status(resp *http.NiceResponse, codes ...int) error {
	if slices.Contains(codes, resp.Status()) {
		return nil
	}
	return mismatch(resp, "status", "expected %v, got %d", codes, resp.Status())
}

// Success passes for any 2xx status.
func Success(resp *http.NiceResponse) error {
	if resp.IsSuccess() {
		return nil
	}
	return mismatch(resp, "status", "expected 2xx, got %d", resp.Status())
}

func IsJSON(resp *http.NiceResponse) error {
	return kind(resp, http.BodyJSON)
}

func IsText(resp *http.NiceResponse) error {
	return kind(resp, http.BodyText)
}

func kind(resp *http.NiceResponse, want http.BodyKind) error {
	if resp.BodyKind() == want {
		return nil
	}
	return mismatch(resp, "body", "expected %s body, got %s (content-type %q)", want, resp.BodyKind(), resp.ContentType())
}

// Schema validates the JSON body against a JSON Schema document.
func Schema(resp *http.NiceResponse, schema []byte) error {
	body, ok := resp.JSON()
	if !ok {
		return mismatch(resp, "schema", "body is %s, not json", resp.BodyKind())
	}

	actualJSON, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(actualJSON)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if result.Valid() {
		return nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return mismatch(resp, "schema", "validation failed: %s", strings.Join(errs, "; "))
}

// SchemaFile is like Schema but reads the schema from path.
func SchemaFile(resp *http.NiceResponse, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}
	return Schema(resp, data)
}
