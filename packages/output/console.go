package output

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/abdul-hamid-achik/stacke2e/packages/http"
	"github.com/fatih/color"
)

// DefaultMaxBody is how many bytes of a raw body are previewed.
const DefaultMaxBody = 64

// Formatter writes a response or an error somewhere.
type Formatter interface {
	FormatResponse(resp *http.NiceResponse) error
	FormatError(err error)
}

type ConsoleFormatter struct {
	writer  io.Writer
	noColor bool
	maxBody int
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer:  os.Stdout,
		maxBody: DefaultMaxBody,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// WithMaxBody limits the raw body preview to n bytes.
func WithMaxBody(n int) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.maxBody = n
	}
}

func statusColor(status int) *color.Color {
	switch {
	case status >= 500:
		return color.New(color.FgRed, color.Bold)
	case status >= 400:
		return color.New(color.FgYellow, color.Bold)
	case status >= 300:
		return color.New(color.FgCyan, color.Bold)
	default:
		return color.New(color.FgGreen, color.Bold)
	}
}

func (f *ConsoleFormatter) FormatResponse(resp *http.NiceResponse) error {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s\n", bold("status:"), statusColor(resp.Status()).Sprint(resp.Status()))

	fmt.Fprintf(f.writer, "%s\n", bold("headers:"))
	flat := resp.FlatHeaders()
	for _, name := range resp.SortedHeaderNames() {
		fmt.Fprintf(f.writer, "  %s: %s\n", cyan(name), flat[name])
	}

	fmt.Fprintf(f.writer, "%s %s\n", bold("body:"), faint("("+resp.BodyKind().String()+")"))
	switch resp.BodyKind() {
	case http.BodyJSON:
		v, _ := resp.JSON()
		data, err := json.MarshalIndent(v, "  ", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(f.writer, "  %s\n", data)
	case http.BodyText:
		text, _ := resp.Text()
		fmt.Fprintf(f.writer, "%s\n", text)
	default:
		raw, _ := resp.Bytes()
		fmt.Fprintf(f.writer, "  <%d bytes>\n", len(raw))
		if len(raw) > 0 && f.maxBody > 0 {
			preview := raw
			if len(preview) > f.maxBody {
				preview = preview[:f.maxBody]
			}
			fmt.Fprint(f.writer, hex.Dump(preview))
		}
	}
	return nil
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}
