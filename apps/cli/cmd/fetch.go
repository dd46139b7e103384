package cmd

import (
	"errors"
	"fmt"
	neturl "net/url"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/stacke2e/packages/core/config"
	"github.com/abdul-hamid-achik/stacke2e/packages/http"
	"github.com/abdul-hamid-achik/stacke2e/packages/output"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url|path>",
	Short: "Fetch a URL and print the normalized response",
	Long: `Perform one HTTP request and print the response as the test suite
sees it: status, headers, then the body decoded by content type
(JSON, text, or raw bytes).

Examples:
  stacke2e fetch http://localhost:8102/health
  stacke2e fetch --backend /api/v1 -H "X-Stack-Access-Type: client"
  stacke2e fetch --backend /api/v1/users -X POST -d '{"name":"x"}' -H "Content-Type: application/json"
  stacke2e fetch --dashboard / -o json`,
	Args: cobra.ExactArgs(1),
	RunE: fetchCommand,
}

var (
	methodFlag    string
	headerFlags   []string
	dataFlag      string
	backendFlag   bool
	dashboardFlag bool
	configFlag    string
	outputFlag    string
	noColorFlag   bool
	timeoutFlag   string
	insecureFlag  bool
	requestIDFlag string
)

func init() {
	fetchCmd.Flags().StringVarP(&methodFlag, "request", "X", "GET", "HTTP method")
	fetchCmd.Flags().StringArrayVarP(&headerFlags, "header", "H", nil, `Request header "Name: value" (repeatable)`)
	fetchCmd.Flags().StringVarP(&dataFlag, "data", "d", "", "Request body")
	fetchCmd.Flags().BoolVar(&backendFlag, "backend", false, "Resolve the path against STACK_BACKEND_BASE_URL")
	fetchCmd.Flags().BoolVar(&dashboardFlag, "dashboard", false, "Resolve the path against STACK_DASHBOARD_BASE_URL")
	fetchCmd.Flags().StringVar(&configFlag, "config", getEnvString("STACKE2E_CONFIG", ""), "Path to settings file (env: STACKE2E_CONFIG)")
	fetchCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("STACKE2E_OUTPUT", "console"), "Output format: console, json (env: STACKE2E_OUTPUT)")
	fetchCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("STACKE2E_NO_COLOR", false), "Disable colored output (env: STACKE2E_NO_COLOR)")
	fetchCmd.Flags().StringVar(&timeoutFlag, "timeout", "", "Request timeout, e.g. 10s (default: none)")
	fetchCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", false, "Skip TLS certificate verification")
	fetchCmd.Flags().StringVar(&requestIDFlag, "request-id-header", "", "Send a fresh UUID in this header")
}

func loadSettings() (*config.Settings, error) {
	path := configFlag
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = config.FindSettingsFile(wd)
		}
	}
	if path == "" {
		return config.DefaultSettings(), nil
	}
	return config.LoadSettings(path)
}

func parseHeader(raw string) (string, string, error) {
	key, value, found := strings.Cut(raw, ":")
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return "", "", fmt.Errorf("invalid header %q: expected \"Name: value\"", raw)
	}
	return key, strings.TrimSpace(value), nil
}

func clientOptions(cmd *cobra.Command, settings *config.Settings) ([]http.ClientOption, error) {
	opts := []http.ClientOption{
		http.WithLogger(newLogger(cmd)),
		http.WithDefaultHeaders(settings.Headers),
		http.WithValidateSSL(settings.GetValidateSSL() && !insecureFlag),
	}

	timeout := time.Duration(settings.Timeout) * time.Millisecond
	if timeoutFlag != "" {
		d, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout: %w", err)
		}
		timeout = d
	}
	if timeout > 0 {
		opts = append(opts, http.WithTimeout(timeout))
	}
	if settings.Proxy != "" {
		opts = append(opts, http.WithProxy(settings.Proxy))
	}
	if requestIDFlag != "" {
		opts = append(opts, http.WithRequestID(requestIDFlag))
	}

	if backendFlag || dashboardFlag {
		if backendFlag && dashboardFlag {
			return nil, errors.New("--backend and --dashboard are mutually exclusive")
		}
		cfg, err := config.FromEnv()
		if err != nil {
			return nil, &ExitError{Code: ExitConfigError, Err: err}
		}
		base := cfg.BackendBaseURL
		if dashboardFlag {
			base = cfg.DashboardBaseURL
		}
		opts = append(opts, http.WithBaseURL(baseDir(base)))
	}
	return opts, nil
}

// baseDir adds a trailing slash to the base URL's path so relative
// references resolve beneath it instead of replacing its last segment.
func baseDir(base string) string {
	u, err := neturl.Parse(base)
	if err != nil {
		return base
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
		if u.RawPath != "" {
			u.RawPath += "/"
		}
	}
	return u.String()
}

// joinBase turns "/v1/projects" into a reference relative to baseDir, so
// the base URL's path is kept.
func joinBase(target string) string {
	if (backendFlag || dashboardFlag) && strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return target
}

func fetchCommand(cmd *cobra.Command, args []string) error {
	if err := exportEnvFile(); err != nil {
		return err
	}

	settings, err := loadSettings()
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}

	clientOpts, err := clientOptions(cmd, settings)
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return err
		}
		return &ExitError{Code: ExitUsageError, Err: err}
	}

	reqOpts := http.NewRequestOptions(methodFlag)
	for _, raw := range headerFlags {
		key, value, err := parseHeader(raw)
		if err != nil {
			return &ExitError{Code: ExitUsageError, Err: err}
		}
		reqOpts.SetHeader(key, value)
	}
	if dataFlag != "" {
		reqOpts.SetBody(dataFlag)
	}

	formatter, err := output.NewFormatter(strings.ToLower(outputFlag), cmd.OutOrStdout(), noColorFlag || settings.GetNoColor())
	if err != nil {
		return &ExitError{Code: ExitUsageError, Err: err}
	}

	client := http.NewClient(clientOpts...)
	resp, err := client.Fetch(cmd.Context(), joinBase(args[0]), reqOpts)
	if err != nil {
		formatter.FormatError(err)
		code := ExitFailure
		if http.IsTransportError(err) {
			code = ExitNetworkError
		}
		return &ExitError{Code: code, Err: err, Reported: true}
	}

	return formatter.FormatResponse(resp)
}
