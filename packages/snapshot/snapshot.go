// Package snapshot compares normalized responses against stored snapshots.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/abdul-hamid-achik/stacke2e/packages/http"
)

const (
	// SnapshotDir is the directory name for storing snapshots
	SnapshotDir = "__snapshots__"
	// SnapshotExt is the file extension for snapshot files
	SnapshotExt = ".snap.json"
	// EnvUpdateSnapshots turns on update mode when set to true, 1 or yes.
	EnvUpdateSnapshots = "STACKE2E_UPDATE_SNAPSHOTS"
)

// DefaultIgnoredHeaders change on every request and are left out of snapshots.
var DefaultIgnoredHeaders = []string{"date", "x-request-id"}

// Manager stores one snapshot file per suite under dir/__snapshots__.
// It is safe for concurrent use by parallel tests.
type Manager struct {
	dir     string
	update  bool
	ignored map[string]bool

	mu    sync.Mutex
	cache map[string]map[string]any // file -> {name -> value}
}

type Option func(*Manager)

// WithUpdate writes new and mismatching snapshots instead of failing.
func WithUpdate(update bool) Option {
	return func(m *Manager) {
		m.update = update
	}
}

// WithIgnoredHeaders adds header names left out of snapshots.
func WithIgnoredHeaders(names ...string) Option {
	return func(m *Manager) {
		for _, n := range names {
			m.ignored[strings.ToLower(n)] = true
		}
	}
}

// NewManager creates a manager rooted at dir. Update mode defaults to the
// STACKE2E_UPDATE_SNAPSHOTS variable.
func NewManager(dir string, opts ...Option) *Manager {
	v := strings.ToLower(os.Getenv(EnvUpdateSnapshots))
	m := &Manager{
		dir:     dir,
		update:  v == "true" || v == "1" || v == "yes",
		ignored: make(map[string]bool),
		cache:   make(map[string]map[string]any),
	}
	for _, h := range DefaultIgnoredHeaders {
		m.ignored[h] = true
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Result is the outcome of one comparison.
type Result struct {
	Passed     bool
	Message    string
	Expected   any
	Actual     any
	IsNew      bool
	WasUpdated bool
}

// Value returns the snapshot form of resp: status, headers without the
// ignored names, and body. Raw bodies are base64 encoded.
func (m *Manager) Value(resp *http.NiceResponse) (map[string]any, error) {
	data, err := resp.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var value map[string]any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, err
	}
	if headers, ok := value["headers"].(map[string]any); ok {
		for name := range headers {
			if m.ignored[name] {
				delete(headers, name)
			}
		}
	}
	return value, nil
}

// Match compares resp with the snapshot called name in suite's file.
func (m *Manager) Match(suite, name string, resp *http.NiceResponse) (*Result, error) {
	actual, err := m.Value(resp)
	if err != nil {
		return nil, fmt.Errorf("encoding response: %w", err)
	}
	return m.Compare(suite, name, actual)
}

// Compare compares a JSON-compatible value with the stored snapshot.
func (m *Manager) Compare(suite, name string, actual any) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := &Result{Actual: actual}
	path := m.Path(suite)

	snapshots, err := m.load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}

	expected, exists := snapshots[name]
	if !exists {
		if !m.update {
			result.Message = fmt.Sprintf("snapshot %q does not exist (set %s=1 to create)", name, EnvUpdateSnapshots)
			return result, nil
		}
		snapshots[name] = actual
		if err := m.save(path, snapshots); err != nil {
			return nil, fmt.Errorf("failed to save snapshot: %w", err)
		}
		result.Passed = true
		result.IsNew = true
		result.Expected = actual
		result.Message = "new snapshot created"
		return result, nil
	}

	result.Expected = expected
	if jsonEqual(expected, actual) {
		result.Passed = true
		return result, nil
	}

	if !m.update {
		result.Message = fmt.Sprintf("snapshot %q mismatch", name)
		return result, nil
	}
	snapshots[name] = actual
	if err := m.save(path, snapshots); err != nil {
		return nil, fmt.Errorf("failed to update snapshot: %w", err)
	}
	result.Passed = true
	result.WasUpdated = true
	result.Message = "snapshot updated"
	return result, nil
}

// Path returns the snapshot file for suite.
func (m *Manager) Path(suite string) string {
	name := strings.TrimSuffix(filepath.Base(suite), filepath.Ext(suite))
	return filepath.Join(m.dir, SnapshotDir, name+SnapshotExt)
}

func (m *Manager) load(path string) (map[string]any, error) {
	if cached, ok := m.cache[path]; ok {
		return cached, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			snapshots := make(map[string]any)
			m.cache[path] = snapshots
			return snapshots, nil
		}
		return nil, err
	}

	snapshots := make(map[string]any)
	if err := json.Unmarshal(data, &snapshots); err != nil {
		return nil, err
	}
	m.cache[path] = snapshots
	return snapshots, nil
}

func (m *Manager) save(path string, snapshots map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snapshots, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// jsonEqual compares a and b after a JSON round trip so numeric types match.
func jsonEqual(a, b any) bool {
	normalize := func(v any) any {
		data, err := json.Marshal(v)
		if err != nil {
			return v
		}
		var out any
		if err := json.Unmarshal(data, &out); err != nil {
			return v
		}
		return out
	}
	return reflect.DeepEqual(normalize(a), normalize(b))
}
