package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	neturl "net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FetchJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/api/v1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Custom", "value")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"a":1}`))
	}))
	defer server.Close()

	resp, err := NewClient().Fetch(context.Background(), server.URL+"/api/v1", nil)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status())
	assert.Equal(t, BodyJSON, resp.BodyKind())
	assert.Equal(t, map[string]any{"a": float64(1)}, resp.Body())
	assert.Equal(t, "application/json", resp.Header("content-type"))
	assert.Equal(t, "value", resp.Header("x-custom"))
}

func TestClient_FetchText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("hello"))
	}))
	defer server.Close()

	resp, err := NewClient().Fetch(context.Background(), server.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status())
	assert.Equal(t, "hello", resp.Body())
}

func TestClient_FetchBinary(t *testing.T) {
	payload := make([]byte, 1024)
	for i := range payload {
		payload[i] = byte(i % 256)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	resp, err := NewClient().Fetch(context.Background(), server.URL, nil)

	require.NoError(t, err)
	body, ok := resp.Bytes()
	require.True(t, ok)
	assert.Len(t, body, len(payload))
	assert.True(t, bytes.Equal(payload, body))
}

func TestClient_NoContentTypeIsRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// An explicit nil entry stops net/http from sniffing a type.
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte("plain words"))
	}))
	defer server.Close()

	resp, err := NewClient().Fetch(context.Background(), server.URL, nil)

	require.NoError(t, err)
	assert.Empty(t, resp.ContentType())
	assert.Equal(t, BodyRaw, resp.BodyKind())
	assert.Equal(t, []byte("plain words"), resp.Body())
}

func TestClient_StatusAndHeadersUnchanged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Add("Set-Cookie", "a=1")
		w.Header().Add("Set-Cookie", "b=2")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"error":"teapot"}`))
	}))
	defer server.Close()

	hc := &http.Client{Transport: http.DefaultTransport}
	want, err := hc.Get(server.URL)
	require.NoError(t, err)
	_ = want.Body.Close()

	resp, err := NewClient().Fetch(context.Background(), server.URL, nil)
	require.NoError(t, err)

	assert.Equal(t, want.StatusCode, resp.Status())
	got := resp.Headers()
	got.Del("Date")
	want.Header.Del("Date")
	assert.Equal(t, want.Header, got)
	assert.Equal(t, []string{"a=1", "b=2"}, resp.Headers().Values("set-cookie"))
}

func TestClient_MalformedJSONIsDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"a":`))
	}))
	defer server.Close()

	resp, err := NewClient().Fetch(context.Background(), server.URL, nil)

	assert.Nil(t, resp)
	require.Error(t, err)
	assert.True(t, IsDecodeError(err))
	assert.False(t, IsTransportError(err))
	assert.Equal(t, "unexpected end of JSON input", err.Error())
}

func TestClient_TransportError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = NewClient().Fetch(context.Background(), "http://"+addr+"/", nil)

	require.Error(t, err)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "GET", te.Method)

	var urlErr *neturl.Error
	require.ErrorAs(t, err, &urlErr)
	assert.Equal(t, urlErr.Error(), err.Error())
}

func TestClient_NoRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	resp, err := NewClient().Fetch(context.Background(), server.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, 503, resp.Status())
	assert.Equal(t, 1, calls)
}

func TestClient_ContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient().Fetch(ctx, server.URL, nil)

	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestClient_WithTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := NewClient(WithTimeout(50*time.Millisecond)).Fetch(context.Background(), server.URL, nil)

	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

func TestClient_RequestOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "client", r.Header.Get("X-Stack-Access-Type"))
		assert.Equal(t, "internal", r.URL.Query().Get("project"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"test"}`, string(body))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":123}`))
	}))
	defer server.Close()

	opts, err := NewRequestOptions("post").
		SetHeader("X-Stack-Access-Type", "client").
		SetQueryParam("project", "internal").
		SetJSON(map[string]string{"name": "test"})
	require.NoError(t, err)

	resp, err := NewClient().Fetch(context.Background(), server.URL, opts)

	require.NoError(t, err)
	assert.Equal(t, 201, resp.Status())
	assert.Equal(t, map[string]any{"id": float64(123)}, resp.Body())
}

func TestClient_DefaultHeadersAndOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "override", r.Header.Get("Authorization"))
		assert.Equal(t, "custom-agent", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(WithDefaultHeaders(map[string]string{
		"Authorization": "default",
		"User-Agent":    "custom-agent",
	}))
	opts := (&RequestOptions{}).SetHeader("Authorization", "override")
	resp, err := client.Fetch(context.Background(), server.URL, opts)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status())
}

func TestClient_BaseURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/health", r.URL.Path)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL + "/api/v1/"))
	resp, err := client.Fetch(context.Background(), "health", nil)

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Body())
}

func TestClient_RequestID(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("X-Request-Id"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(WithRequestID("X-Request-Id"))
	for i := 0; i < 2; i++ {
		_, err := client.Fetch(context.Background(), server.URL, nil)
		require.NoError(t, err)
	}
	_, err := client.Fetch(context.Background(), server.URL, (&RequestOptions{}).SetHeader("X-Request-Id", "fixed"))
	require.NoError(t, err)

	require.Len(t, seen, 3)
	_, err = uuid.Parse(seen[0])
	assert.NoError(t, err)
	assert.NotEqual(t, seen[0], seen[1])
	assert.Equal(t, "fixed", seen[2])
}

func TestClient_Logger(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	var buf bytes.Buffer
	client := NewClient(WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	_, err := client.Fetch(context.Background(), server.URL, nil)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"status":200`)
	assert.Contains(t, buf.String(), `"kind":"text"`)
	assert.Contains(t, buf.String(), `"message":"fetched"`)
}

func TestClient_WithHTTPClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	resp, err := NewClient(WithHTTPClient(server.Client())).Fetch(context.Background(), server.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, 202, resp.Status())
}

func TestNiceFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`[1,2]`))
	}))
	defer server.Close()

	resp, err := NiceFetch(context.Background(), server.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2)}, resp.Body())
}

func TestClient_FetchURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(r.URL.RawQuery))
	}))
	defer server.Close()

	u, err := neturl.Parse(server.URL + "?a=1")
	require.NoError(t, err)

	resp, err := NewClient().FetchURL(context.Background(), u, (&RequestOptions{}).SetQueryParam("b", "2"))

	require.NoError(t, err)
	assert.Equal(t, "a=1&b=2", resp.Body())
	assert.Equal(t, "a=1", u.RawQuery)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{name: "valid http URL", url: "http://example.com/path"},
		{name: "valid https URL", url: "https://example.com/path"},
		{name: "invalid scheme", url: "ftp://example.com", wantErr: "unsupported URL scheme"},
		{name: "relative", url: "/path", wantErr: "unsupported URL scheme"},
		{name: "missing host", url: "http:///path", wantErr: "must have a host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := neturl.Parse(tt.url)
			require.NoError(t, err)

			err = ValidateURL(u)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClient_InvalidTarget(t *testing.T) {
	_, err := NewClient().Fetch(context.Background(), "://bad", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid URL")

	_, err = NewClient().Fetch(context.Background(), "/relative/without/base", nil)
	require.Error(t, err)
	assert.False(t, IsTransportError(err))
}
