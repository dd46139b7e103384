package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// RequestOptions configures a single fetch. The zero value is a GET without
// a body.
type RequestOptions struct {
	Method      string
	Headers     map[string]string
	QueryParams map[string]string
	Body        io.Reader
}

func NewRequestOptions(method string) *RequestOptions {
	return &RequestOptions{
		Method:      method,
		Headers:     make(map[string]string),
		QueryParams: make(map[string]string),
	}
}

func (o *RequestOptions) SetHeader(key, value string) *RequestOptions {
	if o.Headers == nil {
		o.Headers = make(map[string]string)
	}
	o.Headers[key] = value
	return o
}

func (o *RequestOptions) SetQueryParam(key, value string) *RequestOptions {
	if o.QueryParams == nil {
		o.QueryParams = make(map[string]string)
	}
	o.QueryParams[key] = value
	return o
}

func (o *RequestOptions) SetBody(body string) *RequestOptions {
	o.Body = strings.NewReader(body)
	return o
}

func (o *RequestOptions) SetBytes(body []byte) *RequestOptions {
	o.Body = bytes.NewReader(body)
	return o
}

// SetJSON encodes v as the body and sets Content-Type unless already present.
func (o *RequestOptions) SetJSON(v any) (*RequestOptions, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return o, err
	}
	o.Body = bytes.NewReader(data)
	if o.header("Content-Type") == "" {
		o.SetHeader("Content-Type", "application/json")
	}
	return o, nil
}

func (o *RequestOptions) header(key string) string {
	for k, v := range o.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func (o *RequestOptions) method() string {
	if o == nil || o.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(o.Method)
}

// applyQuery adds the query parameters to u in place.
func (o *RequestOptions) applyQuery(u *url.URL) {
	if o == nil || len(o.QueryParams) == 0 {
		return
	}
	q := u.Query()
	for k, v := range o.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
}
