package loadgen

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Result is the immutable record of one issued request. Network-level
// failures end up in Err, never as a Go error from Issue.
type Result struct {
	IssuedAt   time.Time     `json:"issued_at"`
	StatusCode int           `json:"status_code,omitempty"`
	Latency    time.Duration `json:"latency"`
	Err        string        `json:"error,omitempty"`
}

// Success reports whether the request completed with a non-error status.
func (r Result) Success() bool {
	return r.Err == "" && r.StatusCode < 400
}

// Issuer issues single HTTP calls against a fixed base URL. It never
// retries: a retried request would distort the rate the autoscaler sees.
type Issuer struct {
	baseURL string
	client  *http.Client
}

func NewIssuer(baseURL string, timeout time.Duration) (*Issuer, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 2000
	t.MaxConnsPerHost = 2000
	t.MaxIdleConnsPerHost = 2000
	t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}

	return &Issuer{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: t,
		},
	}, nil
}

// Issue performs one request and records its outcome. The returned
// result is complete whether or not the call succeeded.
func (i *Issuer) Issue(ctx context.Context, method, path string, body []byte) Result {
	issuedAt := time.Now()
	res := Result{IssuedAt: issuedAt}

	var rd io.Reader
	if len(body) > 0 {
		rd = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, i.baseURL+path, rd)
	if err != nil {
		res.Err = err.Error()
		res.Latency = time.Since(issuedAt)
		return res
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := i.client.Do(req)
	res.Latency = time.Since(issuedAt)

	if err != nil {
		res.Err = err.Error()
		return res
	}

	res.StatusCode = resp.StatusCode
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return res
}
