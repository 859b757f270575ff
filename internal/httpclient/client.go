// Package httpclient provides the shared HTTP client used by the HTTP
// translation backends.
package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	// DefaultTimeout bounds one request, including LLM generation time.
	DefaultTimeout = 5 * time.Minute
	// MaxResponseBytes caps response bodies read into memory.
	MaxResponseBytes = 8 * 1024 * 1024
	// UserAgent identifies requests from this tool.
	UserAgent = "npcxlate/1 (+https://github.com/oukeidos/npcxlate)"
)

// GetDefaultClient returns the process-wide client. Backends share it so
// batch runs over many files reuse connections.
var GetDefaultClient = sync.OnceValue(func() *http.Client {
	return NewClient(DefaultTimeout)
})

// NewClient returns a client with the given overall request timeout and a
// transport sized for a handful of hosts.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          32,
			MaxIdleConnsPerHost:   16,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   15 * time.Second,
			ExpectContinueTimeout: time.Second,
		},
	}
}

// DoAndRead sends req, reads at most MaxResponseBytes of the body and
// closes it. A missing User-Agent is filled in.
func DoAndRead(client *http.Client, req *http.Request) ([]byte, *http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.ContentLength > MaxResponseBytes {
		return nil, resp, fmt.Errorf("response body too large (limit %d bytes)", MaxResponseBytes)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return nil, resp, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > MaxResponseBytes {
		return nil, resp, fmt.Errorf("response body too large (limit %d bytes)", MaxResponseBytes)
	}
	return body, resp, nil
}
