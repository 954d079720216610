// Package inventory is the typed client for the NetBox REST API. All
// writes are idempotent against natural keys; reads drain pagination
// eagerly so the reconciler always diffs against complete state.
package inventory

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/netsync-network/netsync/pkg/util"
)

// Options tunes the client beyond URL and token.
type Options struct {
	Timeout    time.Duration // per request, default 30s
	MaxRetries int           // default 3
	RetryDelay time.Duration // default 2s
	VerifySSL  bool
	CAFile     string // extra trust root; only consulted when VerifySSL is true
	PageSize   int    // default 200
}

// Client talks to one NetBox instance.
type Client struct {
	baseURL    string
	token      string
	http       *http.Client
	maxRetries int
	retryDelay time.Duration
	pageSize   int
}

// New builds a client for the given API root ("https://netbox.example.com").
func New(baseURL, token string, opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = 2 * time.Second
	}
	if opts.PageSize == 0 {
		opts.PageSize = 200
	}
	transport := http.DefaultTransport
	switch {
	case !opts.VerifySSL:
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		transport = t
	case opts.CAFile != "":
		if pem, err := os.ReadFile(opts.CAFile); err == nil {
			pool := x509.NewCertPool()
			if pool.AppendCertsFromPEM(pem) {
				t := http.DefaultTransport.(*http.Transport).Clone()
				t.TLSClientConfig = &tls.Config{RootCAs: pool}
				transport = t
			}
		} else {
			util.Warnf("CA bundle %s unreadable, using system roots: %v", opts.CAFile, err)
		}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		http:       &http.Client{Timeout: opts.Timeout, Transport: transport},
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		pageSize:   opts.PageSize,
	}
}

// do issues one API request with retries. Connection failures and 5xx
// responses are retried; everything else is terminal. out, when non-nil,
// receives the decoded response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return err
		}
	}

	return util.Retry(ctx, c.maxRetries, c.retryDelay, func() error {
		u := c.baseURL + "/api" + path
		if len(query) > 0 {
			u += "?" + query.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Token "+c.token)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return util.NewConnectionError(c.baseURL, err)
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return util.NewConnectionError(c.baseURL, err)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if out != nil && len(data) > 0 {
				return json.Unmarshal(data, out)
			}
			return nil
		case resp.StatusCode == http.StatusBadRequest:
			return newValidationError(path, data)
		default:
			return &APIError{Status: resp.StatusCode, Method: method, Path: path, Body: string(data)}
		}
	})
}

// listResponse is the paginated envelope every list endpoint returns.
type listResponse struct {
	Count   int               `json:"count"`
	Next    *string           `json:"next"`
	Results []json.RawMessage `json:"results"`
}

// list fetches every page of a list endpoint and feeds each result to
// the callback.
func (c *Client) list(ctx context.Context, path string, query url.Values, each func(json.RawMessage) error) error {
	q := url.Values{}
	for k, vs := range query {
		q[k] = vs
	}
	q.Set("limit", fmt.Sprintf("%d", c.pageSize))
	offset := 0
	for {
		q.Set("offset", fmt.Sprintf("%d", offset))
		var page listResponse
		if err := c.do(ctx, http.MethodGet, path, q, nil, &page); err != nil {
			return err
		}
		for _, raw := range page.Results {
			if err := each(raw); err != nil {
				return err
			}
		}
		offset += len(page.Results)
		if page.Next == nil || len(page.Results) == 0 {
			return nil
		}
	}
}

// getOne returns the single match for a filter, nil when there is none.
// More than one match is an error: the filter was meant to be a natural
// key.
func (c *Client) getOne(ctx context.Context, path string, query url.Values, out interface{}) (bool, error) {
	found := 0
	var first json.RawMessage
	err := c.list(ctx, path, query, func(raw json.RawMessage) error {
		if found == 0 {
			first = raw
		}
		found++
		return nil
	})
	if err != nil {
		return false, err
	}
	switch {
	case found == 0:
		return false, nil
	case found > 1:
		return false, fmt.Errorf("filter %v on %s matched %d objects, want 1", query, path, found)
	}
	return true, json.Unmarshal(first, out)
}

// delete removes one object by ID. Deleting an object that is already
// gone is not an error.
func (c *Client) delete(ctx context.Context, path string, id int) error {
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("%s%d/", path, id), nil, nil, nil)
	var apiErr *APIError
	if err != nil && errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return nil
	}
	return err
}
