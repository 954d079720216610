// Package gitrepo pushes device running configs into a git-hosting
// service through its repository-files REST API. One file per device,
// laid out as {site}/{hostname}/running-config.cfg; the commit is only
// made when the content actually changed.
package gitrepo

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/netsync-network/netsync/pkg/util"
)

// Outcome reports what a push did to one file.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
)

// Options configures a repository client.
type Options struct {
	URL     string // base URL of the git host, e.g. https://git.example.com
	Project string // project path ("infra/configs") or numeric id
	Branch  string // target branch, default "main"
	Token   string

	Verify  Verify
	Timeout time.Duration // default 30s

	MaxRetries int           // default 3
	RetryDelay time.Duration // default 2s
}

// Client talks to one project on one git host.
type Client struct {
	opts Options
	http *http.Client
}

// New builds a client. Verify controls TLS: off, on, or on with a
// custom CA bundle.
func New(opts Options) (*Client, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("git repository URL is required")
	}
	if opts.Project == "" {
		return nil, fmt.Errorf("git project is required")
	}
	if opts.Branch == "" {
		opts.Branch = "main"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = 2 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	switch {
	case opts.Verify.Insecure:
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	case opts.Verify.CAFile != "":
		pem, err := os.ReadFile(opts.Verify.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA bundle: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates in CA bundle %s", opts.Verify.CAFile)
		}
		transport.TLSClientConfig = &tls.Config{RootCAs: pool}
	}

	return &Client{
		opts: opts,
		http: &http.Client{Timeout: opts.Timeout, Transport: transport},
	}, nil
}

// ConfigPath is the repository path for a device's running config.
// Site may be empty.
func ConfigPath(site, hostname string) string {
	return path.Join(site, hostname, "running-config.cfg")
}

// PushConfig writes content to {site}/{hostname}/running-config.cfg.
// The existing blob's hash decides between create, update, and no-op.
func (c *Client) PushConfig(ctx context.Context, site, hostname, content string) (Outcome, error) {
	filePath := ConfigPath(site, hostname)
	log := util.WithDevice(hostname).WithField("path", filePath)

	existing, found, err := c.getFile(ctx, filePath)
	if err != nil {
		return "", err
	}
	if found {
		sum := sha256.Sum256([]byte(content))
		if existing.ContentSHA256 == hex.EncodeToString(sum[:]) {
			log.Debug("config unchanged")
			return OutcomeUnchanged, nil
		}
		if err := c.putFile(ctx, http.MethodPut, filePath, content,
			fmt.Sprintf("Update running config for %s", hostname)); err != nil {
			return "", err
		}
		log.Info("config updated")
		return OutcomeUpdated, nil
	}

	if err := c.putFile(ctx, http.MethodPost, filePath, content,
		fmt.Sprintf("Add running config for %s", hostname)); err != nil {
		return "", err
	}
	log.Info("config created")
	return OutcomeCreated, nil
}

type fileInfo struct {
	ContentSHA256 string `json:"content_sha256"`
	BlobID        string `json:"blob_id"`
}

func (c *Client) fileURL(filePath string) string {
	return fmt.Sprintf("%s/api/v4/projects/%s/repository/files/%s",
		c.opts.URL, url.PathEscape(c.opts.Project), url.PathEscape(filePath))
}

func (c *Client) getFile(ctx context.Context, filePath string) (*fileInfo, bool, error) {
	u := c.fileURL(filePath) + "?ref=" + url.QueryEscape(c.opts.Branch)

	var info fileInfo
	var found bool
	err := util.Retry(ctx, c.opts.MaxRetries, c.opts.RetryDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("PRIVATE-TOKEN", c.opts.Token)
		resp, err := c.http.Do(req)
		if err != nil {
			return util.NewConnectionError(c.opts.URL, err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		switch {
		case resp.StatusCode == http.StatusNotFound:
			found = false
			return nil
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			found = true
			return json.Unmarshal(body, &info)
		default:
			return &apiError{Status: resp.StatusCode, Path: filePath, Body: util.Truncate(string(body), 200)}
		}
	})
	if err != nil {
		return nil, false, err
	}
	return &info, found, nil
}

func (c *Client) putFile(ctx context.Context, method, filePath, content, message string) error {
	payload, err := json.Marshal(map[string]string{
		"branch":         c.opts.Branch,
		"content":        content,
		"commit_message": message,
	})
	if err != nil {
		return err
	}

	return util.Retry(ctx, c.opts.MaxRetries, c.opts.RetryDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.fileURL(filePath), bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("PRIVATE-TOKEN", c.opts.Token)
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.http.Do(req)
		if err != nil {
			return util.NewConnectionError(c.opts.URL, err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		return &apiError{Status: resp.StatusCode, Path: filePath, Body: util.Truncate(string(body), 200)}
	})
}

// apiError is a non-2xx reply from the git host. 5xx is retriable.
type apiError struct {
	Status int
	Path   string
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("git API %d on %s: %s", e.Status, e.Path, e.Body)
}

func (e *apiError) Retryable() bool { return e.Status >= 500 }
