// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPDBBaseURL      = "https://files.rcsb.org/download/"
	DefaultEMDBURLTemplate = "https://www.ebi.ac.uk/emdb/download/emd_%s.map.gz"
	DefaultTimeout         = 30 * time.Second
)

// StatusError reports a remote call that did not return a success status.
type StatusError struct {
	Op         string
	ID         string
	StatusCode int
	// Body is the response body, when the caller keeps it.
	Body string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s failed", e.Op)
	if e.ID != "" {
		msg += " for " + e.ID
	}
	msg += fmt.Sprintf(": %d", e.StatusCode)
	if e.Body != "" {
		msg += " " + e.Body
	}
	return msg
}

// Client downloads structural data from the public archives.
type Client struct {
	httpClient      *http.Client
	pdbBaseURL      string
	emdbURLTemplate string
	logger          *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the HTTP client. A nil client is ignored.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithTimeout sets the per-request timeout. It applies to a copy of the
// current HTTP client, so a client passed to WithHTTPClient keeps its
// transport and is not mutated.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		c := *cl.httpClient
		c.Timeout = d
		cl.httpClient = &c
	}
}

func WithPDBBaseURL(u string) Option {
	return func(cl *Client) {
		cl.pdbBaseURL = u
	}
}

// WithEMDBURLTemplate sets the map URL; the template takes the EMDB id as its only %s verb.
func WithEMDBURLTemplate(tmpl string) Option {
	return func(cl *Client) {
		cl.emdbURLTemplate = tmpl
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// NewClient creates a Client pointing at RCSB and EMDB.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:      &http.Client{Timeout: DefaultTimeout},
		pdbBaseURL:      DefaultPDBBaseURL,
		emdbURLTemplate: DefaultEMDBURLTemplate,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPDB returns the full PDB text of the given accession id.
func (c *Client) FetchPDB(ctx context.Context, pdbID string) (string, error) {
	url := strings.TrimSuffix(c.pdbBaseURL, "/") + "/" + pdbID + ".pdb"
	body, err := c.get(ctx, "PDB fetch", pdbID, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchEMDB returns the compressed density map of the given EMDB id. The map
// is not decoded.
func (c *Client) FetchEMDB(ctx context.Context, emdbID string) ([]byte, error) {
	return c.get(ctx, "EMDB fetch", emdbID, fmt.Sprintf(c.emdbURLTemplate, emdbID))
}

func (c *Client) get(ctx context.Context, op, id, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s for %s: %w", op, id, err)
	}

	c.logger.Debug("Fetching", zap.String("op", op), zap.String("url", url))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s for %s: %w", op, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Op: op, ID: id, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s for %s: reading body: %w", op, id, err)
	}
	c.logger.Debug("Fetched", zap.String("op", op), zap.String("id", id), zap.Int("bytes", len(body)))
	return body, nil
}
