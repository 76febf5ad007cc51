// SPDX-License-Identifier: Apache-2.0

// Package remote talks to a hosted Shop Manual catalogue service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/noahsarkproj/shopmanual/internal/catalogue"
	"github.com/noahsarkproj/shopmanual/internal/fetch"
)

// Client pushes and fetches catalogue entries with bearer-token auth.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, httpClient *http.Client) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("remote base URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: fetch.DefaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}, nil
}

// PushEntry posts one entry and returns the decoded response document.
func (c *Client) PushEntry(ctx context.Context, entry catalogue.Entry) (any, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entry %s: %w", entry.PartID(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/entries", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, &fetch.StatusError{Op: "push entry", ID: entry.PartID(), StatusCode: status, Body: string(body)}
	}

	var out any
	if len(bytes.TrimSpace(body)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode push response: %w", err)
	}
	return out, nil
}

// FetchEntries lists entries, filtered by the optional query parameters. The
// response body is returned undecoded.
func (c *Client) FetchEntries(ctx context.Context, query map[string]string) (json.RawMessage, error) {
	u := c.baseURL + "/entries"
	if len(query) > 0 {
		values := url.Values{}
		for k, v := range query {
			values.Set(k, v)
		}
		u += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &fetch.StatusError{Op: "fetch entries", StatusCode: status, Body: string(body)}
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("fetch entries: response is not valid JSON")
	}
	return json.RawMessage(body), nil
}

// PullCatalogue fetches entries and loads them into a new Catalogue.
func (c *Client) PullCatalogue(ctx context.Context, query map[string]string) (*catalogue.Catalogue, error) {
	raw, err := c.FetchEntries(ctx, query)
	if err != nil {
		return nil, err
	}
	manual := catalogue.New()
	if err := manual.LoadJSON(raw); err != nil {
		return nil, err
	}
	return manual, nil
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: reading body: %w", req.Method, req.URL.Path, err)
	}
	return body, resp.StatusCode, nil
}
