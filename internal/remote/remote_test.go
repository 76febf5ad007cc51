// SPDX-License-Identifier: Apache-2.0

package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noahsarkproj/shopmanual/internal/catalogue"
	"github.com/noahsarkproj/shopmanual/internal/fetch"
	"github.com/noahsarkproj/shopmanual/internal/remote"
)

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := remote.NewClient("", "key", nil)
	require.Error(t, err)
}

func TestClient_PushEntry(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		respBody    string
		wantErr     bool
		errContains string
	}{
		{name: "created", status: http.StatusCreated, respBody: `{"id": "abc"}`},
		{name: "ok", status: http.StatusOK, respBody: `{"id": "abc"}`},
		{name: "unauthorized", status: http.StatusUnauthorized, respBody: "bad token", wantErr: true, errContains: "401 bad token"},
		{name: "server error", status: http.StatusInternalServerError, respBody: "boom", wantErr: true, errContains: "500 boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotEntry map[string]any
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/entries", r.URL.Path)
				assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				data, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(data, &gotEntry)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.respBody))
			}))
			defer srv.Close()

			c, err := remote.NewClient(srv.URL+"/api/", "secret", srv.Client())
			require.NoError(t, err)

			out, err := c.PushEntry(context.Background(), catalogue.QuantumEntry{ID: "CRY-001", QGEPSScore: 50})
			assert.Equal(t, "CRY-001", gotEntry["PartID"])
			assert.Equal(t, "quantum", gotEntry["AuditKind"])

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				var statusErr *fetch.StatusError
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, tt.status, statusErr.StatusCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"id": "abc"}, out)
		})
	}
}

func TestClient_FetchEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		if r.URL.Query().Get("PartID") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("no such part"))
			return
		}
		_, _ = w.Write([]byte(`[{"AuditKind": "structural", "PartID": "MAG-001", "GEPS_Score": 100}]`))
	}))
	defer srv.Close()

	c, err := remote.NewClient(srv.URL, "secret", nil)
	require.NoError(t, err)

	raw, err := c.FetchEntries(context.Background(), map[string]string{"PartID": "MAG-001"})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"AuditKind": "structural", "PartID": "MAG-001", "GEPS_Score": 100}]`, string(raw))

	_, err = c.FetchEntries(context.Background(), map[string]string{"PartID": "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch entries failed: 404 no such part")

	manual, err := c.PullCatalogue(context.Background(), nil)
	require.NoError(t, err)
	e, ok := manual.Lookup("MAG-001")
	require.True(t, ok)
	assert.Equal(t, catalogue.KindStructural, e.Kind())
}
