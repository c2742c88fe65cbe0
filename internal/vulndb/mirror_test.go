package vulndb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMirrorLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/advisories", r.URL.Path)
		assert.Equal(t, "requests", r.URL.Query().Get("package"))
		assert.Equal(t, "PyPI", r.URL.Query().Get("ecosystem"))
		assert.Equal(t, "2.0.0", r.URL.Query().Get("version"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		w.Write([]byte(`[{"id": "MIR-1", "summary": "test advisory", "severity": "LOW"}]`))
	}))
	defer server.Close()

	client := NewMirrorClient(server.URL, "secret")
	vulns, err := client.Lookup(context.Background(), "requests", "PyPI", "2.0.0")

	assert.NoError(t, err)
	assert.Len(t, vulns, 1)
	assert.Equal(t, "MIR-1", vulns[0].ID)
	assert.Equal(t, "LOW", vulns[0].Severity)
}

func TestMirrorLookupRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewMirrorClient(server.URL, "")
	_, err := client.Lookup(context.Background(), "requests", "PyPI", "2.0.0")

	assert.Error(t, err)
}

func TestMirrorPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewMirrorClient(server.URL, "")
	assert.NoError(t, client.Ping(context.Background()))
}
