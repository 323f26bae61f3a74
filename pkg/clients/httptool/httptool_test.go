package httptool

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "httptool_test_*")
	if err != nil {
		panic(err)
	}
	configBody := "app:\n  host: :8080\nclients:\n  http:\n    requestLog: false\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configBody), 0o644); err != nil {
		panic(err)
	}
	_ = os.Setenv("CONFIG_PATH", dir)

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestGetWithContextNilTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	// nil transport must fall back to the default transport
	hc := NewHTTPClient(server.URL, "test_client", 5*time.Second, nil)

	body, err := hc.GetWithContext(context.Background(), "/ping")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(body))
}

func TestGetParamsWithContextEncodesValues(t *testing.T) {
	var gotName, gotSort string
	var gotTags []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotName = q.Get("filter.eq.name")
		gotSort = q.Get("page.sort")
		gotTags = q["tag"]
		fmt.Fprint(w, "{}")
	}))
	defer server.Close()

	hc := NewHTTPClient(server.URL, "test_client", 5*time.Second, nil)

	_, err := hc.GetParamsWithContext(context.Background(), "/items", map[string][]string{
		"filter.eq.name": {"login & checkout + smoke test"},
		"page.sort":      {"startTime,DESC"},
		"tag":            {"a", "b"},
	})
	require.NoError(t, err)

	assert.Equal(t, "login & checkout + smoke test", gotName)
	assert.Equal(t, "startTime,DESC", gotSort)
	assert.Equal(t, []string{"a", "b"}, gotTags)
}

func TestGetWithContextNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"message":"upstream down"}`)
	}))
	defer server.Close()

	hc := NewHTTPClient(server.URL, "test_client", 5*time.Second, nil)

	_, err := hc.GetWithContext(context.Background(), "/ping")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
}
