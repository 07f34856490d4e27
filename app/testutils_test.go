package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/bloglist/internal/blogservice"
	"github.com/sushihentaime/bloglist/internal/docstore"
	"github.com/sushihentaime/bloglist/internal/userservice"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

// newTestApplication wires the application against the memory store. Logs go to the returned buffer.
func newTestApplication(t *testing.T) (*application, *bytes.Buffer) {
	t.Helper()

	logs := new(bytes.Buffer)
	logger := slog.New(slog.NewJSONHandler(logs, nil))

	cfg := &Config{
		Port:        3003,
		Environment: "test",
		Version:     "test",
		StoreDriver: docstore.DriverMemory,
		Secret:      "test-secret",
		TokenTTL:    time.Hour,
	}

	store := docstore.NewMemoryStore()
	userService := userservice.NewUserService(store, []byte(cfg.Secret), cfg.TokenTTL)
	require.NoError(t, userService.EnsureIndexes(context.Background()))

	app := &application{
		config:      cfg,
		logger:      logger,
		userService: userService,
		blogService: blogservice.NewBlogService(store, nil, logger),
	}

	return app, logs
}

func (ts *testServer) do(t *testing.T, method, path, token string, payload any) (int, http.Header, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		js, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(js)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res.StatusCode, res.Header, responseBody
}

func (ts *testServer) get(t *testing.T, path string) (int, http.Header, []byte) {
	return ts.do(t, http.MethodGet, path, "", nil)
}

func (ts *testServer) post(t *testing.T, path, token string, payload any) (int, http.Header, []byte) {
	return ts.do(t, http.MethodPost, path, token, payload)
}

func (ts *testServer) put(t *testing.T, path, token string, payload any) (int, http.Header, []byte) {
	return ts.do(t, http.MethodPut, path, token, payload)
}

func (ts *testServer) delete(t *testing.T, path, token string) (int, http.Header, []byte) {
	return ts.do(t, http.MethodDelete, path, token, nil)
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

// createUserAndLogin registers a user and returns a bearer token for them.
func (ts *testServer) createUserAndLogin(t *testing.T, username, password string) string {
	t.Helper()

	status, _, body := ts.post(t, "/api/users", "", map[string]string{
		"username": username,
		"name":     username,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, _, body = ts.post(t, "/api/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, string(body))

	return decode[map[string]any](t, body)["token"].(string)
}
