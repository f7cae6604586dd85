package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/partnerhub/partnerhub/internal/model"
)

// TestLogging_NoCredentialsLogged ensures basic-auth credentials never
// reach the request log.
func TestLogging_NoCredentialsLogged(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	wrapped := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/users", nil)
	req.SetBasicAuth("user@example.com", "SuperSecretPass123")

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	logOutput := buf.String()
	for _, pattern := range []string{"SuperSecretPass123", req.Header.Get("Authorization")} {
		if strings.Contains(logOutput, pattern) {
			t.Errorf("Log output contains credential material %q", pattern)
		}
	}
}

func TestLogging_CapturesStatusAndPath(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	wrapped := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest("GET", "/api/users/999", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry: %v", err)
	}

	if entry["status_code"] != float64(http.StatusNotFound) {
		t.Errorf("expected status_code 404, got %v", entry["status_code"])
	}
	if entry["path"] != "/api/users/999" {
		t.Errorf("expected path to be logged, got %v", entry["path"])
	}
	if entry["level"] != "WARN" {
		t.Errorf("expected WARN level for 4xx, got %v", entry["level"])
	}
}

// TestLogging_IncludesAuthenticatedUserID verifies the request log
// carries the user id resolved by the auth middleware, on both the
// verification path and the identity-cache path.
func TestLogging_IncludesAuthenticatedUserID(t *testing.T) {
	user := seedUser(t, "MySecurePass123", true)
	users := &fakeUserFinder{users: map[string]*model.User{user.Email: user}}

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	cfg := AuthConfig{
		Logger: slog.New(slog.NewTextHandler(nullWriter{}, nil)),
		Users:  users,
		Cache:  newFakeIdentityCache(),
	}
	handler := Logger(logger)(Auth(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	// Two requests: the first verifies against the store, the second
	// hits the identity cache. Both must log the user id.
	for i := 0; i < 2; i++ {
		buf.Reset()

		req := httptest.NewRequest("GET", "/api/users", nil)
		req.SetBasicAuth("user@example.com", "MySecurePass123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("request %d: decode log entry: %v", i, err)
		}
		if entry["user_id"] != float64(user.ID) {
			t.Errorf("request %d: expected user_id %d in request log, got %v", i, user.ID, entry["user_id"])
		}
	}
}

// TestLogging_NoUserIDWhenUnauthenticated ensures failed auth leaves
// user_id out of the request log.
func TestLogging_NoUserIDWhenUnauthenticated(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	cfg := AuthConfig{
		Logger: slog.New(slog.NewTextHandler(nullWriter{}, nil)),
		Users:  &fakeUserFinder{users: map[string]*model.User{}},
		Cache:  newFakeIdentityCache(),
	}
	handler := Logger(logger)(Auth(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest("GET", "/api/users", nil)
	req.SetBasicAuth("ghost@example.com", "WrongPass123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry: %v", err)
	}
	if _, present := entry["user_id"]; present {
		t.Errorf("expected no user_id for unauthenticated request, got %v", entry["user_id"])
	}
}

func TestRequestID_GeneratedAndPropagated(t *testing.T) {
	t.Parallel()

	var seen string
	wrapped := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if seen == "" {
		t.Fatal("expected a generated request id in context")
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("expected response header %q to match context id %q", got, seen)
	}
}

func TestRequestID_HonorsIncomingHeader(t *testing.T) {
	t.Parallel()

	wrapped := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := GetRequestID(r.Context()); got != "caller-supplied-id" {
			t.Errorf("expected caller-supplied id, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set(RequestIDHeader, "caller-supplied-id")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
}
