package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// okHandler отвечает 200 — защищаемый ресурс в тестах.
func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// TestBasicAuth_MissingCredentials проверяет 401 и WWW-Authenticate
// при отсутствии заголовка Authorization.
func TestBasicAuth_MissingCredentials(t *testing.T) {
	handler := NewBasicAuth("admin", "secret", discardLogger()).Middleware()(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/files", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("статус = %d, ожидался 401", rec.Code)
	}
	if got := rec.Header().Get("WWW-Authenticate"); got != `Basic realm="summary-module"` {
		t.Errorf("WWW-Authenticate = %q, ожидался Basic realm", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, ожидался application/json", ct)
	}
}

// TestBasicAuth_WrongCredentials проверяет отказ по неверным данным.
func TestBasicAuth_WrongCredentials(t *testing.T) {
	handler := NewBasicAuth("admin", "secret", discardLogger()).Middleware()(okHandler())

	cases := []struct {
		name     string
		username string
		password string
	}{
		{name: "неверный пароль", username: "admin", password: "wrong"},
		{name: "неверное имя", username: "user", password: "secret"},
		{name: "оба неверны", username: "user", password: "wrong"},
		{name: "пустые", username: "", password: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/files", nil)
			req.SetBasicAuth(tc.username, tc.password)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("статус = %d, ожидался 401", rec.Code)
			}
		})
	}
}

// TestBasicAuth_ValidCredentials проверяет пропуск запроса.
func TestBasicAuth_ValidCredentials(t *testing.T) {
	handler := NewBasicAuth("admin", "secret", discardLogger()).Middleware()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/files", nil)
	req.SetBasicAuth("admin", "secret")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("статус = %d, ожидался 200", rec.Code)
	}
}

// TestWithExclusions проверяет пропуск health и metrics без аутентификации
// и защиту остальных путей.
func TestWithExclusions(t *testing.T) {
	auth := NewBasicAuth("admin", "secret", discardLogger())
	handler := WithExclusions(auth.Middleware(), "/health/", "/metrics")(okHandler())

	cases := []struct {
		path       string
		wantStatus int
	}{
		{path: "/health/live", wantStatus: http.StatusOK},
		{path: "/health/ready", wantStatus: http.StatusOK},
		{path: "/metrics", wantStatus: http.StatusOK},
		{path: "/v1/files", wantStatus: http.StatusUnauthorized},
		{path: "/", wantStatus: http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))

			if rec.Code != tc.wantStatus {
				t.Errorf("статус = %d, ожидался %d", rec.Code, tc.wantStatus)
			}
		})
	}
}
