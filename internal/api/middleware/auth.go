// auth.go — middleware HTTP Basic аутентификации.
// Учётные данные — пара секретов из конфигурации процесса;
// каждый запрос аутентифицируется заново, сессии и токены не выдаются.
// Сравнение — за постоянное время, через SHA-256 + ConstantTimeCompare,
// чтобы не утекала ни длина, ни префикс секрета.
package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	apierrors "github.com/bigkaa/summary-module/internal/api/errors"
)

// BasicAuth — middleware Basic-аутентификации.
type BasicAuth struct {
	usernameHash [32]byte
	passwordHash [32]byte
	logger       *slog.Logger
}

// NewBasicAuth создаёт middleware с заданными секретами.
func NewBasicAuth(username, password string, logger *slog.Logger) *BasicAuth {
	return &BasicAuth{
		usernameHash: sha256.Sum256([]byte(username)),
		passwordHash: sha256.Sum256([]byte(password)),
		logger:       logger.With(slog.String("component", "basic_auth")),
	}
}

// Middleware возвращает HTTP middleware Basic-аутентификации.
// Неуспех — 401 с заголовком WWW-Authenticate: Basic.
func (a *BasicAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				a.unauthorized(w, r, "Отсутствуют учётные данные Basic")
				return
			}

			userHash := sha256.Sum256([]byte(username))
			passHash := sha256.Sum256([]byte(password))

			// Обе проверки выполняются всегда — без short-circuit
			userOK := subtle.ConstantTimeCompare(userHash[:], a.usernameHash[:]) == 1
			passOK := subtle.ConstantTimeCompare(passHash[:], a.passwordHash[:]) == 1
			if !userOK || !passOK {
				a.unauthorized(w, r, "Неверное имя пользователя или пароль")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// unauthorized отправляет 401 с заголовком WWW-Authenticate.
func (a *BasicAuth) unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	a.logger.Debug("Отказ аутентификации",
		slog.String("path", r.URL.Path),
		slog.String("remote_addr", r.RemoteAddr),
	)
	w.Header().Set("WWW-Authenticate", `Basic realm="summary-module"`)
	apierrors.Unauthorized(w, message)
}

// WithExclusions оборачивает middleware, пропуская указанные пути.
// Запросы к путям, начинающимся с любого из excludePrefixes,
// проходят без middleware (health, metrics).
func WithExclusions(mw func(http.Handler) http.Handler, excludePrefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range excludePrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			mw(next).ServeHTTP(w, r)
		})
	}
}
