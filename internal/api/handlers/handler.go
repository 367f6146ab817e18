// handler.go — основной обработчик API Summary Module.
// Объединяет health и файловые обработчики, отвечает за разбор
// HTTP-параметров и конвертацию доменных моделей в API-типы.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bigkaa/summary-module/internal/service"
)

// APIHandler — основной обработчик API Summary Module.
// Делегирует запросы в сервисный слой.
type APIHandler struct {
	ingestSvc *service.IngestService
	querySvc  *service.QueryService
	health    *HealthHandler
	// maxUploadBytes — лимит размера загружаемого файла (SM_MAX_FILE_SIZE)
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	ingestSvc *service.IngestService,
	querySvc *service.QueryService,
	health *HealthHandler,
	maxUploadBytes int64,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		ingestSvc:      ingestSvc,
		querySvc:       querySvc,
		health:         health,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "api_handler")),
	}
}

// --- Health endpoints (делегируются в HealthHandler) ---

// HealthLive — liveness probe.
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe.
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// queryParamInt разбирает опциональный целочисленный query-параметр.
// Отсутствующий или некорректный параметр — nil.
func queryParamInt(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}
