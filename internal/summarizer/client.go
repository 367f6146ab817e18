// Пакет summarizer — HTTP-клиент удалённого сервиса генерации резюме.
// Сервис совместим с LoRAX generate API: POST {base_url}/generate
// c телом {"inputs": ..., "parameters": {"max_new_tokens": N}} и
// ответом {"generated_text": "..."}.
//
// Политика отказов: одна попытка, без retry. Таймаут задаётся явно
// (SM_SUMMARIZER_TIMEOUT), контекст входящего запроса пробрасывается,
// так что отмена клиента отменяет и исходящий вызов. Решение о
// деградации до sentinel-резюме принимает ingestion-сервис.
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client — HTTP-клиент summarizer'а.
type Client struct {
	baseURL      string
	apiKey       string
	maxNewTokens int
	httpClient   *http.Client
	logger       *slog.Logger
}

// Config — параметры создания клиента summarizer'а.
type Config struct {
	// BaseURL — базовый URL generate-endpoint (без /generate)
	BaseURL string
	// APIKey — Bearer-токен
	APIKey string
	// Timeout — таймаут одного запроса
	Timeout time.Duration
	// MaxNewTokens — лимит генерации
	MaxNewTokens int
}

// New создаёт клиент summarizer'а.
func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		maxNewTokens: cfg.MaxNewTokens,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
			},
		},
		logger: logger.With(slog.String("component", "summarizer_client")),
	}
}

// generateRequest — тело запроса generate.
type generateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters generateParameters `json:"parameters"`
}

// generateParameters — параметры генерации.
type generateParameters struct {
	MaxNewTokens int `json:"max_new_tokens"`
}

// generateResponse — тело ответа generate.
type generateResponse struct {
	GeneratedText string `json:"generated_text"`
}

// Summarize запрашивает резюме для переданного текста.
// Возвращает сгенерированный текст или ошибку; подмена ошибки
// sentinel-строкой — ответственность вызывающего кода.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	reqURL := c.baseURL + "/generate"

	body, err := json.Marshal(generateRequest{
		Inputs: text,
		Parameters: generateParameters{
			MaxNewTokens: c.maxNewTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("сериализация запроса generate: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("создание запроса generate: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("запрос generate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Тело ошибки читаем ограниченно — для диагностики в логах
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Debug("Summarizer вернул ошибку",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(errBody)),
		)
		return "", fmt.Errorf("generate: статус %d", resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("декодирование ответа generate: %w", err)
	}

	c.logger.Debug("Резюме сгенерировано",
		slog.Int("input_len", len(text)),
		slog.Int("summary_len", len(genResp.GeneratedText)),
		slog.Duration("duration", time.Since(start)),
	)

	return genResp.GeneratedText, nil
}
