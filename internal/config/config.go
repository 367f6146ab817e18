// Пакет config — загрузка и валидация конфигурации Summary Module
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Summary Module.
type Config struct {
	// Порт HTTP-сервера
	Port int
	// URI подключения к MongoDB
	MongoURI string
	// Имя базы данных
	DatabaseName string
	// Имя коллекции записей о файлах
	CollectionName string
	// Путь к директории хранения загруженных файлов
	StoragePath string
	// Базовый URL generate-endpoint summarizer'а
	SummarizerURL string
	// API-ключ summarizer'а (Bearer)
	SummarizerAPIKey string
	// Таймаут исходящего запроса к summarizer'у
	SummarizerTimeout time.Duration
	// Лимит генерации summarizer'а (max_new_tokens)
	SummarizerMaxNewTokens int
	// Имя пользователя Basic auth
	AuthUsername string
	// Пароль Basic auth
	AuthPassword string
	// Максимальный размер загружаемого файла в байтах
	MaxFileSize int64
	// Лимит выдачи списка файлов (по умолчанию и максимум)
	ListLimit int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Таймауты HTTP-сервера
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
// Файл .env, если присутствует, подхватывается до чтения окружения.
func Load() (*Config, error) {
	// .env — для локальной разработки; в кластере переменные задаёт deployment
	_ = godotenv.Load()

	cfg := &Config{}
	var err error

	// SM_PORT — порт HTTP-сервера (по умолчанию 8030)
	cfg.Port, err = getEnvInt("SM_PORT", 8030)
	if err != nil {
		return nil, fmt.Errorf("SM_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("SM_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// SM_MONGO_URI — обязательный
	cfg.MongoURI, err = getEnvRequired("SM_MONGO_URI")
	if err != nil {
		return nil, err
	}

	// SM_DATABASE_NAME — имя БД (по умолчанию filedb)
	cfg.DatabaseName = getEnvDefault("SM_DATABASE_NAME", "filedb")

	// SM_COLLECTION_NAME — имя коллекции (по умолчанию files)
	cfg.CollectionName = getEnvDefault("SM_COLLECTION_NAME", "files")

	// SM_STORAGE_PATH — обязательный
	cfg.StoragePath, err = getEnvRequired("SM_STORAGE_PATH")
	if err != nil {
		return nil, err
	}

	// SM_SUMMARIZER_URL — обязательный
	cfg.SummarizerURL, err = getEnvRequired("SM_SUMMARIZER_URL")
	if err != nil {
		return nil, err
	}

	// SM_SUMMARIZER_API_KEY — обязательный
	cfg.SummarizerAPIKey, err = getEnvRequired("SM_SUMMARIZER_API_KEY")
	if err != nil {
		return nil, err
	}

	// SM_SUMMARIZER_TIMEOUT — таймаут исходящего запроса (по умолчанию 60s).
	// Retry не выполняется: одна попытка, деградация до sentinel-резюме.
	cfg.SummarizerTimeout, err = getEnvDuration("SM_SUMMARIZER_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SM_SUMMARIZER_TIMEOUT: %w", err)
	}

	// SM_SUMMARIZER_MAX_NEW_TOKENS — лимит генерации (по умолчанию 100)
	cfg.SummarizerMaxNewTokens, err = getEnvInt("SM_SUMMARIZER_MAX_NEW_TOKENS", 100)
	if err != nil {
		return nil, fmt.Errorf("SM_SUMMARIZER_MAX_NEW_TOKENS: %w", err)
	}
	if cfg.SummarizerMaxNewTokens <= 0 {
		return nil, fmt.Errorf("SM_SUMMARIZER_MAX_NEW_TOKENS: значение должно быть положительным")
	}

	// SM_AUTH_USERNAME — обязательный
	cfg.AuthUsername, err = getEnvRequired("SM_AUTH_USERNAME")
	if err != nil {
		return nil, err
	}

	// SM_AUTH_PASSWORD — обязательный
	cfg.AuthPassword, err = getEnvRequired("SM_AUTH_PASSWORD")
	if err != nil {
		return nil, err
	}

	// SM_MAX_FILE_SIZE — максимальный размер файла (по умолчанию 100 MiB)
	cfg.MaxFileSize, err = getEnvInt64("SM_MAX_FILE_SIZE", 104857600)
	if err != nil {
		return nil, fmt.Errorf("SM_MAX_FILE_SIZE: %w", err)
	}
	if cfg.MaxFileSize <= 0 {
		return nil, fmt.Errorf("SM_MAX_FILE_SIZE: значение должно быть положительным")
	}

	// SM_LIST_LIMIT — лимит выдачи списка (по умолчанию 1000)
	cfg.ListLimit, err = getEnvInt("SM_LIST_LIMIT", 1000)
	if err != nil {
		return nil, fmt.Errorf("SM_LIST_LIMIT: %w", err)
	}
	if cfg.ListLimit <= 0 {
		return nil, fmt.Errorf("SM_LIST_LIMIT: значение должно быть положительным")
	}

	// SM_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("SM_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("SM_LOG_LEVEL: %w", err)
	}

	// SM_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("SM_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("SM_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// Таймауты HTTP-сервера
	cfg.HTTPReadTimeout, err = getEnvDuration("SM_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SM_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("SM_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SM_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("SM_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SM_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// SM_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("SM_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SM_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 возвращает int64 значение переменной окружения или значение по умолчанию.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
