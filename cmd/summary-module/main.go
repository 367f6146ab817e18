// Точка входа Summary Module — сервиса загрузки и суммаризации документов.
// Клиент загружает .docx/.pptx/.pdf, сервис извлекает текст, запрашивает
// резюме у удалённого LLM-endpoint и сохраняет запись в MongoDB.
package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bigkaa/summary-module/internal/api/handlers"
	"github.com/bigkaa/summary-module/internal/api/middleware"
	"github.com/bigkaa/summary-module/internal/config"
	"github.com/bigkaa/summary-module/internal/extractor"
	"github.com/bigkaa/summary-module/internal/repository"
	"github.com/bigkaa/summary-module/internal/server"
	"github.com/bigkaa/summary-module/internal/service"
	"github.com/bigkaa/summary-module/internal/storage/filestore"
	"github.com/bigkaa/summary-module/internal/summarizer"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// 2. Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("Summary Module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("database", cfg.DatabaseName),
	)

	// 3. Подключение к MongoDB
	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Error("Ошибка подключения к MongoDB", slog.String("error", err.Error()))
		log.Fatalf("Ошибка подключения к MongoDB: %v", err)
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			logger.Error("Ошибка отключения от MongoDB", slog.String("error", err.Error()))
		}
	}()

	if err := mongoClient.Ping(connectCtx, nil); err != nil {
		logger.Error("MongoDB недоступна", slog.String("error", err.Error()))
		log.Fatalf("MongoDB недоступна: %v", err)
	}

	collection := mongoClient.Database(cfg.DatabaseName).Collection(cfg.CollectionName)

	// 4. Репозиторий и уникальный индекс file_name
	fileRepo := repository.NewMongoFileRepository(collection, logger)
	if err := fileRepo.EnsureIndexes(connectCtx); err != nil {
		logger.Error("Ошибка создания индексов", slog.String("error", err.Error()))
		log.Fatalf("Ошибка создания индексов: %v", err)
	}

	// 5. Файловое хранилище
	blobs, err := filestore.New(cfg.StoragePath)
	if err != nil {
		logger.Error("Ошибка инициализации FileStore", slog.String("error", err.Error()))
		log.Fatalf("Ошибка инициализации FileStore: %v", err)
	}

	// 6. Экстрактор текста и клиент summarizer'а
	docExtractor := extractor.New(logger)
	sumClient := summarizer.New(summarizer.Config{
		BaseURL:      cfg.SummarizerURL,
		APIKey:       cfg.SummarizerAPIKey,
		Timeout:      cfg.SummarizerTimeout,
		MaxNewTokens: cfg.SummarizerMaxNewTokens,
	}, logger)

	// 7. Сервисы
	ingestSvc := service.NewIngestService(fileRepo, blobs, docExtractor, sumClient, logger)
	querySvc := service.NewQueryService(fileRepo, cfg.ListLimit, logger)

	// 8. Handlers
	healthHandler := handlers.NewHealthHandler(repository.NewMongoChecker(mongoClient, 3*time.Second))
	apiHandler := handlers.NewAPIHandler(ingestSvc, querySvc, healthHandler, cfg.MaxFileSize, logger)

	// 9. Middleware: метрики → логирование → Basic auth
	// (health и metrics — без аутентификации)
	basicAuth := middleware.NewBasicAuth(cfg.AuthUsername, cfg.AuthPassword, logger)
	srv := server.New(cfg, logger, apiHandler,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
		middleware.WithExclusions(basicAuth.Middleware(), "/health/", "/metrics"),
	)

	// 10. Запуск сервера (блокирующий вызов с graceful shutdown)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		log.Fatalf("Сервер завершился с ошибкой: %v", err)
	}

	logger.Info("Summary Module остановлен")
}
