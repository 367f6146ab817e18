// Пакет service — бизнес-логика Summary Module.
// ingest.go — пайплайн загрузки: валидация, проверка дубликата,
// запись на диск, извлечение текста, суммаризация, вставка записи.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/summary-module/internal/domain/model"
	"github.com/bigkaa/summary-module/internal/extractor"
	"github.com/bigkaa/summary-module/internal/repository"
)

// Ошибки сервисного слоя.
var (
	// ErrInvalidFileType — расширение файла не входит в допустимое множество.
	ErrInvalidFileType = errors.New("недопустимый тип файла")
	// ErrDuplicateFile — файл с таким именем уже загружен.
	ErrDuplicateFile = errors.New("файл с таким именем уже существует")
	// ErrStorageWrite — ошибка записи файла на диск.
	ErrStorageWrite = errors.New("ошибка записи файла в хранилище")
)

// Sentinel-строки, сохраняемые вместо результата при деградации шага.
// Значения зафиксированы legacy-данными в коллекции: менять нельзя.
const (
	sentinelExtractError = "Error extracting text"
	sentinelSummaryError = "Error generating summary"
)

// Prometheus-метрики ingestion.
var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sm_uploads_total",
		Help: "Общее количество загрузок файлов по результату.",
	}, []string{"result"})

	extractFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sm_extract_failures_total",
		Help: "Количество отказов извлечения текста (деградация до sentinel).",
	})

	summarizerFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sm_summarizer_failures_total",
		Help: "Количество отказов summarizer'а (деградация до sentinel).",
	})

	summarizerDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sm_summarizer_duration_seconds",
		Help:    "Длительность запросов к summarizer'у.",
		Buckets: prometheus.DefBuckets,
	})
)

// TextExtractor — извлечение текста из файла на диске.
type TextExtractor interface {
	Extract(path, ext string) (string, error)
}

// Summarizer — генерация резюме по тексту.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// BlobStore — сохранение сырых байтов файла на диск.
type BlobStore interface {
	Save(reader io.Reader, fileID uuid.UUID, ext string) (string, error)
}

// IngestService — пайплайн загрузки и суммаризации документа.
type IngestService struct {
	repo       repository.FileRepository
	blobs      BlobStore
	extractor  TextExtractor
	summarizer Summarizer
	logger     *slog.Logger
}

// NewIngestService создаёт сервис загрузки.
func NewIngestService(
	repo repository.FileRepository,
	blobs BlobStore,
	textExtractor TextExtractor,
	sum Summarizer,
	logger *slog.Logger,
) *IngestService {
	return &IngestService{
		repo:       repo,
		blobs:      blobs,
		extractor:  textExtractor,
		summarizer: sum,
		logger:     logger.With(slog.String("component", "ingest_service")),
	}
}

// Ingest выполняет полный пайплайн загрузки файла.
//
// Поток:
//  1. Валидация расширения (.docx/.pptx/.pdf, регистрозависимо)
//  2. Предварительная проверка дубликата имени (оптимизация;
//     источник истины — уникальный индекс file_name при вставке)
//  3. Генерация UUID записи
//  4. Запись сырых байтов на диск под именем {file_id}{ext}
//  5. Извлечение текста; отказ — sentinel-текст, не фатально
//  6. Суммаризация; отказ — sentinel-резюме, не фатально
//  7. Вставка записи {_id, file_name, file_summary}
//
// Побочные эффекты (диск, MongoDB, сетевой вызов) не транзакционны:
// компенсация выполняется только для диска при отказе вставки.
func (s *IngestService) Ingest(ctx context.Context, reader io.Reader, filename string) (*model.FileRecord, error) {
	// 1. Валидация расширения
	ext := filepath.Ext(filename)
	if !extractor.IsSupportedExtension(ext) {
		uploadsTotal.WithLabelValues("invalid_type").Inc()
		return nil, fmt.Errorf("%w: %q", ErrInvalidFileType, ext)
	}

	// 2. Предварительная проверка дубликата имени
	exists, err := s.repo.ExistsByName(ctx, filename)
	if err != nil {
		uploadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("проверка дубликата имени: %w", err)
	}
	if exists {
		uploadsTotal.WithLabelValues("duplicate").Inc()
		return nil, ErrDuplicateFile
	}

	// 3. Генерация идентификатора записи
	fileID := uuid.New()

	// 4. Запись сырых байтов на диск.
	// Ошибка записи фатальна и не маскируется sentinel-строкой.
	path, err := s.blobs.Save(reader, fileID, ext)
	if err != nil {
		uploadsTotal.WithLabelValues("storage_error").Inc()
		return nil, fmt.Errorf("%w: %s", ErrStorageWrite, err)
	}

	// 5. Извлечение текста. Отказ деградирует до sentinel-текста,
	// который затем уходит на суммаризацию — поведение legacy-пайплайна.
	text, err := s.extractor.Extract(path, ext)
	if err != nil {
		extractFailuresTotal.Inc()
		s.logger.Warn("Извлечение текста не удалось, используется sentinel",
			slog.String("file_id", fileID.String()),
			slog.String("file_name", filename),
			slog.String("error", err.Error()),
		)
		text = sentinelExtractError
	}

	// 6. Суммаризация. Одна попытка, без retry; отказ не прерывает загрузку.
	start := time.Now()
	summary, err := s.summarizer.Summarize(ctx, text)
	summarizerDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		summarizerFailuresTotal.Inc()
		s.logger.Warn("Суммаризация не удалась, используется sentinel",
			slog.String("file_id", fileID.String()),
			slog.String("file_name", filename),
			slog.String("error", err.Error()),
		)
		summary = sentinelSummaryError
	}

	// 7. Вставка записи. Дубликат имени на этом шаге — проигранная гонка
	// с конкурентной загрузкой: уникальный индекс отработал как последний
	// рубеж. Файл на диске убираем, чтобы не копить сирот.
	if err := s.repo.Insert(ctx, fileID, filename, summary); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			uploadsTotal.WithLabelValues("duplicate").Inc()
			if rmErr := removeIfRemover(s.blobs, path); rmErr != nil {
				s.logger.Error("Не удалось удалить файл после проигранной гонки",
					slog.String("path", path),
					slog.String("error", rmErr.Error()),
				)
			}
			return nil, ErrDuplicateFile
		}
		uploadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("вставка записи о файле: %w", err)
	}

	uploadsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("Файл загружен",
		slog.String("file_id", fileID.String()),
		slog.String("file_name", filename),
		slog.Int("text_len", len(text)),
	)

	return &model.FileRecord{
		FileID:      fileID.String(),
		FileName:    filename,
		FileSummary: summary,
	}, nil
}

// blobRemover — опциональная способность BlobStore удалять файлы.
type blobRemover interface {
	Remove(fullPath string) error
}

// removeIfRemover удаляет файл, если хранилище поддерживает удаление.
func removeIfRemover(blobs BlobStore, path string) error {
	if remover, ok := blobs.(blobRemover); ok {
		return remover.Remove(path)
	}
	return nil
}
