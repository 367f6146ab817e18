// query.go — сервис чтения: список файлов и получение записи по id.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bigkaa/summary-module/internal/domain/model"
	"github.com/bigkaa/summary-module/internal/repository"
)

// Ошибки read-слоя.
var (
	// ErrNotFound — запись о файле не найдена.
	ErrNotFound = errors.New("файл не найден")
	// ErrInvalidID — идентификатор не является корректным UUID.
	ErrInvalidID = errors.New("некорректный идентификатор файла")
)

// QueryService — read-поверхность: список и получение по id.
type QueryService struct {
	repo repository.FileRepository
	// maxLimit — лимит выдачи по умолчанию и одновременно максимум (SM_LIST_LIMIT)
	maxLimit int
	logger   *slog.Logger
}

// NewQueryService создаёт read-сервис.
func NewQueryService(repo repository.FileRepository, maxLimit int, logger *slog.Logger) *QueryService {
	return &QueryService{
		repo:     repo,
		maxLimit: maxLimit,
		logger:   logger.With(slog.String("component", "query_service")),
	}
}

// List возвращает записи о файлах в естественном порядке коллекции.
// limit/offset — опциональные параметры пагинации: limit по умолчанию
// равен maxLimit и жёстко ограничен им сверху, так что запрос без
// параметров сохраняет исторический контракт «не более 1000 записей».
func (s *QueryService) List(ctx context.Context, limit, offset *int) ([]*model.FileRecord, error) {
	l, o := s.paginationDefaults(limit, offset)

	records, err := s.repo.List(ctx, l, o)
	if err != nil {
		return nil, fmt.Errorf("получение списка файлов: %w", err)
	}

	s.logger.Debug("Список файлов получен",
		slog.Int("returned", len(records)),
		slog.Int("limit", l),
		slog.Int("offset", o),
	)

	return records, nil
}

// GetByID возвращает запись о файле по строковому UUID.
func (s *QueryService) GetByID(ctx context.Context, fileID string) (*model.FileRecord, error) {
	id, err := uuid.Parse(fileID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, fileID)
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение записи о файле: %w", err)
	}

	return record, nil
}

// paginationDefaults нормализует параметры пагинации.
func (s *QueryService) paginationDefaults(limit, offset *int) (limitVal, offsetVal int) {
	l := s.maxLimit
	o := 0

	if limit != nil {
		l = *limit
		if l < 1 {
			l = 1
		}
		if l > s.maxLimit {
			l = s.maxLimit
		}
	}

	if offset != nil {
		o = *offset
		if o < 0 {
			o = 0
		}
	}

	return l, o
}
