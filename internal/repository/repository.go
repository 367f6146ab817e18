// Пакет repository — слой доступа к данным MongoDB для Summary Module.
// Единственная коллекция записей о файлах, запросы по точному совпадению
// _id или file_name. Без ORM — чистый mongo-driver.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/bigkaa/summary-module/internal/domain/model"
)

// Ошибки слоя репозиториев.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrDuplicate — нарушение уникальности (повтор _id или file_name).
	ErrDuplicate = errors.New("запись с таким ключом уже существует")
	// ErrUnsupportedIDType — _id не является ни Binary(subtype 4), ни ObjectID.
	ErrUnsupportedIDType = errors.New("неподдерживаемый тип идентификатора записи")
)

// FileRepository — интерфейс хранилища записей о файлах.
// Реализуется MongoFileRepository; в тестах подменяется fake-реализацией.
type FileRepository interface {
	// EnsureIndexes создаёт уникальный индекс по file_name.
	// Индекс — единственная надёжная защита от дубликатов имён:
	// предварительная проверка ExistsByName остаётся оптимизацией.
	EnsureIndexes(ctx context.Context) error
	// Insert вставляет новую запись. Нарушение уникальности — ErrDuplicate.
	Insert(ctx context.Context, id uuid.UUID, name, summary string) error
	// ExistsByName проверяет наличие записи с данным именем файла.
	ExistsByName(ctx context.Context, name string) (bool, error)
	// GetByID возвращает запись по UUID. Отсутствие — ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*model.FileRecord, error)
	// List возвращает записи в естественном порядке коллекции
	// с пагинацией limit/offset.
	List(ctx context.Context, limit, offset int) ([]*model.FileRecord, error)
}
