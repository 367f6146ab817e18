// mongo.go — реализация FileRepository поверх коллекции MongoDB.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bigkaa/summary-module/internal/domain/model"
)

// storedFile — BSON-представление записи в коллекции.
// _id декодируется в interface{}: в коллекции сосуществуют
// Binary(subtype 4) и legacy ObjectID.
type storedFile struct {
	ID      any    `bson:"_id"`
	Name    string `bson:"file_name"`
	Summary string `bson:"file_summary"`
}

// MongoFileRepository — хранилище записей о файлах в MongoDB.
type MongoFileRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoFileRepository создаёт репозиторий поверх коллекции.
func NewMongoFileRepository(collection *mongo.Collection, logger *slog.Logger) *MongoFileRepository {
	return &MongoFileRepository{
		collection: collection,
		logger:     logger.With(slog.String("component", "file_repository")),
	}
}

// EnsureIndexes создаёт уникальный индекс по file_name.
// Вызывается один раз при старте процесса.
func (r *MongoFileRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "file_name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_file_name"),
	})
	if err != nil {
		return fmt.Errorf("создание индекса uniq_file_name: %w", err)
	}

	r.logger.Info("Индексы коллекции проверены",
		slog.String("collection", r.collection.Name()),
	)
	return nil
}

// Insert вставляет новую запись с _id = Binary(subtype 4).
// Нарушение уникальности _id или file_name — ErrDuplicate.
func (r *MongoFileRepository) Insert(ctx context.Context, id uuid.UUID, name, summary string) error {
	_, err := r.collection.InsertOne(ctx, bson.D{
		{Key: "_id", Value: EncodeUUID(id)},
		{Key: "file_name", Value: name},
		{Key: "file_summary", Value: summary},
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("вставка записи о файле: %w", err)
	}
	return nil
}

// ExistsByName проверяет наличие записи с данным именем файла.
func (r *MongoFileRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	err := r.collection.FindOne(ctx, bson.M{"file_name": name},
		options.FindOne().SetProjection(bson.M{"_id": 1}),
	).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("поиск записи по имени: %w", err)
	}
	return true, nil
}

// GetByID возвращает запись по UUID (поиск по закодированному _id).
func (r *MongoFileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.FileRecord, error) {
	var doc storedFile
	err := r.collection.FindOne(ctx, bson.M{"_id": EncodeUUID(id)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("поиск записи по _id: %w", err)
	}

	return docToRecord(&doc)
}

// List возвращает записи в естественном порядке коллекции
// с пагинацией limit/offset.
func (r *MongoFileRepository) List(ctx context.Context, limit, offset int) ([]*model.FileRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{},
		options.Find().SetLimit(int64(limit)).SetSkip(int64(offset)),
	)
	if err != nil {
		return nil, fmt.Errorf("получение списка записей: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]*model.FileRecord, 0)
	for cursor.Next(ctx) {
		var doc storedFile
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("декодирование записи: %w", err)
		}
		record, err := docToRecord(&doc)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("обход курсора: %w", err)
	}

	return records, nil
}

// docToRecord конвертирует BSON-документ в доменную модель,
// декодируя _id через кодек идентификаторов.
func docToRecord(doc *storedFile) (*model.FileRecord, error) {
	fileID, err := DecodeStoredID(doc.ID)
	if err != nil {
		return nil, err
	}
	return &model.FileRecord{
		FileID:      fileID,
		FileName:    doc.Name,
		FileSummary: doc.Summary,
	}, nil
}

// Проверка на этапе компиляции
var _ FileRepository = (*MongoFileRepository)(nil)

// MongoChecker — проверка готовности MongoDB для readiness probe.
type MongoChecker struct {
	client  *mongo.Client
	timeout time.Duration
}

// NewMongoChecker создаёт checker поверх клиента MongoDB.
func NewMongoChecker(client *mongo.Client, timeout time.Duration) *MongoChecker {
	return &MongoChecker{client: client, timeout: timeout}
}

// CheckReady выполняет ping MongoDB.
// Возвращает статус ("ok", "fail") и сообщение.
func (c *MongoChecker) CheckReady() (status, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.client.Ping(ctx, nil); err != nil {
		return "fail", err.Error()
	}
	return "ok", "подключение активно"
}
