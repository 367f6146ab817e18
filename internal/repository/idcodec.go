// idcodec.go — кодек идентификаторов записей.
// Прямое отображение: uuid.UUID <-> BSON Binary subtype 4 (UUID standard).
// Обратное отображение дополнительно принимает legacy ObjectID:
// в коллекции сосуществуют два поколения идентификаторов —
// сгенерированные сервисом UUID и авто-_id записей, созданных до него.
package repository

import (
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// bsonSubtypeUUID — стандартный BSON-субтип UUID (RFC 4122).
const bsonSubtypeUUID = 0x04

// EncodeUUID кодирует UUID в нативное BSON-представление _id.
func EncodeUUID(id uuid.UUID) primitive.Binary {
	return primitive.Binary{
		Subtype: bsonSubtypeUUID,
		Data:    id[:],
	}
}

// DecodeStoredID декодирует _id записи в строковое представление.
// Binary subtype 4 → канонический UUID, ObjectID → hex-строка.
// Любой другой тип — ErrUnsupportedIDType.
func DecodeStoredID(raw any) (string, error) {
	switch v := raw.(type) {
	case primitive.Binary:
		if v.Subtype != bsonSubtypeUUID {
			return "", fmt.Errorf("%w: Binary subtype 0x%02x", ErrUnsupportedIDType, v.Subtype)
		}
		id, err := uuid.FromBytes(v.Data)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedIDType, err)
		}
		return id.String(), nil
	case primitive.ObjectID:
		return v.Hex(), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedIDType, raw)
	}
}
