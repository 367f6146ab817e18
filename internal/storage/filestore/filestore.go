// Пакет filestore — операции с физическими файлами на диске.
// Сырые байты загруженного документа сохраняются под именем {file_id}{ext},
// что исключает гонку одновременных загрузок файлов с одинаковым именем:
// оригинальное имя живёт только в записи MongoDB.
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore — управление физическими файлами на диске.
type FileStore struct {
	// dataDir — корневая директория хранения файлов (SM_STORAGE_PATH)
	dataDir string
}

// New создаёт новый FileStore. Проверяет и создаёт директорию,
// если она не существует.
func New(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию данных %s: %w", dataDir, err)
	}

	return &FileStore{dataDir: dataDir}, nil
}

// DataDir возвращает корневую директорию хранения.
func (fs *FileStore) DataDir() string {
	return fs.dataDir
}

// Save записывает данные из reader на диск под именем {fileID}{ext}.
// Возвращает абсолютный путь сохранённого файла.
//
// Паттерн: temp файл → запись → fsync → atomic rename.
// При ошибке temp файл удаляется, ошибка возвращается вызывающему
// коду без подмены (запись на диск — фатальный шаг ingestion).
func (fs *FileStore) Save(reader io.Reader, fileID uuid.UUID, ext string) (string, error) {
	fullPath := filepath.Join(fs.dataDir, fileID.String()+ext)
	tmpPath := fullPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("ошибка записи данных: %w", err)
	}

	// fsync для гарантии записи на диск
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	// Атомарный rename
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return fullPath, nil
}

// Remove удаляет файл по абсолютному пути.
// Отсутствие файла ошибкой не считается.
func (fs *FileStore) Remove(fullPath string) error {
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления файла %s: %w", fullPath, err)
	}
	return nil
}
