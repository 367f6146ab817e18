// Пакет model — доменные модели Summary Module.
package model

// FileRecord — запись о загруженном файле.
// Единственная персистентная сущность сервиса: идентификатор,
// оригинальное имя файла и сгенерированное резюме.
// Запись неизменяема после вставки (append-only, без update/delete).
type FileRecord struct {
	// FileID — UUID файла в строковом представлении.
	// Для записей legacy-поколения — hex-представление ObjectID.
	FileID string
	// FileName — оригинальное имя файла, уникальное в коллекции
	FileName string
	// FileSummary — резюме, сгенерированное summarizer'ом,
	// либо legacy sentinel-строка при деградации
	FileSummary string
}
