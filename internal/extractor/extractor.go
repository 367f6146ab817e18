// Пакет extractor — извлечение текста из документов .docx, .pptx и .pdf.
//
// Диспетчеризация строго по расширению (точное, регистрозависимое
// совпадение); недопустимые расширения отсекаются ingestion-сервисом
// до вызова экстрактора. OOXML-форматы (.docx, .pptx) разбираются
// напрямую: archive/zip + encoding/xml, PDF — через ledongthuc/pdf.
//
// Правила конкатенации сохраняют поведение исходного пайплайна:
// текст абзацев/фигур/страниц склеивается без разделителей.
package extractor

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrUnsupportedExtension — расширение не входит в множество поддерживаемых.
var ErrUnsupportedExtension = errors.New("неподдерживаемое расширение файла")

// SupportedExtensions — допустимые расширения загружаемых документов.
// Сравнение точное и регистрозависимое: ".PDF" не принимается.
var SupportedExtensions = []string{".docx", ".pptx", ".pdf"}

// IsSupportedExtension проверяет, входит ли расширение в допустимое множество.
func IsSupportedExtension(ext string) bool {
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// DocumentExtractor — извлечение текста из файла на диске.
type DocumentExtractor struct {
	logger *slog.Logger
}

// New создаёт экстрактор текста.
func New(logger *slog.Logger) *DocumentExtractor {
	return &DocumentExtractor{
		logger: logger.With(slog.String("component", "extractor")),
	}
}

// Extract извлекает текст из файла по пути path с расширением ext.
// Ошибки разбора (битый архив, некорректная структура) возвращаются
// вызывающему коду: решение о деградации принимает ingestion-сервис.
func (e *DocumentExtractor) Extract(path, ext string) (string, error) {
	var (
		text string
		err  error
	)

	switch ext {
	case ".docx":
		text, err = extractDocx(path)
	case ".pptx":
		text, err = extractPptx(path)
	case ".pdf":
		text, err = extractPDF(path)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}

	if err != nil {
		e.logger.Debug("Ошибка извлечения текста",
			slog.String("path", path),
			slog.String("ext", ext),
			slog.String("error", err.Error()),
		)
		return "", err
	}

	return text, nil
}
