// files.go — HTTP handlers файловых endpoints Summary Module.
// POST /v1/files — загрузка и суммаризация документа.
// GET /v1/files — список записей.
// GET /v1/files/{file_id} — запись по идентификатору.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/summary-module/internal/api/errors"
	"github.com/bigkaa/summary-module/internal/domain/model"
	"github.com/bigkaa/summary-module/internal/service"
)

// fileResponse — API-представление записи о файле.
type fileResponse struct {
	FileID      string `json:"file_id"`
	FileName    string `json:"file_name"`
	FileSummary string `json:"file_summary"`
}

// fileListItem — элемент списка файлов (без резюме).
type fileListItem struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
}

// UploadFile обрабатывает POST /v1/files.
// Multipart form: file (обязательно).
func (h *APIHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	// Ограничиваем размер тела запроса до разбора multipart
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		apierrors.ValidationError(w, "Поле 'file' обязательно")
		return
	}
	defer file.Close()

	record, err := h.ingestSvc.Ingest(r.Context(), file, header.Filename)
	if err != nil {
		h.writeIngestError(w, header.Filename, err)
		return
	}

	writeJSON(w, http.StatusOK, recordToResponse(record))
}

// writeIngestError конвертирует ошибку пайплайна загрузки в HTTP-ответ.
func (h *APIHandler) writeIngestError(w http.ResponseWriter, filename string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidFileType):
		apierrors.InvalidFileType(w, "Недопустимое расширение файла. Разрешены только .docx, .pptx и .pdf.")
	case errors.Is(err, service.ErrDuplicateFile):
		apierrors.DuplicateFile(w, "Файл с таким именем уже существует.")
	case errors.Is(err, service.ErrStorageWrite):
		h.logger.Error("Ошибка записи файла на диск",
			slog.String("file_name", filename),
			slog.String("error", err.Error()),
		)
		apierrors.StorageWriteError(w, "Не удалось сохранить файл в хранилище.")
	default:
		h.logger.Error("Ошибка загрузки файла",
			slog.String("file_name", filename),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка при загрузке файла.")
	}
}

// ListFiles обрабатывает GET /v1/files.
// Пагинация: limit (по умолчанию и максимум SM_LIST_LIMIT), offset.
func (h *APIHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	limit := queryParamInt(r, "limit")
	offset := queryParamInt(r, "offset")

	records, err := h.querySvc.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Ошибка получения списка файлов",
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка при получении списка файлов.")
		return
	}

	items := make([]fileListItem, 0, len(records))
	for _, record := range records {
		items = append(items, fileListItem{
			FileID:   record.FileID,
			FileName: record.FileName,
		})
	}

	writeJSON(w, http.StatusOK, items)
}

// GetFile обрабатывает GET /v1/files/{file_id}.
func (h *APIHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "file_id")

	record, err := h.querySvc.GetByID(r.Context(), fileID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID):
			apierrors.ValidationError(w, "Идентификатор файла должен быть корректным UUID.")
		case errors.Is(err, service.ErrNotFound):
			apierrors.NotFound(w, "Файл не найден")
		default:
			h.logger.Error("Ошибка получения записи о файле",
				slog.String("file_id", fileID),
				slog.String("error", err.Error()),
			)
			apierrors.InternalError(w, "Внутренняя ошибка при получении записи о файле.")
		}
		return
	}

	writeJSON(w, http.StatusOK, recordToResponse(record))
}

// recordToResponse конвертирует доменную модель в API-тип.
func recordToResponse(record *model.FileRecord) fileResponse {
	return fileResponse{
		FileID:      record.FileID,
		FileName:    record.FileName,
		FileSummary: record.FileSummary,
	}
}
