// Пакет errors — конструкторы стандартных ошибок Summary Module.
// Единый формат: {"error": {"code": "...", "message": "..."}}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors //nolint:revive // конфликт имени со stdlib, исторически так

import (
	"encoding/json"
	"net/http"
)

// Коды ошибок API.
const (
	CodeValidationError   = "VALIDATION_ERROR"
	CodeInvalidFileType   = "INVALID_FILE_TYPE"
	CodeDuplicateFile     = "DUPLICATE_FILE"
	CodeNotFound          = "NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeStorageWriteError = "STORAGE_WRITE_ERROR"
	CodeInternalError     = "INTERNAL_ERROR"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Error errorDetail `json:"error"`
}

// errorDetail — детали ошибки.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError записывает ответ ошибки в стандартном формате.
// statusCode — HTTP статус-код, code — машиночитаемый код, message — описание.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// InvalidFileType — 400 недопустимое расширение файла.
func InvalidFileType(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeInvalidFileType, message)
}

// DuplicateFile — 400 файл с таким именем уже существует.
func DuplicateFile(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeDuplicateFile, message)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// Unauthorized — 401 требуется аутентификация.
// Заголовок WWW-Authenticate выставляет auth middleware.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// StorageWriteError — 500 ошибка записи файла на диск.
func StorageWriteError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeStorageWriteError, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}
