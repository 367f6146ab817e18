package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bigkaa/summary-module/internal/domain/model"
	"github.com/bigkaa/summary-module/internal/extractor"
	"github.com/bigkaa/summary-module/internal/repository"
	"github.com/bigkaa/summary-module/internal/service"
	"github.com/bigkaa/summary-module/internal/storage/filestore"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memRepo — in-memory реализация FileRepository.
type memRepo struct {
	records []*model.FileRecord
}

func (m *memRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (m *memRepo) Insert(ctx context.Context, id uuid.UUID, name, summary string) error {
	for _, r := range m.records {
		if r.FileName == name {
			return repository.ErrDuplicate
		}
	}
	m.records = append(m.records, &model.FileRecord{
		FileID:      id.String(),
		FileName:    name,
		FileSummary: summary,
	})
	return nil
}

func (m *memRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	for _, r := range m.records {
		if r.FileName == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.FileRecord, error) {
	for _, r := range m.records {
		if r.FileID == id.String() {
			return r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRepo) List(ctx context.Context, limit, offset int) ([]*model.FileRecord, error) {
	if offset >= len(m.records) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.records) {
		end = len(m.records)
	}
	return m.records[offset:end], nil
}

// stubSummarizer — summarizer с фиксированным ответом.
type stubSummarizer struct {
	summary string
	err     error
}

func (s *stubSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	return s.summary, s.err
}

// newTestRouter собирает роутер поверх реальных сервисов:
// настоящие extractor и filestore, in-memory репозиторий, stub summarizer.
func newTestRouter(t *testing.T, repo *memRepo, sum service.Summarizer) chi.Router {
	t.Helper()

	blobs, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	logger := discardLogger()
	ingestSvc := service.NewIngestService(repo, blobs, extractor.New(logger), sum, logger)
	querySvc := service.NewQueryService(repo, 1000, logger)
	h := NewAPIHandler(ingestSvc, querySvc, NewHealthHandler(nil), 1<<20, logger)

	router := chi.NewRouter()
	router.Route("/v1/files", func(r chi.Router) {
		r.Post("/", h.UploadFile)
		r.Get("/", h.ListFiles)
		r.Get("/{file_id}", h.GetFile)
	})
	return router
}

// docxBytes собирает минимальный .docx с одним абзацем текста.
func docxBytes(t *testing.T, text string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("ошибка создания document.xml: %v", err)
	}
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("ошибка записи document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("ошибка закрытия архива: %v", err)
	}
	return buf.Bytes()
}

// multipartUpload собирает multipart-запрос с полем file.
func multipartUpload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("ошибка создания form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("ошибка записи содержимого: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("ошибка закрытия multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/files", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// errorCode извлекает код из стандартного конверта ошибки.
func errorCode(t *testing.T, body *bytes.Buffer) string {
	t.Helper()

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body.Bytes(), &resp); err != nil {
		t.Fatalf("ошибка разбора конверта ошибки: %v (тело: %s)", err, body.String())
	}
	return resp.Error.Code
}

// TestUploadFile проверяет успешную загрузку .docx через весь стек:
// multipart → пайплайн → запись в репозиторий → JSON-ответ.
func TestUploadFile(t *testing.T) {
	repo := &memRepo{}
	router := newTestRouter(t, repo, &stubSummarizer{summary: "краткое резюме"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "report.docx", docxBytes(t, "Содержимое отчёта")))

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидался 200 (тело: %s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		FileID      string `json:"file_id"`
		FileName    string `json:"file_name"`
		FileSummary string `json:"file_summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("ошибка разбора ответа: %v", err)
	}
	if resp.FileName != "report.docx" {
		t.Errorf("file_name = %q, ожидалось report.docx", resp.FileName)
	}
	if resp.FileSummary != "краткое резюме" {
		t.Errorf("file_summary = %q, ожидалось резюме summarizer'а", resp.FileSummary)
	}
	if _, err := uuid.Parse(resp.FileID); err != nil {
		t.Errorf("file_id %q не является UUID: %v", resp.FileID, err)
	}
	if len(repo.records) != 1 {
		t.Errorf("записей в репозитории = %d, ожидалась 1", len(repo.records))
	}
}

// TestUploadFile_InvalidType проверяет 400 INVALID_FILE_TYPE.
func TestUploadFile_InvalidType(t *testing.T) {
	router := newTestRouter(t, &memRepo{}, &stubSummarizer{summary: "s"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "notes.txt", []byte("просто текст")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("статус = %d, ожидался 400", rec.Code)
	}
	if code := errorCode(t, rec.Body); code != "INVALID_FILE_TYPE" {
		t.Errorf("код = %q, ожидался INVALID_FILE_TYPE", code)
	}
}

// TestUploadFile_Duplicate проверяет 400 DUPLICATE_FILE при повторе имени.
func TestUploadFile_Duplicate(t *testing.T) {
	repo := &memRepo{}
	router := newTestRouter(t, repo, &stubSummarizer{summary: "s"})

	first := httptest.NewRecorder()
	router.ServeHTTP(first, multipartUpload(t, "report.docx", docxBytes(t, "v1")))
	if first.Code != http.StatusOK {
		t.Fatalf("первая загрузка: статус = %d, ожидался 200", first.Code)
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, multipartUpload(t, "report.docx", docxBytes(t, "v2")))
	if second.Code != http.StatusBadRequest {
		t.Fatalf("повторная загрузка: статус = %d, ожидался 400", second.Code)
	}
	if code := errorCode(t, second.Body); code != "DUPLICATE_FILE" {
		t.Errorf("код = %q, ожидался DUPLICATE_FILE", code)
	}
	if len(repo.records) != 1 {
		t.Errorf("записей = %d, дубликат не должен создавать запись", len(repo.records))
	}
}

// TestUploadFile_MissingFileField проверяет 400 при отсутствии поля file.
func TestUploadFile_MissingFileField(t *testing.T) {
	router := newTestRouter(t, &memRepo{}, &stubSummarizer{summary: "s"})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("other", "значение"); err != nil {
		t.Fatalf("ошибка записи поля: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("ошибка закрытия multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/files", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("статус = %d, ожидался 400", rec.Code)
	}
	if code := errorCode(t, rec.Body); code != "VALIDATION_ERROR" {
		t.Errorf("код = %q, ожидался VALIDATION_ERROR", code)
	}
}

// TestUploadFile_CorruptDocument проверяет деградацию: битый .docx
// загружается успешно, summarizer получает sentinel-текст.
func TestUploadFile_CorruptDocument(t *testing.T) {
	repo := &memRepo{}
	router := newTestRouter(t, repo, &stubSummarizer{summary: "резюме"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "broken.docx", []byte("это не zip")))

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидался 200 (деградация не фатальна)", rec.Code)
	}
	if len(repo.records) != 1 {
		t.Fatalf("записей = %d, ожидалась 1", len(repo.records))
	}
}

// TestListFiles проверяет список без резюме в элементах.
func TestListFiles(t *testing.T) {
	repo := &memRepo{records: []*model.FileRecord{
		{FileID: uuid.NewString(), FileName: "a.pdf", FileSummary: "резюме a"},
		{FileID: uuid.NewString(), FileName: "b.docx", FileSummary: "резюме b"},
	}}
	router := newTestRouter(t, repo, &stubSummarizer{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/files", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидался 200", rec.Code)
	}

	var items []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("ошибка разбора ответа: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("элементов = %d, ожидалось 2", len(items))
	}
	if items[0]["file_name"] != "a.pdf" {
		t.Errorf("file_name = %v, ожидалось a.pdf", items[0]["file_name"])
	}
	if _, ok := items[0]["file_summary"]; ok {
		t.Error("элемент списка содержит file_summary, ожидался только id и имя")
	}
}

// TestListFiles_Empty проверяет пустой массив (не null) для пустой коллекции.
func TestListFiles_Empty(t *testing.T) {
	router := newTestRouter(t, &memRepo{}, &stubSummarizer{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/files", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидался 200", rec.Code)
	}
	if body := bytes.TrimSpace(rec.Body.Bytes()); string(body) != "[]" {
		t.Errorf("тело = %s, ожидался пустой массив []", body)
	}
}

// TestListFiles_Pagination проверяет query-параметры limit и offset.
func TestListFiles_Pagination(t *testing.T) {
	repo := &memRepo{}
	for i := 0; i < 5; i++ {
		repo.records = append(repo.records, &model.FileRecord{
			FileID:      uuid.NewString(),
			FileName:    string(rune('a'+i)) + ".pdf",
			FileSummary: "s",
		})
	}
	router := newTestRouter(t, repo, &stubSummarizer{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/files?limit=2&offset=1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидался 200", rec.Code)
	}

	var items []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("ошибка разбора ответа: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("элементов = %d, ожидалось 2", len(items))
	}
	if items[0]["file_name"] != "b.pdf" {
		t.Errorf("file_name = %v, ожидалось b.pdf", items[0]["file_name"])
	}
}

// TestGetFile проверяет получение записи по идентификатору.
func TestGetFile(t *testing.T) {
	id := uuid.NewString()
	repo := &memRepo{records: []*model.FileRecord{
		{FileID: id, FileName: "report.pdf", FileSummary: "резюме отчёта"},
	}}
	router := newTestRouter(t, repo, &stubSummarizer{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/files/"+id, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидался 200", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("ошибка разбора ответа: %v", err)
	}
	if resp["file_id"] != id {
		t.Errorf("file_id = %q, ожидалось %q", resp["file_id"], id)
	}
	if resp["file_summary"] != "резюме отчёта" {
		t.Errorf("file_summary = %q, ожидалось резюме", resp["file_summary"])
	}
}

// TestGetFile_NotFound проверяет 404 для отсутствующей записи.
func TestGetFile_NotFound(t *testing.T) {
	router := newTestRouter(t, &memRepo{}, &stubSummarizer{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/files/"+uuid.NewString(), nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("статус = %d, ожидался 404", rec.Code)
	}
	if code := errorCode(t, rec.Body); code != "NOT_FOUND" {
		t.Errorf("код = %q, ожидался NOT_FOUND", code)
	}
}

// TestGetFile_InvalidID проверяет 400 для некорректного UUID.
func TestGetFile_InvalidID(t *testing.T) {
	router := newTestRouter(t, &memRepo{}, &stubSummarizer{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/files/not-a-uuid", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("статус = %d, ожидался 400", rec.Code)
	}
	if code := errorCode(t, rec.Body); code != "VALIDATION_ERROR" {
		t.Errorf("код = %q, ожидался VALIDATION_ERROR", code)
	}
}
