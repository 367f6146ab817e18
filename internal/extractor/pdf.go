// pdf.go — извлечение текста из PDF через ledongthuc/pdf.
package extractor

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF извлекает текст из .pdf: текст страниц в порядке страниц,
// без разделителей. Библиотека паникует на некоторых битых файлах,
// поэтому разбор обёрнут в recover: наружу уходит обычная ошибка.
func extractPDF(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("разбор PDF %s: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("открытие PDF: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	totalPages := reader.NumPage()
	for i := 1; i <= totalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			return "", fmt.Errorf("извлечение текста страницы %d: %w", i, pageErr)
		}
		sb.WriteString(pageText)
	}

	return sb.String(), nil
}
