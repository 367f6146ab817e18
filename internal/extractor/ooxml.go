// ooxml.go — разбор OOXML-контейнеров (.docx, .pptx).
// Оба формата — zip-архивы с XML внутри: word/document.xml для Word,
// ppt/slides/slideN.xml для PowerPoint.
package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// XML-неймспейсы OOXML.
const (
	nsWordML    = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsDrawingML = "http://schemas.openxmlformats.org/drawingml/2006/main"
)

// extractDocx извлекает текст из .docx: все текстовые run'ы (w:t)
// word/document.xml в порядке документа, без разделителей между абзацами.
func extractDocx(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("открытие docx-архива: %w", err)
	}
	defer zr.Close()

	data, err := readZipPart(&zr.Reader, "word/document.xml")
	if err != nil {
		return "", err
	}

	text, err := collectRunText(data, nsWordML)
	if err != nil {
		return "", fmt.Errorf("разбор word/document.xml: %w", err)
	}
	return text, nil
}

// slideNameRe — имя части слайда внутри pptx-архива.
var slideNameRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// extractPptx извлекает текст из .pptx: текстовые run'ы (a:t) каждого
// слайда, слайды в порядке номеров, без разделителей между фигурами.
func extractPptx(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("открытие pptx-архива: %w", err)
	}
	defer zr.Close()

	// Собираем части слайдов и сортируем по номеру:
	// порядок элементов в zip-архиве не гарантирован.
	type slidePart struct {
		num  int
		file *zip.File
	}
	var slides []slidePart
	for _, f := range zr.File {
		m := slideNameRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		num, convErr := strconv.Atoi(m[1])
		if convErr != nil {
			continue
		}
		slides = append(slides, slidePart{num: num, file: f})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var sb strings.Builder
	for _, s := range slides {
		rc, openErr := s.file.Open()
		if openErr != nil {
			return "", fmt.Errorf("открытие %s: %w", s.file.Name, openErr)
		}
		data, readErr := io.ReadAll(rc)
		rc.Close()
		if readErr != nil {
			return "", fmt.Errorf("чтение %s: %w", s.file.Name, readErr)
		}

		text, parseErr := collectRunText(data, nsDrawingML)
		if parseErr != nil {
			return "", fmt.Errorf("разбор %s: %w", s.file.Name, parseErr)
		}
		sb.WriteString(text)
	}

	return sb.String(), nil
}

// readZipPart читает одну именованную часть из zip-архива.
func readZipPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("открытие части %s: %w", name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("чтение части %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("часть %s не найдена в архиве", name)
}

// collectRunText собирает текст всех элементов <t> указанного неймспейса
// в порядке документа. Для OOXML это текстовые run'ы: w:t в WordML,
// a:t в DrawingML. Разделители не вставляются.
func collectRunText(data []byte, space string) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	var sb strings.Builder
	depth := 0 // глубина вложенности внутри текущего элемента <t>

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth > 0 {
				depth++
				continue
			}
			if t.Name.Local == "t" && t.Name.Space == space {
				depth = 1
			}
		case xml.EndElement:
			if depth > 0 {
				depth--
			}
		case xml.CharData:
			if depth > 0 {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}
