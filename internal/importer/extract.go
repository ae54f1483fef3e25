package importer

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

var (
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrEmptyFile       = errors.New("file is empty")
	ErrNoText          = errors.New("no text could be extracted")
	ErrUnreadable      = errors.New("file could not be read")
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText = "text/plain"
)

// AllowedExtensions 是允许上传的文件扩展名。
var AllowedExtensions = []string{".txt", ".pdf", ".docx"}

// ExtractText 根据扩展名与内容嗅探提取纯文本。
func ExtractText(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}

	var (
		text string
		err  error
	)
	switch detectKind(filename, data) {
	case mimePDF:
		text, err = extractPDF(data)
	case mimeDOCX:
		text, err = extractDOCX(data)
	case mimeText:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: text file is not valid UTF-8", ErrUnsupportedFile)
		}
		text = string(data)
	default:
		return "", ErrUnsupportedFile
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnreadable, filepath.Ext(filename), err)
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

func detectKind(filename string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(filename))
	sniffed := http.DetectContentType(data)

	switch ext {
	case ".pdf":
		if bytes.HasPrefix(data, []byte("%PDF")) {
			return mimePDF
		}
	case ".docx":
		if strings.HasPrefix(sniffed, "application/zip") && hasDocumentXML(data) {
			return mimeDOCX
		}
	case ".txt":
		if strings.HasPrefix(sniffed, "text/") {
			return mimeText
		}
	}
	return ""
}

func hasDocumentXML(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return true
		}
	}
	return false
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return docxText(rc)
	}
	return "", errors.New("document.xml not found")
}

// docxText 取出所有文本节点，段落与换行转为 \n。
func docxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString("\t")
			}
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				buf.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}
