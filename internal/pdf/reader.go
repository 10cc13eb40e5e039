package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	pdferrors "github.com/a3tai/workorder-sheet/internal/pdf/errors"
)

// Reader turns PDF bytes into per-page text
type Reader struct {
	maxFileSize int64
}

// NewReader creates a new PDF reader with the specified constraints
func NewReader(maxFileSize int64) *Reader {
	return &Reader{
		maxFileSize: maxFileSize,
	}
}

// ReadFile loads a PDF from disk and splits it into pages
func (r *Reader) ReadFile(ctx context.Context, path string) (*Document, error) {
	if path == "" {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidFile, "path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidFile, "cannot access file", err).WithFile(path)
	}
	if err := r.validateFileInfo(path, fileInfo); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidFile, "cannot read file", err).WithFile(path)
	}

	return r.ReadBytes(ctx, path, data)
}

// ReadBytes splits an in-memory PDF into pages. name identifies the document
// in errors and records. A document the PDF library cannot open at all is a
// fatal DOCUMENT_UNREADABLE error; a page without text is recorded in
// Document.Problems and skipped.
func (r *Reader) ReadBytes(ctx context.Context, name string, data []byte) (doc *Document, err error) {
	if len(data) == 0 {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeDocumentUnreadable, "document is empty").WithFile(name)
	}
	if r.maxFileSize > 0 && int64(len(data)) > r.maxFileSize {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeFileTooLarge,
			fmt.Sprintf("file too large: %d bytes (max: %d bytes)", len(data), r.maxFileSize)).WithFile(name)
	}

	// ledongthuc/pdf panics on some malformed cross-reference tables
	defer func() {
		if rec := recover(); rec != nil {
			doc = nil
			err = pdferrors.NewPDFError(pdferrors.ErrorTypeDocumentUnreadable, "cannot open document").
				WithFile(name).WithContext(fmt.Sprint(rec))
		}
	}()

	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeDocumentUnreadable, "cannot open document", err).WithFile(name)
	}

	doc = &Document{
		Name:      name,
		PageCount: pdfReader.NumPage(),
		Problems:  pdferrors.NewErrorCollection(),
	}

	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, perr := pageText(pdfReader, pageNum)
		if perr != nil {
			doc.Problems.Add(perr.WithFile(name).WithPage(pageNum))
			continue
		}
		doc.Pages = append(doc.Pages, Page{Number: pageNum, Text: text})
	}

	return doc, nil
}

// pageText returns the text of one page, one visual row per line. It falls
// back to the library's plain-text rendering when rows cannot be built.
func pageText(pdfReader *pdf.Reader, pageNum int) (text string, perr *pdferrors.PDFError) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			perr = pdferrors.NewPDFError(pdferrors.ErrorTypePageUnreadable, "page content could not be decoded").
				WithContext(fmt.Sprint(rec))
		}
	}()

	page := pdfReader.Page(pageNum)
	if page.V.IsNull() {
		return "", pdferrors.NewPDFError(pdferrors.ErrorTypePageUnreadable, "page object is missing")
	}

	rows, err := page.GetTextByRow()
	if err == nil && len(rows) > 0 {
		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			lines = append(lines, joinRow(row.Content))
		}
		text = strings.Join(lines, "\n")
	} else {
		text, err = page.GetPlainText(nil)
		if err != nil {
			return "", pdferrors.WrapError(pdferrors.ErrorTypePageUnreadable, "cannot extract page text", err)
		}
	}

	if strings.TrimSpace(text) == "" {
		return "", pdferrors.NewPDFError(pdferrors.ErrorTypeEmptyPage, "page has no extractable text")
	}
	return text, nil
}

// joinRow concatenates the text runs of one row in x order. Runs drawn at
// distinct x positions are separated by a single space; fragments sharing
// an x position belong to the same run and are joined as is.
func joinRow(runs pdf.TextHorizontal) string {
	var b strings.Builder
	for i, run := range runs {
		if i > 0 && run.X > runs[i-1].X && b.Len() > 0 {
			last, _ := utf8.DecodeLastRuneInString(b.String())
			first, _ := utf8.DecodeRuneInString(run.S)
			if !unicode.IsSpace(last) && !unicode.IsSpace(first) {
				b.WriteByte(' ')
			}
		}
		b.WriteString(run.S)
	}
	return b.String()
}

// validateFileInfo performs basic validation on a PDF file
func (r *Reader) validateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidFile, "path is a directory, not a file").WithFile(filePath)
	}

	if !strings.EqualFold(filepath.Ext(filePath), ".pdf") {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidFile, "file is not a PDF").WithFile(filePath)
	}

	if r.maxFileSize > 0 && fileInfo.Size() > r.maxFileSize {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeFileTooLarge,
			fmt.Sprintf("file too large: %d bytes (max: %d bytes)", fileInfo.Size(), r.maxFileSize)).WithFile(filePath)
	}

	return nil
}
