package pdf

import (
	pdferrors "github.com/a3tai/workorder-sheet/internal/pdf/errors"
)

// Page is the raw text of one PDF page, rows separated by newlines
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Document is a PDF split into readable pages
type Document struct {
	Name      string `json:"name"`
	PageCount int    `json:"page_count"`
	Pages     []Page `json:"pages"`

	// Problems lists the pages that were skipped and why
	Problems *pdferrors.ErrorCollection `json:"problems,omitempty"`
}

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// PDFValidateFileRequest represents a request to validate a PDF file
type PDFValidateFileRequest struct {
	Path string `json:"path"`
}

// PDFValidateFileResult represents the result of a PDF validation operation
type PDFValidateFileResult struct {
	Valid   bool   `json:"valid"`
	Path    string `json:"path"`
	Pages   int    `json:"pages,omitempty"`
	Message string `json:"message,omitempty"`
}
