package pdf

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	pdferrors "github.com/a3tai/workorder-sheet/internal/pdf/errors"
)

// Validator checks that a document is a structurally readable PDF before
// any text is pulled out of it
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile reports whether a file on disk is a readable PDF. A failed
// check is a result, not an error.
func (v *Validator) ValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	result := &PDFValidateFileResult{
		Path:  req.Path,
		Valid: false,
	}

	if req.Path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(req.Path)
	if err != nil {
		result.Message = fmt.Sprintf("cannot access file: %v", err)
		return result, nil
	}
	if err := NewReader(v.maxFileSize).validateFileInfo(req.Path, fileInfo); err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}

	data, err := os.ReadFile(req.Path)
	if err != nil {
		result.Message = fmt.Sprintf("cannot read file: %v", err)
		return result, nil
	}

	pages, err := v.ValidateBytes(req.Path, data)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}

	result.Valid = true
	result.Pages = pages
	return result, nil
}

// ValidateBytes parses the document structure with pdfcpu in relaxed mode
// and returns its page count. Any failure is DOCUMENT_UNREADABLE.
func (v *Validator) ValidateBytes(name string, data []byte) (pages int, err error) {
	if len(data) == 0 {
		return 0, pdferrors.NewPDFError(pdferrors.ErrorTypeDocumentUnreadable, "document is empty").WithFile(name)
	}
	if v.maxFileSize > 0 && int64(len(data)) > v.maxFileSize {
		return 0, pdferrors.NewPDFError(pdferrors.ErrorTypeFileTooLarge,
			fmt.Sprintf("file too large: %d bytes (max: %d bytes)", len(data), v.maxFileSize)).WithFile(name)
	}

	defer func() {
		if rec := recover(); rec != nil {
			pages = 0
			err = pdferrors.NewPDFError(pdferrors.ErrorTypeDocumentUnreadable, "invalid PDF structure").
				WithFile(name).WithContext(fmt.Sprint(rec))
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return 0, pdferrors.WrapError(pdferrors.ErrorTypeDocumentUnreadable, "invalid PDF structure", err).WithFile(name)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, pdferrors.WrapError(pdferrors.ErrorTypeDocumentUnreadable, "cannot determine page count", err).WithFile(name)
	}

	return ctx.PageCount, nil
}
