package pdf

import (
	"context"
	"fmt"

	pdferrors "github.com/a3tai/workorder-sheet/internal/pdf/errors"
	"github.com/a3tai/workorder-sheet/internal/pdf/security"
)

// Service opens report documents for the extraction pipeline, enforcing the
// directory boundary and size limit
type Service struct {
	maxFileSize   int64
	validate      bool
	reader        *Reader
	validator     *Validator
	search        *Search
	pathValidator *security.PathValidator
}

// NewService creates a new PDF service. When validate is set every document
// is checked with pdfcpu before its text is read.
func NewService(maxFileSize int64, configuredDirectory string, validate bool) (*Service, error) {
	pathValidator, err := security.NewPathValidator(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	return &Service{
		maxFileSize:   maxFileSize,
		validate:      validate,
		reader:        NewReader(maxFileSize),
		validator:     NewValidator(maxFileSize),
		search:        NewSearch(maxFileSize),
		pathValidator: pathValidator,
	}, nil
}

// Open reads one document from a path inside the configured directory
func (s *Service) Open(ctx context.Context, path string) (*Document, error) {
	resolved, err := s.pathValidator.Resolve(path)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeSecurityRestriction, "security validation failed", err).WithFile(path)
	}

	if !s.validate {
		return s.reader.ReadFile(ctx, resolved)
	}

	result, err := s.validator.ValidateFile(PDFValidateFileRequest{Path: resolved})
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeDocumentUnreadable, "document failed validation").
			WithFile(resolved).WithContext(result.Message)
	}
	return s.reader.ReadFile(ctx, resolved)
}

// OpenBytes reads an uploaded document that never touched the disk
func (s *Service) OpenBytes(ctx context.Context, name string, data []byte) (*Document, error) {
	if s.validate {
		if _, err := s.validator.ValidateBytes(name, data); err != nil {
			return nil, err
		}
	}
	return s.reader.ReadBytes(ctx, name, data)
}

// PDFValidateFile performs validation on a PDF file
func (s *Service) PDFValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	resolved, err := s.pathValidator.Resolve(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	req.Path = resolved
	return s.validator.ValidateFile(req)
}

// ResolveInputs validates every path and expands directories into the PDFs
// they hold. An empty list means the configured directory.
func (s *Service) ResolveInputs(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{s.pathValidator.GetConfiguredDirectory()}
	}

	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		r, err := s.pathValidator.Resolve(p)
		if err != nil {
			return nil, fmt.Errorf("security validation failed: %w", err)
		}
		resolved = append(resolved, r)
	}
	return s.search.ExpandInputs(resolved)
}

// ResolveOutput validates the path a sheet will be written to
func (s *Service) ResolveOutput(path string) (string, error) {
	out, err := s.pathValidator.ResolveOutput(path)
	if err != nil {
		return "", fmt.Errorf("security validation failed: %w", err)
	}
	return out, nil
}

// FindPDFsInDirectory lists the PDFs of a directory inside the configured one
func (s *Service) FindPDFsInDirectory(directory string) ([]FileInfo, error) {
	if directory == "" {
		directory = s.pathValidator.GetConfiguredDirectory()
	}
	dir, err := s.pathValidator.ValidateDirectory(directory)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.search.FindPDFs(dir)
}

// GetConfiguredDirectory returns the directory all paths are confined to
func (s *Service) GetConfiguredDirectory() string {
	return s.pathValidator.GetConfiguredDirectory()
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}
