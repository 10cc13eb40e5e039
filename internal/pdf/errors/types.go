package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// PDFError describes a failure while turning a report document into pages
// and records, with enough context to tell the user which file and page it
// concerns and whether the run could continue.
type PDFError struct {
	Type        ErrorType `json:"type"`
	Message     string    `json:"message"`
	Context     string    `json:"context,omitempty"`
	Recoverable bool      `json:"recoverable"`
	Timestamp   time.Time `json:"timestamp"`
	FilePath    string    `json:"file_path,omitempty"`
	PageNumber  int       `json:"page_number,omitempty"`

	cause error
}

// ErrorType represents the categories of document and page failures
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeInvalidFile
	ErrorTypeFileTooLarge
	ErrorTypeSecurityRestriction
	ErrorTypeDocumentUnreadable
	ErrorTypePageUnreadable
	ErrorTypeEmptyPage
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

// Error implements the error interface
func (e *PDFError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
	if e.FilePath != "" {
		msg += " (" + e.FilePath
		if e.PageNumber > 0 {
			msg += fmt.Sprintf(", page %d", e.PageNumber)
		}
		msg += ")"
	}
	if e.Context != "" {
		msg += ": " + e.Context
	}
	return msg
}

// Unwrap returns the underlying library error, if any
func (e *PDFError) Unwrap() error {
	return e.cause
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeInvalidFile:
		return "INVALID_FILE"
	case ErrorTypeFileTooLarge:
		return "FILE_TOO_LARGE"
	case ErrorTypeSecurityRestriction:
		return "SECURITY_RESTRICTION"
	case ErrorTypeDocumentUnreadable:
		return "DOCUMENT_UNREADABLE"
	case ErrorTypePageUnreadable:
		return "PAGE_UNREADABLE"
	case ErrorTypeEmptyPage:
		return "EMPTY_PAGE"
	default:
		return "UNKNOWN"
	}
}

// GetSeverity returns the severity level for a given error type
func (et ErrorType) GetSeverity() ErrorSeverity {
	switch et {
	case ErrorTypeEmptyPage:
		return SeverityInfo
	case ErrorTypePageUnreadable:
		return SeverityWarning
	case ErrorTypeInvalidFile, ErrorTypeFileTooLarge, ErrorTypeSecurityRestriction:
		return SeverityError
	case ErrorTypeDocumentUnreadable:
		return SeverityFatal
	default:
		return SeverityError
	}
}

// IsRecoverable reports whether the run can go on after this kind of error.
// Only page-level problems are; a bad document aborts the run.
func (et ErrorType) IsRecoverable() bool {
	switch et {
	case ErrorTypePageUnreadable, ErrorTypeEmptyPage:
		return true
	default:
		return false
	}
}

// NewPDFError creates a new PDFError
func NewPDFError(errorType ErrorType, message string) *PDFError {
	return &PDFError{
		Type:        errorType,
		Message:     message,
		Recoverable: errorType.IsRecoverable(),
		Timestamp:   time.Now(),
	}
}

// WrapError wraps a library error as a PDFError, keeping it for errors.Is
// and errors.As.
func WrapError(errorType ErrorType, message string, err error) *PDFError {
	e := NewPDFError(errorType, message)
	if err != nil {
		e.Context = err.Error()
		e.cause = err
	}
	return e
}

// WithContext adds context to an existing PDFError
func (e *PDFError) WithContext(context string) *PDFError {
	e.Context = context
	return e
}

// WithFile adds file path information to an existing PDFError
func (e *PDFError) WithFile(filePath string) *PDFError {
	e.FilePath = filePath
	return e
}

// WithPage adds page number information to an existing PDFError
func (e *PDFError) WithPage(pageNumber int) *PDFError {
	e.PageNumber = pageNumber
	return e
}

// GetSeverity returns the severity of this specific error
func (e *PDFError) GetSeverity() ErrorSeverity {
	return e.Type.GetSeverity()
}

// IsFatal returns true if this error aborts the run
func (e *PDFError) IsFatal() bool {
	return e.GetSeverity() == SeverityFatal
}

// TypeOf returns the ErrorType of the first PDFError in err's chain, or
// ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var pe *PDFError
	if stderrors.As(err, &pe) {
		return pe.Type
	}
	return ErrorTypeUnknown
}

// ErrorCollection gathers the recoverable problems of a run
type ErrorCollection struct {
	Errors   []*PDFError `json:"errors"`
	Warnings []*PDFError `json:"warnings"`
}

// NewErrorCollection creates a new error collection
func NewErrorCollection() *ErrorCollection {
	return &ErrorCollection{
		Errors:   make([]*PDFError, 0),
		Warnings: make([]*PDFError, 0),
	}
}

// Add adds an error to the appropriate list based on severity
func (ec *ErrorCollection) Add(err *PDFError) {
	severity := err.GetSeverity()
	if severity == SeverityWarning || severity == SeverityInfo {
		ec.Warnings = append(ec.Warnings, err)
	} else {
		ec.Errors = append(ec.Errors, err)
	}
}

// Merge appends every entry of other
func (ec *ErrorCollection) Merge(other *ErrorCollection) {
	if other == nil {
		return
	}
	ec.Errors = append(ec.Errors, other.Errors...)
	ec.Warnings = append(ec.Warnings, other.Warnings...)
}

// All returns errors followed by warnings
func (ec *ErrorCollection) All() []*PDFError {
	all := make([]*PDFError, 0, len(ec.Errors)+len(ec.Warnings))
	all = append(all, ec.Errors...)
	return append(all, ec.Warnings...)
}

// Count returns the total number of errors and warnings
func (ec *ErrorCollection) Count() (errors, warnings int) {
	return len(ec.Errors), len(ec.Warnings)
}

// Summary returns a text summary of all errors and warnings
func (ec *ErrorCollection) Summary() string {
	errorCount, warningCount := ec.Count()
	if errorCount == 0 && warningCount == 0 {
		return "No errors or warnings"
	}
	return fmt.Sprintf("Found %d error(s) and %d warning(s)", errorCount, warningCount)
}
