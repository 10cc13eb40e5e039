// Package pipeline runs the whole extraction: documents in, one sorted and
// styled sheet out.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/a3tai/workorder-sheet/internal/pdf"
	pdferrors "github.com/a3tai/workorder-sheet/internal/pdf/errors"
	"github.com/a3tai/workorder-sheet/internal/render"
	"github.com/a3tai/workorder-sheet/internal/variant"
	"github.com/a3tai/workorder-sheet/internal/workorder"
)

// ErrNoRecords is returned when no page of any document produced a record
// that passed the variant's policy.
var ErrNoRecords = errors.New("no valid data found")

// DocumentSource opens a document by path. *pdf.Service satisfies it.
type DocumentSource interface {
	Open(ctx context.Context, path string) (*pdf.Document, error)
}

// Options selects the layout and the ordering of one run.
type Options struct {
	Variant      *variant.Variant
	UnknownDates workorder.UnknownDatePolicy
	// ColorSeed rotates the first palette color; nil keeps the variant's.
	ColorSeed *int
}

// Result is the outcome of one run.
type Result struct {
	RunID     string           `json:"run_id"`
	Variant   string           `json:"variant"`
	Table     *workorder.Table `json:"-"`
	Sheet     []byte           `json:"-"`
	Documents int              `json:"documents"`
	Pages     int              `json:"pages"`
	Rows      int              `json:"rows"`
	Dropped   int              `json:"dropped"`

	// Problems lists the pages skipped because they had no readable text.
	Problems *pdferrors.ErrorCollection `json:"problems,omitempty"`
}

// Service runs extractions against a document source.
type Service struct {
	source DocumentSource
	logger *zap.Logger
}

// NewService creates a pipeline over source. A nil logger discards logs.
func NewService(source DocumentSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, logger: logger}
}

// Run opens every path in order and processes them as one batch. The first
// document that cannot be opened aborts the run.
func (s *Service) Run(ctx context.Context, paths []string, opts Options) (*Result, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input documents")
	}

	docs := make([]*pdf.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := s.source.Open(ctx, path)
		if err != nil {
			s.logger.Error("document unreadable", zap.String("document", path), zap.Error(err))
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		docs = append(docs, doc)
	}
	return s.Process(ctx, docs, opts)
}

// Process extracts, normalizes and renders already opened documents. Their
// records are concatenated in document order before the single sort.
func (s *Service) Process(ctx context.Context, docs []*pdf.Document, opts Options) (*Result, error) {
	if opts.Variant == nil {
		return nil, fmt.Errorf("no variant selected")
	}
	assembler, err := opts.Variant.Assembler()
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Variant:   opts.Variant.Name,
		Documents: len(docs),
		Problems:  pdferrors.NewErrorCollection(),
	}
	log := s.logger.With(zap.String("run_id", result.RunID), zap.String("variant", result.Variant))

	var records []workorder.Record
	for _, doc := range docs {
		kept := 0
		for _, page := range doc.Pages {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			result.Pages++
			rec, ok := assembler.Assemble(doc.Name, page.Number, page.Text)
			if !ok {
				result.Dropped++
				log.Debug("page dropped by policy",
					zap.String("document", doc.Name),
					zap.Int("page", page.Number),
					zap.Stringer("policy", assembler.Policy))
				continue
			}
			records = append(records, rec)
			kept++
		}
		if doc.Problems != nil {
			for _, p := range doc.Problems.All() {
				log.Warn("page skipped", zap.String("document", doc.Name), zap.Int("page", p.PageNumber), zap.String("reason", p.Message))
			}
			result.Problems.Merge(doc.Problems)
		}
		log.Info("document processed",
			zap.String("document", doc.Name),
			zap.Int("pages", len(doc.Pages)),
			zap.Int("records", kept))
	}

	if len(records) == 0 {
		log.Warn("no records extracted", zap.Int("pages", result.Pages), zap.Int("dropped", result.Dropped))
		return result, ErrNoRecords
	}

	v := opts.Variant
	result.Table = workorder.Normalize(records, v.Table, v.Floors, opts.UnknownDates)
	result.Rows = result.Table.Len()

	style := v.Style
	if opts.ColorSeed != nil {
		style.ColorSeed = *opts.ColorSeed
	}
	result.Sheet, err = render.Render(result.Table, style)
	if err != nil {
		return nil, fmt.Errorf("failed to render sheet: %w", err)
	}

	log.Info("sheet rendered",
		zap.Int("rows", result.Rows),
		zap.Int("dropped", result.Dropped),
		zap.Int("bytes", len(result.Sheet)))
	return result, nil
}

// DefaultOutputName names a sheet after its run.
func DefaultOutputName(runID string) string {
	short := runID
	if id, err := uuid.Parse(runID); err == nil {
		short = id.String()[:8]
	}
	return fmt.Sprintf("workorders-%s.xlsx", short)
}

// SaveSheet writes data to path through a temporary file in the same
// directory, so a failed write never leaves a truncated sheet behind.
func SaveSheet(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".workorders-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save output file: %w", err)
	}
	return nil
}
