package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Search discovers report PDFs in a directory
type Search struct {
	maxFileSize int64
}

// NewSearch creates a new PDF search handler with the specified constraints
func NewSearch(maxFileSize int64) *Search {
	return &Search{
		maxFileSize: maxFileSize,
	}
}

// FindPDFs lists the PDF files directly inside directory, sorted by name so
// that runs over the same folder always concatenate pages in the same order.
// Files over the size limit or with a non-PDF extension are skipped.
func (s *Search) FindPDFs(directory string) ([]FileInfo, error) {
	if directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", directory, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !isPDFFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Skip files removed while listing
			continue
		}
		if info.Size() == 0 || (s.maxFileSize > 0 && info.Size() > s.maxFileSize) {
			continue
		}
		files = append(files, FileInfo{
			Path:         filepath.Join(directory, entry.Name()),
			Name:         entry.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// ExpandInputs replaces every directory in paths by the PDFs it contains,
// keeping the order of the arguments.
func (s *Search) ExpandInputs(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		files, err := s.FindPDFs(p)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			out = append(out, f.Path)
		}
	}
	return out, nil
}

func isPDFFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
