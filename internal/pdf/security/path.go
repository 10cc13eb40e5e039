package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator confines every input document and output sheet to one
// configured directory
type PathValidator struct {
	configuredDirectory string
}

// NewPathValidator creates a new path validator for the given directory
func NewPathValidator(configuredDirectory string) (*PathValidator, error) {
	if configuredDirectory == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}

	absDir, err := filepath.Abs(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configured directory: %w", err)
	}

	return &PathValidator{
		configuredDirectory: absDir,
	}, nil
}

// GetConfiguredDirectory returns the configured directory path
func (v *PathValidator) GetConfiguredDirectory() string {
	return v.configuredDirectory
}

// Resolve turns path into an absolute path, joining relative paths onto the
// configured directory, and rejects anything that ends up outside it.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.configuredDirectory, path)
	}
	absPath := filepath.Clean(path)

	within, err := v.IsPathWithinDirectory(absPath)
	if err != nil {
		return "", fmt.Errorf("path validation failed: %w", err)
	}
	if !within {
		return "", fmt.Errorf("path is outside configured directory: %s", path)
	}
	return absPath, nil
}

// ValidatePath checks if a path is within the configured directory
func (v *PathValidator) ValidatePath(path string) error {
	_, err := v.Resolve(path)
	return err
}

// ResolveOutput resolves the path of a sheet to be written. The file may not
// exist yet, but its parent directory must resolve inside the configured
// directory.
func (v *PathValidator) ResolveOutput(path string) (string, error) {
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return "", fmt.Errorf("output must be an .xlsx file: %s", path)
	}
	return v.Resolve(path)
}

// IsPathWithinDirectory checks if a path is within the configured directory,
// following symlinks on both sides when they exist
func (v *PathValidator) IsPathWithinDirectory(path string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}

	dir := v.configuredDirectory
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}

	real := absPath
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		real = resolved
	} else if resolvedParent, perr := filepath.EvalSymlinks(filepath.Dir(absPath)); perr == nil {
		real = filepath.Join(resolvedParent, filepath.Base(absPath))
	}

	return isWithin(absPath, v.configuredDirectory, dir) && isWithin(real, v.configuredDirectory, dir), nil
}

func isWithin(path string, dirs ...string) bool {
	for _, dir := range dirs {
		if path == dir {
			return true
		}
		prefix := dir
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// ValidateDirectory checks that dirPath is an existing directory inside the
// configured directory
func (v *PathValidator) ValidateDirectory(dirPath string) (string, error) {
	resolved, err := v.Resolve(dirPath)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", dirPath)
	}
	return resolved, nil
}
