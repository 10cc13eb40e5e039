package mcp

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/a3tai/workorder-sheet/internal/config"
	"github.com/a3tai/workorder-sheet/internal/pdf"
	"github.com/a3tai/workorder-sheet/internal/pdf/pdftest"
	"github.com/a3tai/workorder-sheet/internal/variant"
)

const workOrderPage = `WORKORDER # : 555
Location: SECOND MEZZANINE FLOOR near Column C12 Axis 7
Phase # 2
JP Code : XYZ-I
Asset QTY : 3
Scheduel Start : Jan 15, 2024`

func testConfig(dir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Mode = config.ModeStdio
	cfg.Directory = dir
	cfg.ServerName = "test-server"
	cfg.MaxFileSize = 1024 * 1024
	return cfg
}

func newTestServer(t *testing.T, dir string) *Server {
	t.Helper()

	cfg := testConfig(dir)
	pdfService, err := pdf.NewService(cfg.MaxFileSize, dir, false)
	if err != nil {
		t.Fatalf("failed to create PDF service: %v", err)
	}

	server, err := NewServer(cfg, pdfService, variant.NewRegistry(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return server
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestNewServer(t *testing.T) {
	tempDir := t.TempDir()
	cfg := testConfig(tempDir)

	pdfService, err := pdf.NewService(cfg.MaxFileSize, tempDir, false)
	if err != nil {
		t.Fatalf("failed to create PDF service: %v", err)
	}
	registry := variant.NewRegistry()

	tests := []struct {
		name        string
		config      *config.Config
		service     *pdf.Service
		registry    *variant.Registry
		expectError bool
	}{
		{"valid", cfg, pdfService, registry, false},
		{"nil config", nil, pdfService, registry, true},
		{"nil service", cfg, nil, registry, true},
		{"nil registry", cfg, pdfService, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewServer(tt.config, tt.service, tt.registry, nil)

			if tt.expectError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if server.config != tt.config {
				t.Error("server config not set correctly")
			}
			if server.mcpServer == nil {
				t.Error("mcpServer should be initialized")
			}
			if server.logger == nil {
				t.Error("logger should default to a no-op logger")
			}
		})
	}
}

func TestServer_HandleWorkorderExtract(t *testing.T) {
	tempDir := t.TempDir()
	server := newTestServer(t, tempDir)
	pdftest.WriteFile(t, tempDir, "tower.pdf", workOrderPage, "Delivery note\nNothing to extract")

	result, err := server.handleWorkorderExtract(context.Background(), callRequest(map[string]interface{}{
		"paths":  []interface{}{"tower.pdf"},
		"output": "march.xlsx",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))

	text := extractTextFromResult(result)
	assert.Contains(t, text, "Extracted 1 work order(s)")
	assert.Contains(t, text, filepath.Join(tempDir, "march.xlsx"))
	assert.Contains(t, text, "Variant: fhc")
	assert.Contains(t, text, "pages without a record: 1")

	info, err := os.Stat(filepath.Join(tempDir, "march.xlsx"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestServer_HandleWorkorderExtract_DefaultDirectory(t *testing.T) {
	tempDir := t.TempDir()
	server := newTestServer(t, tempDir)
	pdftest.WriteFile(t, tempDir, "a.pdf", workOrderPage)
	pdftest.WriteFile(t, tempDir, "b.pdf", workOrderPage)

	result, err := server.handleWorkorderExtract(context.Background(), callRequest(nil))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))
	assert.Contains(t, extractTextFromResult(result), "Extracted 2 work order(s)")

	sheets, err := filepath.Glob(filepath.Join(tempDir, "workorders-*.xlsx"))
	require.NoError(t, err)
	assert.Len(t, sheets, 1)
}

func TestServer_HandleWorkorderExtract_NoRecords(t *testing.T) {
	tempDir := t.TempDir()
	server := newTestServer(t, tempDir)
	pdftest.WriteFile(t, tempDir, "memo.pdf", "Delivery note\nNothing to extract")

	result, err := server.handleWorkorderExtract(context.Background(), callRequest(map[string]interface{}{
		"paths": "memo.pdf",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "No valid data found in 1 page(s) of 1 document(s) using variant fhc",
		extractTextFromResult(result))

	sheets, _ := filepath.Glob(filepath.Join(tempDir, "*.xlsx"))
	assert.Empty(t, sheets)
}

func TestServer_HandleWorkorderExtract_Errors(t *testing.T) {
	tempDir := t.TempDir()
	server := newTestServer(t, tempDir)
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "garbage.pdf"), []byte("not a pdf"), 0o600))
	pdftest.WriteFile(t, tempDir, "tower.pdf", workOrderPage)
	emptyDir := filepath.Join(tempDir, "empty")
	require.NoError(t, os.Mkdir(emptyDir, 0o750))

	tests := []struct {
		name         string
		args         map[string]interface{}
		expectError  bool
		expectedText string
	}{
		{
			name:         "unknown variant",
			args:         map[string]interface{}{"variant": "bridge"},
			expectError:  true,
			expectedText: "available",
		},
		{
			name:         "bad unknown dates",
			args:         map[string]interface{}{"unknown_dates": "middle"},
			expectError:  true,
			expectedText: "middle",
		},
		{
			name:         "paths not strings",
			args:         map[string]interface{}{"paths": []interface{}{1, 2}},
			expectError:  true,
			expectedText: "paths must be strings",
		},
		{
			name:         "outside directory",
			args:         map[string]interface{}{"paths": []interface{}{"../elsewhere.pdf"}},
			expectError:  true,
			expectedText: "security validation failed",
		},
		{
			name:         "unreadable document",
			args:         map[string]interface{}{"paths": []interface{}{"garbage.pdf"}},
			expectError:  true,
			expectedText: "garbage.pdf",
		},
		{
			name:         "bad output",
			args:         map[string]interface{}{"paths": []interface{}{"tower.pdf"}, "output": "out.csv"},
			expectError:  true,
			expectedText: "output must be an .xlsx file",
		},
		{
			name:         "empty directory",
			args:         map[string]interface{}{"paths": []interface{}{"empty"}},
			expectError:  false,
			expectedText: "No PDF reports found to extract",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := server.handleWorkorderExtract(context.Background(), callRequest(tt.args))
			if err != nil {
				t.Fatalf("handler should not return errors: %v", err)
			}
			if result.IsError != tt.expectError {
				t.Errorf("expected IsError=%v, got %v (%s)", tt.expectError, result.IsError, extractTextFromResult(result))
			}
			if text := extractTextFromResult(result); !strings.Contains(text, tt.expectedText) {
				t.Errorf("expected text to contain %q, got %q", tt.expectedText, text)
			}
		})
	}
}

func TestServer_HandleWorkorderExtractUpload(t *testing.T) {
	tempDir := t.TempDir()
	server := newTestServer(t, tempDir)
	content := base64.StdEncoding.EncodeToString(pdftest.BuildWords(workOrderPage, ""))

	result, err := server.handleWorkorderExtractUpload(context.Background(), callRequest(map[string]interface{}{
		"name":    "attachments/tower.pdf",
		"content": content,
		"output":  "upload.xlsx",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))

	text := extractTextFromResult(result)
	assert.Contains(t, text, "Extracted 1 work order(s)")
	assert.Contains(t, text, filepath.Join(tempDir, "upload.xlsx"))
	assert.Contains(t, text, "Documents: 1, pages read: 1")
	assert.Contains(t, text, "- tower.pdf page 2")

	_, err = os.Stat(filepath.Join(tempDir, "upload.xlsx"))
	require.NoError(t, err)
}

func TestServer_HandleWorkorderExtractUpload_NoRecords(t *testing.T) {
	server := newTestServer(t, t.TempDir())
	content := base64.StdEncoding.EncodeToString(pdftest.Build("Delivery note"))

	result, err := server.handleWorkorderExtractUpload(context.Background(), callRequest(map[string]interface{}{
		"name":    "memo.pdf",
		"content": content,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "No valid data found in 1 page(s) of 1 document(s) using variant fhc",
		extractTextFromResult(result))
}

func TestServer_HandleWorkorderExtractUpload_Errors(t *testing.T) {
	tempDir := t.TempDir()
	cfg := testConfig(tempDir)
	cfg.MaxFileSize = 64
	pdfService, err := pdf.NewService(cfg.MaxFileSize, tempDir, true)
	require.NoError(t, err)
	small, err := NewServer(cfg, pdfService, variant.NewRegistry(), zaptest.NewLogger(t))
	require.NoError(t, err)

	server := newTestServer(t, tempDir)
	valid := base64.StdEncoding.EncodeToString(pdftest.Build(workOrderPage))
	notPDF := base64.StdEncoding.EncodeToString([]byte("hello"))
	broken := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 broken"))

	tests := []struct {
		name         string
		server       *Server
		args         map[string]interface{}
		expectedText string
	}{
		{
			name:         "missing name",
			server:       server,
			args:         map[string]interface{}{"content": valid},
			expectedText: `required argument "name" not found`,
		},
		{
			name:         "missing content",
			server:       server,
			args:         map[string]interface{}{"name": "tower.pdf"},
			expectedText: `required argument "content" not found`,
		},
		{
			name:         "invalid base64",
			server:       server,
			args:         map[string]interface{}{"name": "tower.pdf", "content": "%%%"},
			expectedText: "not valid base64",
		},
		{
			name:         "not a pdf",
			server:       server,
			args:         map[string]interface{}{"name": "notes.pdf", "content": notPDF},
			expectedText: "notes.pdf",
		},
		{
			name:         "unknown variant",
			server:       server,
			args:         map[string]interface{}{"name": "tower.pdf", "content": valid, "variant": "bridge"},
			expectedText: "available",
		},
		{
			name:         "bad output",
			server:       server,
			args:         map[string]interface{}{"name": "tower.pdf", "content": valid, "output": "../out.xlsx"},
			expectedText: "security validation failed",
		},
		{
			name:         "over size limit",
			server:       small,
			args:         map[string]interface{}{"name": "tower.pdf", "content": valid},
			expectedText: "exceeds the 64 byte limit",
		},
		{
			name:         "fails structural validation",
			server:       small,
			args:         map[string]interface{}{"name": "tiny.pdf", "content": broken},
			expectedText: "tiny.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.server.handleWorkorderExtractUpload(context.Background(), callRequest(tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, extractTextFromResult(result), tt.expectedText)
		})
	}
}

func TestServer_HandleWorkorderVariants(t *testing.T) {
	tempDir := t.TempDir()
	server := newTestServer(t, tempDir)

	custom := `variants:
  - name: tower
    description: Tower checks
    columns: [Work Order]
    fields:
      - name: Work Order
        pattern: 'WORKORDER\s*#\s*:\s*(\d+)'
    policy:
      fields: [Work Order]
`
	path := filepath.Join(tempDir, "variants.yaml")
	require.NoError(t, os.WriteFile(path, []byte(custom), 0o600))
	require.NoError(t, server.variants.LoadFile(path))

	result, err := server.handleWorkorderVariants(context.Background(), callRequest(nil))
	require.NoError(t, err)

	text := extractTextFromResult(result)
	assert.Contains(t, text, "Available variants (4)")
	assert.Contains(t, text, "fhc (default)")
	assert.Contains(t, text, "fhc-pipe")
	assert.Contains(t, text, "project-phase")
	assert.Contains(t, text, "tower [custom]")
	assert.Contains(t, text, "Columns: Work Order")
}

func TestServer_HandleWorkorderListReports(t *testing.T) {
	tempDir := t.TempDir()
	server := newTestServer(t, tempDir)

	result, err := server.handleWorkorderListReports(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, "No PDF reports found", extractTextFromResult(result))

	pdftest.WriteFile(t, tempDir, "b.pdf", workOrderPage)
	pdftest.WriteFile(t, tempDir, "a.pdf", workOrderPage)
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("x"), 0o600))

	result, err = server.handleWorkorderListReports(context.Background(), callRequest(nil))
	require.NoError(t, err)
	text := extractTextFromResult(result)
	assert.Contains(t, text, "Found 2 PDF report(s)")
	assert.Less(t, strings.Index(text, "1. a.pdf"), strings.Index(text, "2. b.pdf"))
	assert.NotContains(t, text, "notes.txt")

	result, err = server.handleWorkorderListReports(context.Background(), callRequest(map[string]interface{}{
		"directory": "../",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestServer_HandlePDFValidateFile(t *testing.T) {
	tempDir := t.TempDir()
	server := newTestServer(t, tempDir)
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "garbage.pdf"), []byte("not a pdf"), 0o600))

	tests := []struct {
		name         string
		args         map[string]interface{}
		expectError  bool
		expectedText string
	}{
		{"missing path", map[string]interface{}{}, true, "path"},
		{"outside directory", map[string]interface{}{"path": "/etc/passwd"}, true, "security validation failed"},
		{"missing file", map[string]interface{}{"path": "missing.pdf"}, false, "PDF validation failed"},
		{"corrupt file", map[string]interface{}{"path": "garbage.pdf"}, false, "PDF validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := server.handlePDFValidateFile(context.Background(), callRequest(tt.args))
			if err != nil {
				t.Fatalf("handler should not return errors: %v", err)
			}
			if result.IsError != tt.expectError {
				t.Errorf("expected IsError=%v, got %v", tt.expectError, result.IsError)
			}
			if text := extractTextFromResult(result); !strings.Contains(text, tt.expectedText) {
				t.Errorf("expected text to contain %q, got %q", tt.expectedText, text)
			}
		})
	}
}

func TestStringList(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    []string
		wantErr bool
	}{
		{"nil", nil, nil, false},
		{"comma separated", " a.pdf, ,b.pdf ", []string{"a.pdf", "b.pdf"}, false},
		{"string slice", []string{"a.pdf"}, []string{"a.pdf"}, false},
		{"json array", []any{"a.pdf", "dir"}, []string{"a.pdf", "dir"}, false},
		{"mixed array", []any{"a.pdf", 3.0}, nil, true},
		{"number", 42, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := stringList(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// extractTextFromResult returns the first text content of a tool result
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}
	return ""
}
