package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/a3tai/workorder-sheet/internal/config"
	"github.com/a3tai/workorder-sheet/internal/descriptions"
	"github.com/a3tai/workorder-sheet/internal/pdf"
	"github.com/a3tai/workorder-sheet/internal/pipeline"
	"github.com/a3tai/workorder-sheet/internal/variant"
	"github.com/a3tai/workorder-sheet/internal/workorder"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	pipeline   *pipeline.Service
	variants   *variant.Registry
	logger     *zap.Logger
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service, variants *variant.Registry, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}
	if variants == nil {
		return nil, fmt.Errorf("variant registry cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		pipeline:   pipeline.NewService(pdfService, logger),
		variants:   variants,
		logger:     logger,
		mcpServer:  mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	extractTool := mcp.NewTool(
		"workorder_extract",
		mcp.WithDescription(descriptions.GetToolDescription("workorder_extract")),
		mcp.WithArray("paths",
			mcp.Description("PDF files or directories, relative to the configured directory (default: the whole directory)"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("variant",
			mcp.Description(fmt.Sprintf("Report layout (default: %s)", s.config.Variant)),
		),
		mcp.WithString("output",
			mcp.Description("Spreadsheet file name (.xlsx); generated when empty"),
		),
		mcp.WithString("unknown_dates",
			mcp.Description("Where rows with unreadable dates go: first or last"),
			mcp.Enum(string(workorder.UnknownFirst), string(workorder.UnknownLast)),
		),
	)
	s.mcpServer.AddTool(extractTool, s.handleWorkorderExtract)

	uploadTool := mcp.NewTool(
		"workorder_extract_upload",
		mcp.WithDescription(descriptions.GetToolDescription("workorder_extract_upload")),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("File name of the uploaded report, used in messages"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The PDF document, base64 encoded"),
		),
		mcp.WithString("variant",
			mcp.Description(fmt.Sprintf("Report layout (default: %s)", s.config.Variant)),
		),
		mcp.WithString("output",
			mcp.Description("Spreadsheet file name (.xlsx); generated when empty"),
		),
		mcp.WithString("unknown_dates",
			mcp.Description("Where rows with unreadable dates go: first or last"),
			mcp.Enum(string(workorder.UnknownFirst), string(workorder.UnknownLast)),
		),
	)
	s.mcpServer.AddTool(uploadTool, s.handleWorkorderExtractUpload)

	variantsTool := mcp.NewTool(
		"workorder_variants",
		mcp.WithDescription(descriptions.GetToolDescription("workorder_variants")),
	)
	s.mcpServer.AddTool(variantsTool, s.handleWorkorderVariants)

	listTool := mcp.NewTool(
		"workorder_list_reports",
		mcp.WithDescription(descriptions.GetToolDescription("workorder_list_reports")),
		mcp.WithString("directory",
			mcp.Description("Directory to list, relative to the configured directory (default: the configured directory)"),
		),
	)
	s.mcpServer.AddTool(listTool, s.handleWorkorderListReports)

	validateTool := mcp.NewTool(
		"pdf_validate_file",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_validate_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(validateTool, s.handlePDFValidateFile)
}

// Handler functions
func (s *Server) handleWorkorderExtract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	paths, err := stringList(args["paths"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts, err := s.extractOptions(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	inputs, err := s.pdfService.ResolveInputs(paths)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(inputs) == 0 {
		return mcp.NewToolResultText("No PDF reports found to extract"), nil
	}

	result, err := s.pipeline.Run(ctx, inputs, opts)
	return s.finishExtract(args, opts, result, err), nil
}

func (s *Server) handleWorkorderExtractUpload(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name = filepath.Base(name)

	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// DecodedLen counts up to two padding bytes
	if limit := s.pdfService.GetMaxFileSize(); limit > 0 &&
		int64(base64.StdEncoding.DecodedLen(len(content))) > limit+2 {
		return mcp.NewToolResultError(fmt.Sprintf("upload %s exceeds the %d byte limit", name, limit)), nil
	}
	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("content of %s is not valid base64: %v", name, err)), nil
	}

	opts, err := s.extractOptions(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := s.pdfService.OpenBytes(ctx, name, data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.logger.Debug("read uploaded document", zap.String("name", name), zap.Int("bytes", len(data)),
		zap.Int("pages", doc.PageCount))

	result, err := s.pipeline.Process(ctx, []*pdf.Document{doc}, opts)
	return s.finishExtract(args, opts, result, err), nil
}

// extractOptions reads the variant and unknown_dates arguments shared by the
// extraction tools.
func (s *Server) extractOptions(args map[string]any) (pipeline.Options, error) {
	variantName := s.config.Variant
	if name, ok := args["variant"].(string); ok && name != "" {
		variantName = name
	}
	v, err := s.variants.Get(variantName)
	if err != nil {
		return pipeline.Options{}, err
	}

	unknown := s.config.UnknownDatePolicy()
	if raw, ok := args["unknown_dates"].(string); ok && raw != "" {
		if unknown, err = workorder.ParseUnknownDatePolicy(raw); err != nil {
			return pipeline.Options{}, err
		}
	}

	seed := s.config.ColorSeed
	return pipeline.Options{
		Variant:      v,
		UnknownDates: unknown,
		ColorSeed:    &seed,
	}, nil
}

// finishExtract turns a pipeline outcome into a tool result, saving the sheet
// under the output argument when there is one to save.
func (s *Server) finishExtract(args map[string]any, opts pipeline.Options, result *pipeline.Result, err error,
) *mcp.CallToolResult {
	if errors.Is(err, pipeline.ErrNoRecords) {
		return mcp.NewToolResultText(fmt.Sprintf(
			"No valid data found in %d page(s) of %d document(s) using variant %s",
			result.Pages, result.Documents, opts.Variant.Name))
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}

	output, _ := args["output"].(string)
	if output == "" {
		output = pipeline.DefaultOutputName(result.RunID)
	}
	outPath, err := s.pdfService.ResolveOutput(output)
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	if err := pipeline.SaveSheet(outPath, result.Sheet); err != nil {
		return mcp.NewToolResultError(err.Error())
	}

	return mcp.NewToolResultText(s.formatExtractResult(result, outPath))
}

func (s *Server) handleWorkorderVariants(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	summaries := s.variants.Summaries()
	fmt.Fprintf(&b, "Available variants (%d):\n", len(summaries))
	for _, v := range summaries {
		fmt.Fprintf(&b, "\n%s", v.Name)
		if v.Name == s.config.Variant {
			b.WriteString(" (default)")
		}
		if !v.Builtin {
			b.WriteString(" [custom]")
		}
		fmt.Fprintf(&b, "\n   %s\n", v.Description)
		fmt.Fprintf(&b, "   Columns: %s\n", strings.Join(v.Columns, ", "))
		fmt.Fprintf(&b, "   Keeps pages with: %s\n", v.Policy)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleWorkorderListReports(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	directory := ""
	if dir, ok := args["directory"].(string); ok {
		directory = dir
	}

	files, err := s.pdfService.FindPDFsInDirectory(directory)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(files) == 0 {
		return mcp.NewToolResultText("No PDF reports found"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d PDF report(s):\n", len(files))
	for i, file := range files {
		fmt.Fprintf(&b, "%d. %s\n", i+1, file.Name)
		fmt.Fprintf(&b, "   Path: %s\n", file.Path)
		fmt.Fprintf(&b, "   Size: %d bytes\n", file.Size)
		fmt.Fprintf(&b, "   Modified: %s\n", file.ModifiedTime)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handlePDFValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFValidateFileRequest{Path: path}
	result, err := s.pdfService.PDFValidateFile(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("PDF file %s is valid and readable (%d pages)", result.Path, result.Pages)
	} else {
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

// Formatting methods
func (s *Server) formatExtractResult(result *pipeline.Result, outPath string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Extracted %d work order(s) to %s\n", result.Rows, outPath)
	fmt.Fprintf(&b, "Variant: %s\n", result.Variant)
	fmt.Fprintf(&b, "Documents: %d, pages read: %d, pages without a record: %d\n",
		result.Documents, result.Pages, result.Dropped)
	fmt.Fprintf(&b, "Run: %s\n", result.RunID)

	if problems := result.Problems.All(); len(problems) > 0 {
		fmt.Fprintf(&b, "\nSkipped pages (%s):\n", result.Problems.Summary())
		for _, p := range problems {
			fmt.Fprintf(&b, "- %s page %d: %s\n", p.FilePath, p.PageNumber, p.Message)
		}
	}
	return b.String()
}

// stringList accepts a JSON array of strings or a single comma separated
// string.
func stringList(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		var out []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("paths must be strings, got %T", item)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("paths must be a list of strings, got %T", raw)
	}
}

// HandleMessage dispatches one raw JSON-RPC message
func (s *Server) HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	return s.mcpServer.HandleMessage(ctx, message)
}

// Run starts the MCP server on standard I/O
func (s *Server) Run(ctx context.Context) error {
	return s.RunStdio(ctx, os.Stdin, os.Stdout)
}

// RunStdio serves MCP over the given streams until in is closed or ctx ends
func (s *Server) RunStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("starting MCP server",
		zap.String("mode", config.ModeStdio),
		zap.String("directory", s.config.Directory),
		zap.Strings("variants", s.variants.Names()))

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger.Named("stdio")))
	if err := stdio.Listen(ctx, in, out); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
