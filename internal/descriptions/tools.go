package descriptions

// Tool descriptions shown to MCP clients, with examples and workflows

const (
	WorkorderExtractDescription = `Extract work orders from one or more PDF maintenance reports into a styled Excel sheet.

**When to use:** You have inspection or maintenance reports (fire hose cabinets, pipework, project rounds) and need one sorted spreadsheet of their work orders.

**What it does:** Reads every page, pulls the work order number, floor, zone or phase, quantity, check type and scheduled date using the chosen layout variant, keeps the pages that carry enough data, sorts the rows by date and writes an .xlsx with centered cells, fitted columns and one fill color per date.

**Examples:**
• One report: paths=["north-tower.pdf"], variant="fhc"
• A batch: paths=["zone-a.pdf", "zone-b.pdf"], variant="fhc-pipe", output="march.xlsx"
• A whole folder: paths=["2024-03"] (directories expand to the PDFs they contain, in name order)

**Notes:** Paths are relative to the configured directory. When no page yields a record the tool answers "no valid data found" and writes nothing. Pages without extractable text are skipped and listed in the response.`

	WorkorderExtractUploadDescription = `Extract work orders from a PDF report sent with the request instead of read from the configured directory.

**When to use:** The report lives on the client side, for example an e-mail attachment, and cannot be placed in the configured directory.

**What it does:** Decodes the base64 content, reads it in memory with the same checks as a file on disk (size limit, optional structural validation) and runs the same extraction as workorder_extract. The spreadsheet is written into the configured directory.

**Examples:**
• name="north-tower.pdf", content="JVBERi0xLjQK...", variant="fhc-pipe"
• name="march.pdf", content="JVBERi0xLjQK...", output="march.xlsx", unknown_dates="first"

**Notes:** The name only labels the document in messages. Uploads larger than the configured maximum file size are rejected before decoding.`

	WorkorderVariantsDescription = `List the report layouts the extractor understands.

**When to use:** Before extracting, to pick the variant whose columns match your reports.

**What it returns:** Each variant's name, description, output columns and the rule deciding which pages become rows (e.g. "any(Workorder num, Quantity)" keeps a page with either field; "all(...)" requires every listed field).`

	WorkorderListReportsDescription = `List the PDF reports available in a directory.

**When to use:** To discover which reports can be passed to workorder_extract.

**Examples:**
• Top level: directory="" lists the configured directory
• A sub folder: directory="2024-03"

**What it returns:** File names, sizes and modification times, sorted by name.`

	PDFValidateFileDescription = `Verify that a PDF is structurally readable before extracting from it.

**When to use:** A report fails to extract, or you want to check an upload first.

**What it returns:** Whether the document parses, its page count, and the parser message when it does not.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"workorder_extract":        WorkorderExtractDescription,
	"workorder_extract_upload": WorkorderExtractUploadDescription,
	"workorder_variants":       WorkorderVariantsDescription,
	"workorder_list_reports":   WorkorderListReportsDescription,
	"pdf_validate_file":        PDFValidateFileDescription,
}

// GetToolDescription returns the comprehensive description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a list of all available tool names
func GetAllToolNames() []string {
	var names []string
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	return names
}
