package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/workorder-sheet/internal/pdf/pdftest"
)

func TestServer_HandleMessage_ToolsList(t *testing.T) {
	server := newTestServer(t, t.TempDir())

	response := server.HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`))
	require.NotNil(t, response)

	raw, err := json.Marshal(response)
	require.NoError(t, err)
	tools := []string{
		"workorder_extract", "workorder_extract_upload", "workorder_variants", "workorder_list_reports", "pdf_validate_file",
	}
	for _, name := range tools {
		assert.Contains(t, string(raw), `"`+name+`"`)
	}
}

func TestServer_RunStdio_Session(t *testing.T) {
	tempDir := t.TempDir()
	server := newTestServer(t, tempDir)
	pdftest.WriteFile(t, tempDir, "tower.pdf", workOrderPage)

	messages := []string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list","params":{}}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"workorder_extract","arguments":{"paths":["tower.pdf"],"output":"session.xlsx"}}}`,
	}
	in := strings.NewReader(strings.Join(messages, "\n") + "\n")
	var out bytes.Buffer

	require.NoError(t, server.RunStdio(context.Background(), in, &out))

	responses := map[float64]map[string]any{}
	scanner := bufio.NewScanner(&out)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &msg))
		if id, ok := msg["id"].(float64); ok {
			responses[id] = msg
		}
	}
	require.Len(t, responses, 3)

	initResult, ok := responses[1]["result"].(map[string]any)
	require.True(t, ok)
	serverInfo := initResult["serverInfo"].(map[string]any)
	assert.Equal(t, "test-server", serverInfo["name"])

	tools := responses[2]["result"].(map[string]any)["tools"].([]any)
	assert.Len(t, tools, 5)

	call, err := json.Marshal(responses[3]["result"])
	require.NoError(t, err)
	assert.Contains(t, string(call), "Extracted 1 work order(s)")
	assert.Contains(t, string(call), "session.xlsx")
}

func TestServer_RunStdio_Cancelled(t *testing.T) {
	server := newTestServer(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader, writer := io.Pipe()
	defer writer.Close()

	err := server.RunStdio(ctx, reader, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}
