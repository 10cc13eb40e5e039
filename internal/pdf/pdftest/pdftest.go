// Package pdftest builds small text-only PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Build returns a PDF with one page per element of pages. Each line of a
// page is drawn on its own baseline, top to bottom, in Helvetica. An empty
// page has no content stream.
func Build(pages ...string) []byte {
	return build(lineStream, pages)
}

// BuildWords is like Build but draws every word of a line as its own text
// run at increasing x positions, the way many report generators do.
func BuildWords(pages ...string) []byte {
	return build(wordStream, pages)
}

func build(stream func(string) string, pages []string) []byte {
	var objects []string

	// Object numbers: 1 catalog, 2 page tree, 3 font, then page/content pairs.
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	)

	for i, text := range pages {
		pageObj := fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
			"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i)
		objects = append(objects, pageObj, stream(text))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func lineStream(text string) string {
	var s strings.Builder
	y := 750
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fmt.Fprintf(&s, "BT /F1 11 Tf 1 0 0 1 50 %d Tm (%s) Tj ET\n", y, escape(line))
		y -= 18
	}
	return streamObject(s.String())
}

func wordStream(text string) string {
	var s strings.Builder
	y := 750
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}
		s.WriteString("BT /F1 11 Tf\n")
		x := 50
		for _, word := range words {
			fmt.Fprintf(&s, "1 0 0 1 %d %d Tm (%s) Tj\n", x, y, escape(word))
			x += 6*len(word) + 4
		}
		s.WriteString("ET\n")
		y -= 18
	}
	return streamObject(s.String())
}

func streamObject(data string) string {
	return fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(data), data)
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// WriteFile builds a PDF into dir and returns its path.
func WriteFile(t testing.TB, dir, name string, pages ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(pages...), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// WriteWordsFile is like WriteFile but uses BuildWords.
func WriteWordsFile(t testing.TB, dir, name string, pages ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, BuildWords(pages...), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
