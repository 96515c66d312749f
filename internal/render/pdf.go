package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/hyperifyio/smartoverview/internal/summary"
)

const (
	pdfMargin   = 20.0
	pdfBodyFont = "Helvetica"
	pdfCodeFont = "Courier"
)

// PDF writes r as an A4 document to w. The core fonts only cover cp1252, so
// text is transcoded and anything outside it becomes '?'.
func PDF(r summary.Result, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle("Udemy AI Smart Overview", true)
	pdf.AddPage()

	heading := func(text string, size float64) {
		pdf.SetFont(pdfBodyFont, "B", size)
		pdf.CellFormat(0, size*0.6, cp1252(text), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}

	heading("Udemy AI Smart Overview", 20)
	pdf.Ln(3)
	heading("Summary", 16)
	pdf.SetFont(pdfBodyFont, "", 11)
	pdf.MultiCell(0, 6, cp1252(r.Summary), "", "L", false)
	pdf.Ln(6)

	heading("Code Snippets", 16)
	if len(r.CodeBlocks) == 0 {
		pdf.SetFont(pdfBodyFont, "I", 11)
		pdf.MultiCell(0, 6, NoCodeSnippets, "", "L", false)
	}
	for i, code := range r.CodeBlocks {
		pdf.SetFont(pdfBodyFont, "B", 10)
		pdf.CellFormat(0, 7, fmt.Sprintf("Code Snippet %d:", i+1), "", 1, "L", false, 0, "")
		pdf.SetFont(pdfCodeFont, "", 10)
		pdf.SetFillColor(240, 240, 240)
		pdf.MultiCell(0, 5, cp1252(expandTabs(code)), "", "L", true)
		pdf.Ln(5)
	}
	pdf.Ln(4)

	heading("Key Concepts", 16)
	pdf.SetFont(pdfBodyFont, "", 11)
	for _, c := range r.KeyConcepts {
		pdf.SetX(pdfMargin + 5)
		pdf.MultiCell(0, 6, cp1252("• "+c), "", "L", false)
		pdf.Ln(1)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// cp1252 maps s into the single-byte encoding the core fonts expect.
func cp1252(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}

func expandTabs(s string) string { return strings.ReplaceAll(s, "\t", "    ") }
