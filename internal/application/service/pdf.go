package service

import (
	"bytes"
	"log"

	"github.com/jung-kurt/gofpdf"
)

// pdfTable describes a simple bordered table. Widths are in mm.
type pdfTable struct {
	Headers []string
	Widths  []float64
	Align   []string
	Rows    [][]string
}

func newPDF(orientation, title string) (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()
	// core fonts are cp1252
	return pdf, pdf.UnicodeTranslatorFromDescriptor("")
}

func writeTable(pdf *gofpdf.Fpdf, tr func(string) string, t pdfTable) {
	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range t.Headers {
			pdf.CellFormat(t.Widths[i], 7, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}

	header()
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range t.Rows {
		if pdf.GetY()+6 > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		for i, cell := range row {
			align := "L"
			if i < len(t.Align) && t.Align[i] != "" {
				align = t.Align[i]
			}
			pdf.CellFormat(t.Widths[i], 6, tr(fitText(pdf, cell, t.Widths[i]-2)), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// fitText shortens s until it fits in width
func fitText(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 1 && pdf.GetStringWidth(string(r)+"..") > width {
		r = r[:len(r)-1]
	}
	return string(r) + ".."
}

func outputPDF(pdf *gofpdf.Fpdf, what string) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		log.Printf("%s pdf: output failed: %v", what, err)
		return nil, err
	}
	return buf.Bytes(), nil
}
