package export

import (
	"bytes"
	"time"

	"github.com/ipex/docregistro/internal/models"
	"github.com/ipex/docregistro/internal/services/records"
	"github.com/jung-kurt/gofpdf"
)

const (
	// PDFTitle heads every exported table
	PDFTitle = "Registro de Documentos Assinados - IPEX"

	pdfDateLayout = "02/01/2006"
	pageMargin    = 14.0
	pageHeight    = 210.0 // A4 landscape
	tableWidth    = 297.0 - 2*pageMargin
	rowHeight     = 6.0
	cellPadding   = 2.0
)

var pdfHeader = []string{
	"ID",
	"Empresa",
	"Assunto",
	"Solicitado Por",
	"Tipo",
	"Plataforma",
	"Assinado Por",
	"Data",
	"Responsável",
	"Criado em",
}

// Column widths in mm for the active set; they add up to tableWidth
var activeWidths = []float64{10, 40, 40, 26, 16, 31, 40, 20, 26, 20}

// headerFill is the brand green of the table header
var headerFill = [3]int{193, 210, 60}

// PDF renders rows as a landscape A4 table. The header row is repeated on
// every page and long values are cut to their column width.
func PDF(rows []records.DisplayRow, set models.RecordStatus, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	header := append([]string(nil), pdfHeader...)
	widths := columnWidths(set)
	if set == models.StatusDeleted {
		header = append(header, deletedColumn)
	}

	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 16)
	pdf.SetXY(pageMargin, pageMargin)
	pdf.CellFormat(tableWidth, 8, tr(PDFTitle), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(tableWidth, 6, "Gerado em: "+generatedAt.Format(pdfDateLayout), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	drawHeader := func() {
		pdf.SetFont("Arial", "B", 8)
		pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
		for i, title := range header {
			pdf.CellFormat(widths[i], rowHeight+1, tr(title), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	drawHeader()

	for _, row := range rows {
		if pdf.GetY()+rowHeight > pageHeight-pageMargin {
			pdf.AddPage()
			drawHeader()
		}
		for i, cell := range Cells(row, set, pdfDateLayout) {
			pdf.CellFormat(widths[i], rowHeight, fit(pdf, tr(cell), widths[i]), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// columnWidths scales the table to the page when the deleted column is added
func columnWidths(set models.RecordStatus) []float64 {
	widths := append([]float64(nil), activeWidths...)
	if set != models.StatusDeleted {
		return widths
	}
	widths = append(widths, 20)

	total := 0.0
	for _, w := range widths {
		total += w
	}
	for i := range widths {
		widths[i] = widths[i] * tableWidth / total
	}
	return widths
}

// fit cuts text so it fits a cell of width w, marking the cut with "..."
func fit(pdf *gofpdf.Fpdf, text string, w float64) string {
	limit := w - cellPadding
	if pdf.GetStringWidth(text) <= limit {
		return text
	}
	for len(text) > 0 && pdf.GetStringWidth(text+"...") > limit {
		text = text[:len(text)-1]
	}
	return text + "..."
}
