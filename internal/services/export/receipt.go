package export

import (
	"bytes"
	"fmt"

	"github.com/ipex/docregistro/internal/models"
	"github.com/ipex/docregistro/internal/services/records"
	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

const qrSize = 40.0

// Receipt creates a one-page summary of a record. When url is not empty a QR
// code pointing to it is printed next to the fields.
func Receipt(row records.DisplayRow, url string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(170, 10, tr(fmt.Sprintf("Comprovante de Registro #%d", row.ID)), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(170, 6, tr(PDFTitle), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if url != "" {
		png, err := qrcode.Encode(url, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("encode qr: %w", err)
		}

		imgOptions := gofpdf.ImageOptions{
			ImageType: "PNG",
			ReadDpi:   true,
		}
		pdf.RegisterImageOptionsReader("qr", imgOptions, bytes.NewReader(png))
		pdf.ImageOptions("qr", 190-qrSize, 20, qrSize, qrSize, false, imgOptions, 0, "")
	}

	fields := [][2]string{
		{"Empresa", row.Company},
		{"Assunto", row.Subject},
		{"Solicitado por", row.RequestedBy},
		{"Tipo de documento", row.DocumentType},
		{"Plataforma online", row.Platform},
		{"Assinado por", row.SignedBy},
		{"Data da assinatura", formatDate(row.SignatureDate, pdfDateLayout)},
		{"Responsável", row.Responsible},
		{"Criado em", formatDate(row.CreatedAt, pdfDateLayout)},
	}
	if row.Status == models.StatusDeleted && row.DeletedAt != nil {
		fields = append(fields, [2]string{deletedColumn, formatDate(*row.DeletedAt, pdfDateLayout)})
	}

	for _, f := range fields {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(45, 7, tr(f[0]+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		// Values may wrap; the QR column is kept free
		pdf.MultiCell(120-qrSize/2, 7, tr(f[1]), "", "L", false)
	}

	if url != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(170, 5, url, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
