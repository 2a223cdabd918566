package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ipex/docregistro/internal/models"
	"github.com/ipex/docregistro/internal/services/records"
)

const csvDateLayout = "2006-01-02"

// FilenamePrefix is shared by every export download
const FilenamePrefix = "registros_documentos_"

var activeHeader = []string{
	"ID",
	"Empresa",
	"Assunto",
	"Solicitado Por",
	"Tipo Documento",
	"Plataforma Online",
	"Assinatura de",
	"Data",
	"Responsável",
	"Criado em",
}

const deletedColumn = "Excluído em"

// ParseSet reads the ?set= query value; empty means the active list
func ParseSet(raw string) (models.RecordStatus, error) {
	switch models.RecordStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case "", models.StatusActive:
		return models.StatusActive, nil
	case models.StatusDeleted:
		return models.StatusDeleted, nil
	}
	return "", fmt.Errorf("unknown record set %q", raw)
}

// Header returns the column titles of an export of the given set
func Header(set models.RecordStatus) []string {
	header := append([]string(nil), activeHeader...)
	if set == models.StatusDeleted {
		header = append(header, deletedColumn)
	}
	return header
}

// Cells returns the values of one row in header order, dates formatted with layout
func Cells(row records.DisplayRow, set models.RecordStatus, layout string) []string {
	cells := []string{
		strconv.FormatUint(uint64(row.ID), 10),
		row.Company,
		row.Subject,
		row.RequestedBy,
		row.DocumentType,
		row.Platform,
		row.SignedBy,
		formatDate(row.SignatureDate, layout),
		row.Responsible,
		formatDate(row.CreatedAt, layout),
	}
	if set == models.StatusDeleted {
		deletedAt := ""
		if row.DeletedAt != nil {
			deletedAt = formatDate(*row.DeletedAt, layout)
		}
		cells = append(cells, deletedAt)
	}
	return cells
}

// CSV renders rows as comma separated text: a plain header line, then one
// line per row with every cell quoted. Lines are joined by "\n".
func CSV(rows []records.DisplayRow, set models.RecordStatus) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(Header(set), ","))

	for _, row := range rows {
		b.WriteByte('\n')
		for i, cell := range Cells(row, set, csvDateLayout) {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quote(cell))
		}
	}
	return []byte(b.String())
}

// Filename names an export file after the day it was generated
func Filename(now time.Time, ext string) string {
	return FilenamePrefix + now.Format(csvDateLayout) + "." + ext
}

func quote(cell string) string {
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

func formatDate(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(layout)
}
