package records

import (
	"time"

	"github.com/ipex/docregistro/internal/models"
)

// PlatformNotApplicable is shown as platform of PDF documents
const PlatformNotApplicable = "N/A"

// DisplayRow is a record with every categorical field resolved to its display value
type DisplayRow struct {
	ID            uint                `json:"id"`
	Company       string              `json:"company"`
	Subject       string              `json:"subject"`
	RequestedBy   string              `json:"requestedBy"`
	DocumentType  string              `json:"documentType"`
	Platform      string              `json:"platform"`
	SignedBy      string              `json:"signedBy"`
	SignatureDate time.Time           `json:"signatureDate"`
	Responsible   string              `json:"responsible"`
	CreatedAt     time.Time           `json:"createdAt"`
	DeletedAt     *time.Time          `json:"deletedAt,omitempty"`
	Status        models.RecordStatus `json:"status"`
}

// Display resolves a stored record: the option itself when it is not OUTRO,
// the paired free text otherwise.
func Display(rec models.DocumentRecord) DisplayRow {
	row := DisplayRow{
		ID:            rec.ID,
		Company:       rec.Category(models.FieldCompany).Display(),
		Subject:       rec.Category(models.FieldSubject).Display(),
		RequestedBy:   rec.Category(models.FieldRequestedBy).Display(),
		DocumentType:  string(rec.DocumentType),
		Platform:      PlatformNotApplicable,
		SignedBy:      rec.Category(models.FieldSignedBy).Display(),
		SignatureDate: rec.SignatureDate,
		Responsible:   rec.Category(models.FieldResponsible).Display(),
		CreatedAt:     rec.CreatedAt,
		Status:        rec.Status(),
	}
	if rec.DocumentType == models.DocumentTypeOnline && rec.OnlinePlatform != nil {
		row.Platform = *rec.OnlinePlatform
	}
	if rec.DeletedAt.Valid {
		deletedAt := rec.DeletedAt.Time
		row.DeletedAt = &deletedAt
	}
	return row
}

// DisplayAll resolves a list of records keeping its order
func DisplayAll(recs []models.DocumentRecord) []DisplayRow {
	rows := make([]DisplayRow, len(recs))
	for i, rec := range recs {
		rows[i] = Display(rec)
	}
	return rows
}
