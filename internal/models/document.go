package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentType tells how the document was signed
type DocumentType string

const (
	DocumentTypePDF    DocumentType = "PDF"    // Paper/PDF signature
	DocumentTypeOnline DocumentType = "ONLINE" // Signed on an online platform
)

// Valid reports whether t is a known document type
func (t DocumentType) Valid() bool {
	return t == DocumentTypePDF || t == DocumentTypeOnline
}

// RecordStatus is the lifecycle state of a stored record.
// A permanently deleted record has no status: the row is gone.
type RecordStatus string

const (
	StatusActive  RecordStatus = "active"
	StatusDeleted RecordStatus = "deleted"
)

// DocumentRecord is one signature event of the register.
// Convention: Go PascalCase -> DB snake_case (GORM auto) -> JSON camelCase
type DocumentRecord struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Company          string         `gorm:"size:100;not null" json:"company"`
	CompanyOther     *string        `gorm:"size:100" json:"companyOther,omitempty"`
	Subject          string         `gorm:"size:100;not null" json:"subject"`
	SubjectOther     *string        `gorm:"size:100" json:"subjectOther,omitempty"`
	RequestedBy      string         `gorm:"size:100;not null" json:"requestedBy"`
	RequestedByOther *string        `gorm:"size:100" json:"requestedByOther,omitempty"`
	DocumentType     DocumentType   `gorm:"size:10;not null" json:"documentType"`
	OnlinePlatform   *string        `gorm:"size:100" json:"onlinePlatform,omitempty"`
	SignedBy         string         `gorm:"size:100;not null" json:"signedBy"`
	SignedByOther    *string        `gorm:"size:100" json:"signedByOther,omitempty"`
	SignatureDate    time.Time      `gorm:"not null" json:"signatureDate"`
	Responsible      string         `gorm:"size:100;not null" json:"responsible"`
	ResponsibleOther *string        `gorm:"size:100" json:"responsibleOther,omitempty"`
	Selections       datatypes.JSON `gorm:"type:jsonb" json:"selections,omitempty"` // field -> options, multi-select only
	CreatedBy        string         `gorm:"size:64;not null;index" json:"createdBy"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt"`
}

// TableName specifies the table name
func (DocumentRecord) TableName() string {
	return "document_records"
}

// Status derives the lifecycle state from the soft-delete timestamp
func (r DocumentRecord) Status() RecordStatus {
	if r.DeletedAt.Valid {
		return StatusDeleted
	}
	return StatusActive
}

// Category rebuilds the typed value of a categorical field
func (r DocumentRecord) Category(field Field) Category {
	column, other := r.columns(field)
	if column == nil {
		return nil
	}
	return ParseCategory(*column, *other, r.selections()[string(field)])
}

// SetCategory writes a categorical field into its columns.
// Multi-select values also keep their option list in Selections.
func (r *DocumentRecord) SetCategory(field Field, cat Category) {
	column, other := r.columns(field)
	if column == nil {
		return
	}
	*column = cat.Column()
	*other = cat.OtherColumn()

	sel := r.selections()
	if len(cat) > 1 {
		sel[string(field)] = cat.Options()
	} else {
		delete(sel, string(field))
	}
	if len(sel) == 0 {
		r.Selections = nil
		return
	}
	raw, _ := json.Marshal(sel)
	r.Selections = datatypes.JSON(raw)
}

func (r *DocumentRecord) columns(field Field) (*string, **string) {
	switch field {
	case FieldCompany:
		return &r.Company, &r.CompanyOther
	case FieldSubject:
		return &r.Subject, &r.SubjectOther
	case FieldRequestedBy:
		return &r.RequestedBy, &r.RequestedByOther
	case FieldSignedBy:
		return &r.SignedBy, &r.SignedByOther
	case FieldResponsible:
		return &r.Responsible, &r.ResponsibleOther
	}
	return nil, nil
}

func (r DocumentRecord) selections() map[string][]string {
	sel := map[string][]string{}
	if len(r.Selections) == 0 {
		return sel
	}
	// Unreadable selections fall back to the single-column form
	_ = json.Unmarshal(r.Selections, &sel)
	return sel
}
