package models

// Field names a categorical field of a document record (JSON name)
type Field string

const (
	FieldCompany      Field = "company"
	FieldSubject      Field = "subject"
	FieldRequestedBy  Field = "requestedBy"
	FieldSignedBy     Field = "signedBy"
	FieldResponsible  Field = "responsible"
	FieldDocumentType Field = "documentType"
)

// OtherField returns the name of the free-text field paired with f
func (f Field) OtherField() string {
	if f == FieldDocumentType {
		return "onlinePlatform"
	}
	return string(f) + "Other"
}

// CategoryFields lists the fields that follow the OUTRO + free text pattern, in form order
var CategoryFields = []Field{
	FieldCompany,
	FieldSubject,
	FieldRequestedBy,
	FieldSignedBy,
	FieldResponsible,
}

// Catalog holds the fixed option list of every categorical field
type Catalog map[Field][]string

// DefaultCatalog mirrors the options of the signature register form
var DefaultCatalog = Catalog{
	FieldCompany: {
		"IPEX CONSTRUTORA",
		"NEW YORK LOFTS",
		"MANHATTAN LOFTS",
		"CARPE DIEM RESIDENCIAL",
		"GREEN TOWER",
		"IPEX AGRONEGOCIOS",
		OtherOption,
	},
	FieldSubject: {
		"CONTRATO VENDA",
		"CONTRATO FORNECEDOR",
		"RECEBÍVEL",
		OtherOption,
	},
	FieldRequestedBy: {
		"RAMON",
		"JESSICA",
		"LADY",
		"EMANUEL",
		"LED MARLON",
		"LEANDRO",
		"MATHEUS",
		"EDUARDO",
		OtherOption,
	},
	FieldSignedBy: {
		"EMANUEL",
		"PAULO",
		"LEONILDA",
		OtherOption,
	},
	FieldResponsible: {
		"RICARDO",
		OtherOption,
	},
	FieldDocumentType: {
		string(DocumentTypePDF),
		string(DocumentTypeOnline),
	},
}

// Allows reports whether option is part of the field's option list
func (c Catalog) Allows(field Field, option string) bool {
	for _, o := range c[field] {
		if o == option {
			return true
		}
	}
	return false
}
