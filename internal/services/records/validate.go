package records

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ipex/docregistro/internal/models"
)

// maxFieldLength matches the varchar(100) columns of document_records
const maxFieldLength = 100

// fieldMessages holds the form messages of each categorical field
var fieldMessages = map[models.Field]struct {
	required string
	other    string
}{
	models.FieldCompany:     {"Selecione a empresa", "Digite o nome da empresa"},
	models.FieldSubject:     {"Selecione o assunto", "Digite o assunto"},
	models.FieldRequestedBy: {"Selecione quem solicitou", "Digite o nome de quem solicitou"},
	models.FieldSignedBy:    {"Selecione quem assinou", "Digite o nome de quem assinou"},
	models.FieldResponsible: {"Selecione o responsável", "Digite o nome do responsável"},
}

// Validate checks a submission and builds the record to store.
// It fails with the first *ValidationError in form order.
func Validate(sub Submission, catalog models.Catalog) (*models.DocumentRecord, error) {
	rec, errs := normalize(sub, catalog)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return rec, nil
}

// ValidateAll is Validate reporting every failing field as ValidationErrors
func ValidateAll(sub Submission, catalog models.Catalog) (*models.DocumentRecord, error) {
	rec, errs := normalize(sub, catalog)
	if len(errs) > 0 {
		return nil, errs
	}
	return rec, nil
}

func normalize(sub Submission, catalog models.Catalog) (*models.DocumentRecord, ValidationErrors) {
	var errs ValidationErrors
	rec := &models.DocumentRecord{}

	setCategory := func(field models.Field, sel Selection, other string) {
		cat, err := buildCategory(field, sel, other, catalog)
		if err != nil {
			errs = append(errs, err)
			return
		}
		rec.SetCategory(field, cat)
	}

	setCategory(models.FieldCompany, sub.Company, sub.CompanyOther)
	setCategory(models.FieldSubject, sub.Subject, sub.SubjectOther)
	setCategory(models.FieldRequestedBy, sub.RequestedBy, sub.RequestedByOther)

	docType := models.DocumentType(strings.TrimSpace(sub.DocumentType))
	switch {
	case docType == "":
		errs = append(errs, &ValidationError{Field: string(models.FieldDocumentType), Message: "Selecione o tipo de documento"})
	case !docType.Valid():
		errs = append(errs, &ValidationError{Field: string(models.FieldDocumentType), Message: fmt.Sprintf("Tipo de documento inválido: %q", docType)})
	default:
		rec.DocumentType = docType
	}

	if docType == models.DocumentTypeOnline {
		platform := strings.TrimSpace(sub.OnlinePlatform)
		switch {
		case platform == "":
			errs = append(errs, &ValidationError{Field: models.FieldDocumentType.OtherField(), Message: "Digite a plataforma online"})
		case utf8.RuneCountInString(platform) > maxFieldLength:
			errs = append(errs, tooLong(models.FieldDocumentType.OtherField()))
		default:
			rec.OnlinePlatform = &platform
		}
	}

	setCategory(models.FieldSignedBy, sub.SignedBy, sub.SignedByOther)

	if sub.SignatureDate.IsZero() {
		errs = append(errs, &ValidationError{Field: "signatureDate", Message: "Selecione a data"})
	} else {
		rec.SignatureDate = sub.SignatureDate.UTC()
	}

	setCategory(models.FieldResponsible, sub.Responsible, sub.ResponsibleOther)

	return rec, errs
}

// buildCategory turns a raw selection into a typed category.
// The free text is only read when OUTRO is among the selected options.
func buildCategory(field models.Field, sel Selection, other string, catalog models.Catalog) (models.Category, *ValidationError) {
	msgs := fieldMessages[field]
	options := sel.options()
	if len(options) == 0 {
		return nil, &ValidationError{Field: string(field), Message: msgs.required}
	}

	seen := make(map[string]bool, len(options))
	cat := make(models.Category, 0, len(options))
	for _, opt := range options {
		if !catalog.Allows(field, opt) {
			return nil, &ValidationError{Field: string(field), Message: fmt.Sprintf("Opção inválida: %q", opt)}
		}
		if seen[opt] {
			return nil, &ValidationError{Field: string(field), Message: fmt.Sprintf("Opção repetida: %q", opt)}
		}
		seen[opt] = true

		if opt != models.OtherOption {
			cat = append(cat, models.Known(opt))
			continue
		}
		text := strings.TrimSpace(other)
		if text == "" {
			return nil, &ValidationError{Field: field.OtherField(), Message: msgs.other}
		}
		if utf8.RuneCountInString(text) > maxFieldLength {
			return nil, tooLong(field.OtherField())
		}
		cat = append(cat, models.Other(text))
	}

	if utf8.RuneCountInString(cat.Column()) > maxFieldLength {
		return nil, tooLong(string(field))
	}
	return cat, nil
}

func tooLong(field string) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf("Máximo de %d caracteres", maxFieldLength)}
}
