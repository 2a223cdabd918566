package records

import (
	"fmt"
	"strings"

	"github.com/ipex/docregistro/internal/services/notify"
)

// ComposeNotification builds the director email for a record
func ComposeNotification(row DisplayRow, recipient string) notify.Message {
	var b strings.Builder
	b.WriteString("Um novo documento assinado foi registrado.\n\n")
	fmt.Fprintf(&b, "Registro: #%d\n", row.ID)
	fmt.Fprintf(&b, "Empresa: %s\n", row.Company)
	fmt.Fprintf(&b, "Assunto: %s\n", row.Subject)
	fmt.Fprintf(&b, "Solicitado por: %s\n", row.RequestedBy)
	fmt.Fprintf(&b, "Tipo de documento: %s\n", row.DocumentType)
	fmt.Fprintf(&b, "Plataforma online: %s\n", row.Platform)
	fmt.Fprintf(&b, "Assinado por: %s\n", row.SignedBy)
	fmt.Fprintf(&b, "Data da assinatura: %s\n", row.SignatureDate.UTC().Format("02/01/2006"))
	fmt.Fprintf(&b, "Responsável: %s\n", row.Responsible)

	return notify.Message{
		To:      recipient,
		Subject: fmt.Sprintf("Documento assinado #%d - %s", row.ID, row.Company),
		Body:    b.String(),
	}
}
