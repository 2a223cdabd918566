package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ipex/docregistro/internal/config"
	"github.com/ipex/docregistro/internal/database"
	"github.com/ipex/docregistro/internal/models"
	"github.com/ipex/docregistro/internal/services/records"
	"github.com/ipex/docregistro/internal/utils"
	"go.uber.org/zap"
)

const (
	demoEmail    = "demo@ipex.com.br"
	demoPassword = "demo-password"
)

func main() {
	fmt.Println("🌱 Document Register Demo Data Seeder")
	fmt.Println(strings.Repeat("=", 60))

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg.Database, zap.NewNop())
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")

	// Run migrations first
	if err := db.Migrate(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	fmt.Println("✅ Migrations complete")
	fmt.Println()

	ctx := context.Background()
	store := database.NewRecordStore(db.DB)

	// Check if data already exists
	active, deleted, err := store.CountByStatus(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to count records: %v", err)
	}
	if active+deleted > 0 {
		fmt.Printf("⚠️  Database already has %d records. Clear it first? (y/N): ", active+deleted)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("❌ Aborted. Database not modified.")
			return
		}

		fmt.Println("🗑️  Clearing existing data...")
		db.Exec("TRUNCATE TABLE document_records RESTART IDENTITY")
		fmt.Println("✅ Data cleared")
	}

	// 1. Demo user
	users := database.NewUserStore(db.DB)
	user, err := users.FindByEmail(ctx, demoEmail)
	if errors.Is(err, database.ErrUserNotFound) {
		hash, hashErr := utils.HashPassword(demoPassword)
		if hashErr != nil {
			log.Fatalf("❌ Failed to hash password: %v", hashErr)
		}
		user = &models.UserAuth{Username: "demo", Email: demoEmail, Password: hash, Name: "Demo", Role: "admin", IsActive: true}
		if err := users.Create(ctx, user); err != nil {
			log.Fatalf("❌ Failed to create demo user: %v", err)
		}
		fmt.Printf("👤 Created user %s / %s\n", demoEmail, demoPassword)
	} else if err != nil {
		log.Fatalf("❌ Failed to look up demo user: %v", err)
	}

	// 2. Records, through the same validation as the API
	svc := records.NewService(store, records.Options{Director: cfg.Mail.DirectorEmail})
	day := func(d int) records.Date {
		return records.Date{Time: time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)}
	}

	submissions := []records.Submission{
		{
			Company: records.Selection{"IPEX CONSTRUTORA"}, Subject: records.Selection{"CONTRATO VENDA"},
			RequestedBy: records.Selection{"RAMON"}, DocumentType: "PDF",
			SignedBy: records.Selection{"EMANUEL"}, SignatureDate: day(3), Responsible: records.Selection{"RICARDO"},
		},
		{
			Company: records.Selection{"GREEN TOWER"}, Subject: records.Selection{"CONTRATO FORNECEDOR"},
			RequestedBy: records.Selection{"JESSICA"}, DocumentType: "ONLINE", OnlinePlatform: "DocuSign",
			SignedBy: records.Selection{"PAULO", "LEONILDA"}, SignatureDate: day(7), Responsible: records.Selection{"RICARDO"},
		},
		{
			Company: records.Selection{models.OtherOption}, CompanyOther: "Construtora Horizonte",
			Subject: records.Selection{models.OtherOption}, SubjectOther: "Aditivo de obra",
			RequestedBy: records.Selection{"LADY"}, DocumentType: "ONLINE", OnlinePlatform: "Clicksign",
			SignedBy: records.Selection{"EMANUEL", models.OtherOption}, SignedByOther: "Marcos Lima",
			SignatureDate: day(12), Responsible: records.Selection{models.OtherOption}, ResponsibleOther: "Fernanda",
		},
		{
			Company: records.Selection{"NEW YORK LOFTS"}, Subject: records.Selection{"RECEBÍVEL"},
			RequestedBy: records.Selection{"MATHEUS"}, DocumentType: "PDF",
			SignedBy: records.Selection{"LEONILDA"}, SignatureDate: day(20), Responsible: records.Selection{"RICARDO"},
		},
	}

	fmt.Println("📄 Creating records...")
	var last uint
	for _, sub := range submissions {
		rec, err := svc.Create(ctx, user.ID, sub)
		if err != nil {
			log.Printf("⚠️  Failed to create record: %v", err)
			continue
		}
		last = rec.ID
		row := records.Display(*rec)
		fmt.Printf("   ✓ #%d %s / %s\n", rec.ID, row.Company, row.Subject)
	}

	// 3. One record in the trash so both lists have content
	if last != 0 {
		if err := svc.SoftDelete(ctx, user.ID, last); err != nil {
			log.Printf("⚠️  Failed to delete record #%d: %v", last, err)
		} else {
			fmt.Printf("   🗑️  Moved #%d to the deleted list\n", last)
		}
	}

	fmt.Println()
	fmt.Println("✅ Demo data ready")
}
