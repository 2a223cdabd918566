package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ipex/docregistro/internal/config"
	"github.com/ipex/docregistro/internal/database"
	"github.com/ipex/docregistro/internal/models"
	"github.com/ipex/docregistro/internal/services/records"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg.Database, zap.NewNop())
	if err != nil {
		fmt.Printf("❌ Failed to connect: %v\n", err)
		fmt.Println("\n💡 Try starting the server first:")
		fmt.Println("   go run ./cmd/api")
		os.Exit(1)
	}
	defer db.Close()

	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║          📊 Signed Documents Register Report             ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	ctx := context.Background()
	store := database.NewRecordStore(db.DB)

	active, deleted, err := store.CountByStatus(ctx)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	fmt.Println("📈 DATABASE STATISTICS")
	fmt.Println("──────────────────────────────────────────────────────────")
	fmt.Printf("  Active records:  %3d\n", active)
	fmt.Printf("  Deleted records: %3d\n", deleted)
	fmt.Println()

	for _, set := range []models.RecordStatus{models.StatusActive, models.StatusDeleted} {
		var recs []models.DocumentRecord
		if set == models.StatusActive {
			recs, err = store.ListActive(ctx)
		} else {
			recs, err = store.ListDeleted(ctx)
		}
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
		if len(recs) == 0 {
			continue
		}

		if set == models.StatusActive {
			fmt.Println("📄 ACTIVE RECORDS")
		} else {
			fmt.Println("🗑️  DELETED RECORDS")
		}
		fmt.Println("──────────────────────────────────────────────────────────")
		for _, row := range records.DisplayAll(recs) {
			fmt.Printf("  [%d] %s - %s\n", row.ID, row.Company, row.Subject)
			fmt.Printf("      └─ %s (%s) signed by %s on %s, responsible %s\n",
				row.DocumentType, row.Platform, row.SignedBy,
				row.SignatureDate.Format("02/01/2006"), row.Responsible)
			if row.DeletedAt != nil {
				fmt.Printf("      └─ deleted %s\n", row.DeletedAt.Format("02/01/2006 15:04"))
			}
		}
		fmt.Println()
	}
}
