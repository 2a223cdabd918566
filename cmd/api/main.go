package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ipex/docregistro/internal/config"
	"github.com/ipex/docregistro/internal/database"
	"github.com/ipex/docregistro/internal/handlers"
	"github.com/ipex/docregistro/internal/logger"
	"github.com/ipex/docregistro/internal/services/archive"
	"github.com/ipex/docregistro/internal/services/notify"
	"github.com/ipex/docregistro/internal/services/records"
	"github.com/ipex/docregistro/internal/websocket"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	lg := logger.Get()

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database, lg)
	if err != nil {
		lg.Fatal("Failed to connect to database", zap.Error(err))
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema
	lg.Info("Synchronizing database schema")
	if err := db.Migrate(); err != nil {
		lg.Warn("Migration warning", zap.Error(err))
	} else {
		lg.Info("Schema synchronized successfully")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 4. Live events
	hub := websocket.NewHub(lg.Named("ws"))
	go hub.Run(ctx)

	// 5. Director notification
	var mailer notify.Mailer = notify.NewLogMailer(lg.Named("mail"))
	if cfg.Mail.SMTPHost != "" {
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: cfg.Mail.SMTPUsername,
			Password: cfg.Mail.SMTPPassword,
			From:     cfg.Mail.From,
		}, lg.Named("mail"))
		lg.Info("SMTP mailer enabled", zap.String("host", cfg.Mail.SMTPHost))
	}

	// 6. Export archive
	var arch archive.Archiver = archive.Nop{}
	switch cfg.Archive.Backend {
	case config.ArchiveLocal:
		arch = archive.NewLocalArchiver(cfg.Archive.Dir)
		lg.Info("Exports archived locally", zap.String("dir", cfg.Archive.Dir))
	case config.ArchiveS3:
		s3Arch, err := archive.NewS3Archiver(ctx, cfg.Archive.S3Bucket, cfg.Archive.S3Region)
		if err != nil {
			lg.Fatal("Failed to init S3 archive", zap.Error(err))
		}
		arch = s3Arch
		lg.Info("Exports archived to S3", zap.String("bucket", cfg.Archive.S3Bucket))
	}

	svc := records.NewService(database.NewRecordStore(db.DB), records.Options{
		Director: cfg.Mail.DirectorEmail,
		Mailer:   mailer,
		Events:   hub,
		Logger:   lg.Named("records"),
	})

	// 7. Set up HTTP router
	router := handlers.NewRouter(handlers.Deps{
		Config:  cfg,
		Users:   database.NewUserStore(db.DB),
		Records: svc,
		Archive: arch,
		Hub:     hub,
		DB:      db,
		Logger:  lg.Named("http"),
	})

	// 8. Start server with graceful shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in goroutine
	go func() {
		lg.Info("Server starting", zap.String("port", cfg.Port), zap.String("env", cfg.NodeEnv))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdown
	lg.Info("Received signal, shutting down gracefully", zap.String("signal", sig.String()))

	// Create context with timeout for graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		lg.Error("HTTP server shutdown error", zap.Error(err))
	}

	// Stop the websocket hub
	stop()

	// Close database (this also stops embedded PostgreSQL)
	lg.Info("Closing database connection")
	if err := db.Close(); err != nil {
		lg.Error("Database close error", zap.Error(err))
	}

	lg.Info("Shutdown complete")
}
