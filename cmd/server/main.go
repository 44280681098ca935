package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tokosembako/kasir-pos/internal/backup"
	"github.com/tokosembako/kasir-pos/internal/config"
	"github.com/tokosembako/kasir-pos/internal/db"
	"github.com/tokosembako/kasir-pos/internal/server"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	if migrateOnlyFlag != nil && *migrateOnlyFlag {
		if _, err := db.ConnectAndMigrate(cfg.DatabaseDSN, cfg.SQLitePath); err != nil {
			log.Fatalf("migrate-only failed: %v", err)
		}
		log.Println("migrations completed; exiting as requested")
		return
	}

	conn, err := db.ConnectAndMigrate(cfg.DatabaseDSN, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("koneksi database gagal: %v", err)
	}
	if err := db.Seed(conn); err != nil {
		log.Fatalf("seed gagal: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var manager *backup.Manager
	if !db.IsPostgresDSN(cfg.DatabaseDSN) {
		manager = backup.NewManager(cfg.SQLitePath, cfg.BackupDir, cfg.BackupKeep)
		manager.Start(ctx)
	}

	log.Printf("Starting server env=%s port=%s", cfg.Env, cfg.Port)
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: server.New(conn, manager)}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
