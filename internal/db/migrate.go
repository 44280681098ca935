package db

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tokosembako/kasir-pos/internal/models"
)

// ConnectAndMigrate opens the configured store (postgres when dsn looks like
// one, SQLite at sqlitePath otherwise) and brings the schema up to date.
func ConnectAndMigrate(dsn, sqlitePath string) (*gorm.DB, error) {
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var conn *gorm.DB
	var err error
	if IsPostgresDSN(dsn) {
		normalized := NormalizeDSN(dsn)
		for i := 0; i < 10; i++ {
			conn, err = gorm.Open(postgres.Open(normalized), cfg)
			if err == nil {
				break
			}
			log.Println("[DB] Retrying connection...", err)
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to connect database after retries: %w", err)
		}
		log.Println("[DB] Using PostgreSQL:", MaskDSN(normalized))
		// SQL migrations are opt-in and postgres-only; the default path is
		// AutoMigrate (dev convenience, and the only option for SQLite).
		if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
			if err := runSQLMigrations(normalized); err != nil {
				return nil, fmt.Errorf("sql migrations failed: %w", err)
			}
		} else if err := autoMigrate(conn); err != nil {
			return nil, err
		}
	} else {
		if dir := filepath.Dir(sqlitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		conn, err = gorm.Open(sqlite.Open(sqlitePath), cfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", sqlitePath, err)
		}
		log.Println("[DB] Using SQLite:", sqlitePath)
		if err := autoMigrate(conn); err != nil {
			return nil, err
		}
	}

	if pingErr := conn.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	for _, table := range []string{"users", "produks", "transaksis"} {
		if !conn.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" {
		if err := Seed(conn); err != nil {
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}
	return conn, nil
}

// Models returns every persisted model in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.User{}, &models.Kategori{}, &models.Produk{}, &models.HargaVariasi{},
		&models.Member{}, &models.Transaksi{}, &models.TransaksiItem{}, &models.Pengaturan{},
	}
}

func autoMigrate(conn *gorm.DB) error {
	for _, m := range Models() {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

func runSQLMigrations(dsn string) error {
	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = "migrations"
	}
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return err
	}
	defer func() {
		if _, cerr := m.Close(); cerr != nil {
			log.Println("[DB] migrate close:", cerr)
		}
	}()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
