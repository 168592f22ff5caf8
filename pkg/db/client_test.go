package db

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/seemtoseven/registry-backend/pkg/config"
	"github.com/seemtoseven/registry-backend/pkg/logger"
)

type testModel struct {
	ID   int
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	db := newTestDB(t)
	client := NewFromConn(db)

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to discard insert, got %d records", count)
	}
}

func TestNewAgainstPostgres(t *testing.T) {
	dsn := os.Getenv("REGISTRY_DB_DSN")
	if dsn == "" {
		t.Skip("REGISTRY_DB_DSN is not set")
	}

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := New(context.Background(), config.DBConfig{DSN: dsn, Driver: "postgres"}, logg)
	if err != nil {
		t.Fatalf("failed to open postgres: %v", err)
	}
	defer client.Close()

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error should not be a unique violation")
	}

	sqliteErr := errors.New("UNIQUE constraint failed: units.access_code")
	if !IsUniqueViolation(sqliteErr, "") {
		t.Fatal("sqlite unique error should be detected")
	}
	if !IsUniqueViolation(sqliteErr, "access_code") {
		t.Fatal("constraint substring should match")
	}

	pgStyle := errors.New(`duplicate key value violates unique constraint "units_access_code_key"`)
	if !IsUniqueViolation(pgStyle, "") {
		t.Fatal("pg-style duplicate key message should be detected")
	}
	if IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatal("unrelated error should not match")
	}
}
