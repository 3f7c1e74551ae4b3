package service_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"sticky-notes-api/internal/apperr"
	"sticky-notes-api/internal/core/auth"
	"sticky-notes-api/internal/core/database"
	"sticky-notes-api/internal/domain"
)

// openTestDB 每个测试一个独立的 sqlite 文件库
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "test.db"),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Note{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func testJWTer() *auth.JWTer {
	return &auth.JWTer{
		AccessSecret:  []byte("svc-test-access"),
		RefreshSecret: []byte("svc-test-refresh"),
		Issuer:        "svc-test",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	}
}

// wantCode 断言错误带上了预期的 HTTP 状态码
func wantCode(t *testing.T, err error, code int) *apperr.E {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", code)
	}
	var e *apperr.E
	if !errors.As(err, &e) {
		t.Fatalf("expected *apperr.E, got %T: %v", err, err)
	}
	if e.Code != code {
		t.Fatalf("expected code %d, got %d (%s)", code, e.Code, e.Msg)
	}
	return e
}
