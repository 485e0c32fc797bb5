package models

import (
	"testing"

	"github.com/taskforge/taskforge/internal/config"
	"github.com/taskforge/taskforge/internal/utils"
)

func setupDB(t *testing.T) {
	t.Helper()

	err := InitDB(&config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("failed to init database: %v", err)
	}
	if err := AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
}

func TestInitDB_UnsupportedDriver(t *testing.T) {
	if err := InitDB(&config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestSeedAdminUser(t *testing.T) {
	setupDB(t)

	cfg := &config.AdminConfig{Name: "Admin", Email: "admin@example.com", Password: "changeme123"}
	if err := SeedAdminUser(cfg); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	var admin User
	if err := DB.Where("email = ?", cfg.Email).First(&admin).Error; err != nil {
		t.Fatalf("admin not created: %v", err)
	}
	if admin.Role != GlobalRoleAdmin {
		t.Errorf("expected admin role, got %q", admin.Role)
	}
	if !utils.CheckPassword(cfg.Password, admin.Password) {
		t.Error("seeded password hash does not verify")
	}

	// A second run with another email must not create a second admin.
	if err := SeedAdminUser(&config.AdminConfig{Name: "Other", Email: "other@example.com", Password: "changeme123"}); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	var count int64
	DB.Model(&User{}).Where("role = ?", GlobalRoleAdmin).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one admin, got %d", count)
	}
}
