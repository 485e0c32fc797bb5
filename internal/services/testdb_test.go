package services

import (
	"errors"
	"testing"

	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/utils"
	"github.com/taskforge/taskforge/pkg/response"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	utils.SetJWTSecret("test-secret-for-services")
}

// newTestDB opens a fresh in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMembership{},
		&models.Task{},
		&models.RevokedToken{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string, role models.GlobalRole) *models.User {
	t.Helper()

	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := models.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: hash,
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return &user
}

// newTestProject creates a project with an admin owner, one project manager
// and one plain member, returning everything a scenario needs.
func newTestProject(t *testing.T, db *gorm.DB) (*models.Project, *models.User, *models.User, *models.User) {
	t.Helper()

	owner := createUser(t, db, "owner", models.GlobalRoleAdmin)
	manager := createUser(t, db, "manager", models.GlobalRoleProjectManager)
	member := createUser(t, db, "member", models.GlobalRoleMember)

	svc := NewProjectService(db)
	project, err := svc.Create(&CreateProjectRequest{
		Name:    "Test Project",
		OwnerID: owner.ID,
		Members: []MemberInput{
			{UserID: manager.ID, Role: models.ProjectRoleManager},
			{UserID: member.ID, Role: models.ProjectRoleMember},
		},
	})
	if err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}
	return project, owner, manager, member
}

func statusOf(t *testing.T, err error) int {
	t.Helper()

	var appErr *response.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	return appErr.HTTPStatus
}
