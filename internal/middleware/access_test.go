package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/taskforge/taskforge/internal/authz"
	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/pkg/response"
	"gorm.io/gorm"
)

// accessFixture seeds a project with an owner, a project manager, a plain
// member and one task assigned to the member.
type accessFixture struct {
	db      *gorm.DB
	owner   *models.User
	manager *models.User
	member  *models.User
	project *models.Project
	task    *models.Task
}

func newAccessFixture(t *testing.T) *accessFixture {
	t.Helper()
	db := newTestDB(t)

	f := &accessFixture{
		db:      db,
		owner:   createTestUser(t, db, models.GlobalRoleAdmin),
		manager: createTestUser(t, db, models.GlobalRoleProjectManager),
		member:  createTestUser(t, db, models.GlobalRoleMember),
	}

	project := models.Project{Name: "Fixture", Status: models.ProjectStatusActive, OwnerID: f.owner.ID}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	rows := []models.ProjectMembership{
		{ProjectID: project.ID, UserID: f.manager.ID, Role: models.ProjectRoleManager},
		{ProjectID: project.ID, UserID: f.member.ID, Role: models.ProjectRoleMember},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("failed to create membership: %v", err)
		}
	}

	task := models.Task{
		ProjectID:  project.ID,
		Title:      "Fixture task",
		Status:     models.TaskStatusTodo,
		Priority:   models.TaskPriorityMedium,
		AssigneeID: &f.member.ID,
	}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	f.project = &project
	f.task = &task
	return f
}

// get runs a request through the given router as the given user, or as an
// outsider when user is nil.
func (f *accessFixture) get(t *testing.T, r *gin.Engine, user *models.User, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", path, nil)
	if user != nil {
		// Bypass the auth middleware; these routers seed the context directly.
		req.Header.Set("X-Test-User", fmt.Sprintf("%d", user.ID))
	}
	r.ServeHTTP(w, req)
	return w
}

// withUser injects the user into the gin context the way AuthRequired would.
func withUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if idStr := c.GetHeader("X-Test-User"); idStr != "" {
			var user models.User
			if err := db.First(&user, idStr).Error; err == nil {
				c.Set(ContextUser, &user)
			}
		}
		c.Next()
	}
}

func TestProjectScope_ViewAccess(t *testing.T) {
	f := newAccessFixture(t)

	r := gin.New()
	r.GET("/projects/:id", withUser(f.db), ProjectScope(f.db, authz.OpProjectView), func(c *gin.Context) {
		response.Success(c, ScopedProject(c))
	})

	path := fmt.Sprintf("/projects/%d", f.project.ID)

	for _, u := range []*models.User{f.owner, f.manager, f.member} {
		if w := f.get(t, r, u, path); w.Code != http.StatusOK {
			t.Errorf("expected 200 for %s, got %d", u.Name, w.Code)
		}
	}

	outsider := models.User{Name: "outsider", Email: "outsider@example.com", Password: "irrelevant", Role: models.GlobalRoleMember}
	if err := f.db.Create(&outsider).Error; err != nil {
		t.Fatalf("failed to create outsider: %v", err)
	}
	if w := f.get(t, r, &outsider, path); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for outsider, got %d", w.Code)
	}

	if w := f.get(t, r, f.owner, "/projects/9999"); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown project, got %d", w.Code)
	}
	if w := f.get(t, r, f.owner, "/projects/abc"); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %d", w.Code)
	}
}

func TestProjectScope_TaskCreateDeniedForPlainMember(t *testing.T) {
	f := newAccessFixture(t)

	r := gin.New()
	r.GET("/projects/:projectId/tasks", withUser(f.db), ProjectScope(f.db, authz.OpTaskCreate), func(c *gin.Context) {
		response.Success(c, nil)
	})

	path := fmt.Sprintf("/projects/%d/tasks", f.project.ID)
	if w := f.get(t, r, f.manager, path); w.Code != http.StatusOK {
		t.Errorf("expected 200 for project manager, got %d", w.Code)
	}
	if w := f.get(t, r, f.member, path); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for plain member, got %d", w.Code)
	}
}

func TestProjectScope_ListDecisionFiltersPlainMember(t *testing.T) {
	f := newAccessFixture(t)

	r := gin.New()
	r.GET("/projects/:projectId/tasks", withUser(f.db), ProjectScope(f.db, authz.OpTaskList), func(c *gin.Context) {
		response.Success(c, gin.H{"filtered": ScopedDecision(c).FilterToAssignee})
	})

	path := fmt.Sprintf("/projects/%d/tasks", f.project.ID)

	w := f.get(t, r, f.member, path)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for member, got %d", w.Code)
	}
	if want := `"filtered":true`; !strings.Contains(w.Body.String(), want) {
		t.Errorf("expected member decision filtered, body: %s", w.Body.String())
	}

	w = f.get(t, r, f.manager, path)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for manager, got %d", w.Code)
	}
	if want := `"filtered":false`; !strings.Contains(w.Body.String(), want) {
		t.Errorf("expected manager decision unfiltered, body: %s", w.Body.String())
	}
}

func TestTaskScope_AssigneeAccess(t *testing.T) {
	f := newAccessFixture(t)

	r := gin.New()
	r.GET("/tasks/:id", withUser(f.db), TaskScope(f.db, authz.OpTaskView), func(c *gin.Context) {
		response.Success(c, ScopedTask(c))
	})
	r.GET("/tasks/:id/delete", withUser(f.db), TaskScope(f.db, authz.OpTaskDelete), func(c *gin.Context) {
		response.Success(c, nil)
	})

	viewPath := fmt.Sprintf("/tasks/%d", f.task.ID)
	deletePath := fmt.Sprintf("/tasks/%d/delete", f.task.ID)

	// The assignee may view their task but not delete it.
	if w := f.get(t, r, f.member, viewPath); w.Code != http.StatusOK {
		t.Errorf("expected 200 for assignee view, got %d", w.Code)
	}
	if w := f.get(t, r, f.member, deletePath); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for assignee delete, got %d", w.Code)
	}

	// The project manager may do both.
	if w := f.get(t, r, f.manager, deletePath); w.Code != http.StatusOK {
		t.Errorf("expected 200 for manager delete, got %d", w.Code)
	}

	if w := f.get(t, r, f.owner, "/tasks/9999"); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown task, got %d", w.Code)
	}
}

func TestTaskScope_AttachesTaskToContext(t *testing.T) {
	f := newAccessFixture(t)

	r := gin.New()
	r.GET("/tasks/:id", withUser(f.db), TaskScope(f.db, authz.OpTaskView), func(c *gin.Context) {
		task := ScopedTask(c)
		project := ScopedProject(c)
		if task == nil || project == nil {
			response.ServerError(c, "scope not attached")
			return
		}
		response.Success(c, gin.H{"task_id": task.ID, "project_id": project.ID})
	})

	w := f.get(t, r, f.owner, fmt.Sprintf("/tasks/%d", f.task.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
