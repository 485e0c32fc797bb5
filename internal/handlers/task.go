package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskforge/taskforge/internal/middleware"
	"github.com/taskforge/taskforge/internal/services"
	"github.com/taskforge/taskforge/pkg/response"
	"gorm.io/gorm"
)

// TaskHandler exposes task endpoints. Every route runs behind ProjectScope or
// TaskScope, so handlers work on the resolved project/task/relationship from
// the request context instead of re-fetching.
type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(db *gorm.DB) *TaskHandler {
	return &TaskHandler{taskService: services.NewTaskService(db)}
}

// Create adds a task to the scoped project.
// POST /api/v1/tasks/projects/:projectId/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Create(middleware.ScopedProject(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, task)
}

// List returns tasks of the scoped project. Plain members only see their own
// assigned tasks, per the engine's decision.
// GET /api/v1/tasks/projects/:projectId/tasks
func (h *TaskHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	assignee, _ := strconv.ParseUint(c.Query("assignee"), 10, 32)

	decision := middleware.ScopedDecision(c)
	resp, err := h.taskService.List(
		middleware.ScopedProject(c),
		middleware.CurrentUser(c),
		decision.FilterToAssignee,
		&services.TaskListRequest{
			Status:   c.Query("status"),
			Priority: c.Query("priority"),
			Assignee: uint(assignee),
			Page:     page,
			Limit:    limit,
		},
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// Get returns the scoped task.
// GET /api/v1/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	response.Success(c, middleware.ScopedTask(c))
}

// Update edits the scoped task, re-checking assignee rules on reassignment.
// PUT /api/v1/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	var req services.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Update(
		middleware.ScopedProject(c),
		middleware.ScopedTask(c),
		middleware.CurrentUser(c),
		middleware.ScopedRelationship(c),
		&req,
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, task)
}

// Delete removes the scoped task.
// DELETE /api/v1/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.taskService.Delete(middleware.ScopedTask(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "task deleted"})
}
