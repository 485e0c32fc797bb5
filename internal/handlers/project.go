package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskforge/taskforge/internal/middleware"
	"github.com/taskforge/taskforge/internal/services"
	"github.com/taskforge/taskforge/pkg/response"
	"gorm.io/gorm"
)

// ProjectHandler exposes project CRUD and member assignment. Mutating routes
// are gated to admins by the router; reads go through the authorization
// engine's project scope.
type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{projectService: services.NewProjectService(db)}
}

// Create creates a project with its memberships and optional seed tasks.
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, project)
}

// List returns the projects visible to the actor.
func (h *ProjectHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	owner, _ := strconv.ParseUint(c.Query("owner"), 10, 32)

	resp, err := h.projectService.List(middleware.CurrentUser(c), &services.ProjectListRequest{
		Status: c.Query("status"),
		Owner:  uint(owner),
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// Get returns the project resolved by the authorization middleware.
func (h *ProjectHandler) Get(c *gin.Context) {
	response.Success(c, middleware.ScopedProject(c))
}

// Update replaces the project's fields and member set.
func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Update(uint(id), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// Delete removes the project and all of its tasks atomically.
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	if err := h.projectService.Delete(uint(id)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "project and tasks deleted"})
}

type AssignMembersRequest struct {
	Members []services.MemberInput `json:"members" binding:"required,min=1,dive"`
}

// AssignMembers merges new memberships into the project.
func (h *ProjectHandler) AssignMembers(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req AssignMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.AssignMembers(uint(id), req.Members)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}
