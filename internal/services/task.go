package services

import (
	"errors"
	"time"

	"github.com/taskforge/taskforge/internal/authz"
	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/pkg/response"
	"gorm.io/gorm"
)

// TaskService owns the validated mutation paths for tasks. Assignee changes
// always re-run the membership and reassignment-role checks before anything
// is persisted.
type TaskService struct {
	db *gorm.DB
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db}
}

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,min=1"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeID  *uint      `json:"assignee_id"`
}

// UpdateTaskRequest carries partial updates; nil fields are left unchanged.
// An assignee_id of 0 clears the assignment.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeID  *uint      `json:"assignee_id"`
}

type TaskListRequest struct {
	Status   string
	Priority string
	Assignee uint
	Page     int
	Limit    int
}

type TaskListResponse struct {
	Items []models.Task `json:"data"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// Create adds a task to an already-authorized project. project must carry its
// membership rows; if an assignee is given they must be the owner or a
// current member.
func (s *TaskService) Create(project *models.Project, req *CreateTaskRequest) (*models.Task, error) {
	status := defaultString(req.Status, models.TaskStatusTodo)
	priority := defaultString(req.Priority, models.TaskPriorityMedium)
	if !models.ValidTaskStatus(status) {
		return nil, response.NewBadRequest("invalid task status, must be 'todo', 'in-progress' or 'done'")
	}
	if !models.ValidTaskPriority(priority) {
		return nil, response.NewBadRequest("invalid task priority, must be 'low', 'medium' or 'high'")
	}

	if req.AssigneeID != nil {
		if err := s.checkAssigneeMembership(project, *req.AssigneeID); err != nil {
			return nil, err
		}
	}

	task := models.Task{
		ProjectID:   project.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate,
		AssigneeID:  req.AssigneeID,
	}
	if err := s.db.Create(&task).Error; err != nil {
		return nil, err
	}

	s.db.Preload("Assignee").First(&task, task.ID)
	return &task, nil
}

// List returns a page of the project's tasks. When filterToAssignee is set
// (plain members) the result is restricted to tasks assigned to the actor and
// the assignee query filter is ignored.
func (s *TaskService) List(project *models.Project, actor *models.User, filterToAssignee bool, req *TaskListRequest) (*TaskListResponse, error) {
	page, limit := normalizePage(req.Page, req.Limit)

	query := s.db.Model(&models.Task{}).Where("project_id = ?", project.ID)
	if filterToAssignee {
		query = query.Where("assignee_id = ?", actor.ID)
	} else {
		if req.Status != "" {
			query = query.Where("status = ?", req.Status)
		}
		if req.Priority != "" {
			query = query.Where("priority = ?", req.Priority)
		}
		if req.Assignee != 0 {
			query = query.Where("assignee_id = ?", req.Assignee)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var tasks []models.Task
	err := query.Order("id ASC").
		Offset((page - 1) * limit).Limit(limit).
		Preload("Assignee").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	return &TaskListResponse{Items: tasks, Total: total, Page: page, Limit: limit}, nil
}

// Get loads a task by id.
func (s *TaskService) Get(id uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.Preload("Assignee").First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("task not found")
		}
		return nil, err
	}
	return &task, nil
}

// Update applies field updates to an already-authorized task. Reassignment to
// a different user re-runs the assignee-membership invariant and the
// reassignment role rule; other fields are not role-checked beyond the access
// the caller already passed.
func (s *TaskService) Update(project *models.Project, task *models.Task, actor *models.User, rel authz.Relationship, req *UpdateTaskRequest) (*models.Task, error) {
	if req.AssigneeID != nil {
		newID := *req.AssigneeID
		switch {
		case newID == 0:
			task.AssigneeID = nil
		case task.AssigneeID == nil || *task.AssigneeID != newID:
			if err := s.checkAssigneeMembership(project, newID); err != nil {
				return nil, err
			}
			if !authz.CanReassign(actor, rel, newID) {
				return nil, response.NewForbidden("members can only reassign tasks to themselves")
			}
			task.AssigneeID = &newID
		}
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, response.NewBadRequest("title must not be empty")
		}
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		if !models.ValidTaskStatus(*req.Status) {
			return nil, response.NewBadRequest("invalid task status, must be 'todo', 'in-progress' or 'done'")
		}
		task.Status = *req.Status
	}
	if req.Priority != nil {
		if !models.ValidTaskPriority(*req.Priority) {
			return nil, response.NewBadRequest("invalid task priority, must be 'low', 'medium' or 'high'")
		}
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}

	if err := s.db.Save(task).Error; err != nil {
		return nil, err
	}

	s.db.Preload("Assignee").First(task, task.ID)
	return task, nil
}

// Delete removes a single task.
func (s *TaskService) Delete(task *models.Task) error {
	return s.db.Delete(task).Error
}

// checkAssigneeMembership enforces the write-time assignee invariant: the
// user exists and is the project owner or a current member.
func (s *TaskService) checkAssigneeMembership(project *models.Project, assigneeID uint) error {
	var user models.User
	if err := s.db.First(&user, assigneeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewBadRequest("invalid assignee user id")
		}
		return err
	}

	rel := authz.Resolve(project, assigneeID)
	if !rel.IsMember {
		return response.NewBadRequest("assignee is not a member of this project")
	}
	return nil
}
