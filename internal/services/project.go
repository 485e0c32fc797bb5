package services

import (
	"errors"
	"time"

	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectService owns every validated mutation path for projects and their
// membership sets. Project.Members is never written outside this service.
type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

// SeedTaskInput is a task created together with its project.
type SeedTaskInput struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeID  *uint      `json:"assignee_id"`
}

type CreateProjectRequest struct {
	Name         string          `json:"name" binding:"required,min=1"`
	Description  string          `json:"description"`
	Status       string          `json:"status"`
	OwnerID      uint            `json:"owner_id" binding:"required"`
	Members      []MemberInput   `json:"members"`
	DefaultTasks []SeedTaskInput `json:"default_tasks"`
}

type ProjectListRequest struct {
	Status string
	Owner  uint
	Search string
	Page   int
	Limit  int
}

type ProjectListResponse struct {
	Items []models.Project `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// Create validates the member set and persists the project together with its
// membership rows and optional seed tasks as one transaction. Either
// everything is created or nothing is.
func (s *ProjectService) Create(req *CreateProjectRequest) (*models.Project, error) {
	status := req.Status
	if status == "" {
		status = models.ProjectStatusActive
	}
	if status != models.ProjectStatusActive && status != models.ProjectStatusArchived {
		return nil, response.NewBadRequest("invalid status, must be 'active' or 'archived'")
	}

	members := MergeMembers(nil, req.Members)
	if err := ValidateMembers(s.db, req.OwnerID, members); err != nil {
		return nil, err
	}

	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		OwnerID:     req.OwnerID,
	}

	if err := validateSeedTasks(req.DefaultTasks, req.OwnerID, members); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		for _, m := range members {
			row := models.ProjectMembership{ProjectID: project.ID, UserID: m.UserID, Role: m.Role}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for _, t := range req.DefaultTasks {
			task := models.Task{
				ProjectID:   project.ID,
				Title:       t.Title,
				Description: t.Description,
				Status:      defaultString(t.Status, models.TaskStatusTodo),
				Priority:    defaultString(t.Priority, models.TaskPriorityMedium),
				DueDate:     t.DueDate,
				AssigneeID:  t.AssigneeID,
			}
			if err := tx.Create(&task).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(project.ID)
}

// List returns projects visible to the actor. Non-admins only see projects
// they own or belong to.
func (s *ProjectService) List(actor *models.User, req *ProjectListRequest) (*ProjectListResponse, error) {
	page, limit := normalizePage(req.Page, req.Limit)

	query := s.db.Model(&models.Project{})
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Owner != 0 {
		query = query.Where("owner_id = ?", req.Owner)
	}
	if req.Search != "" {
		query = query.Where("name LIKE ?", "%"+req.Search+"%")
	}
	if !actor.IsAdmin() {
		query = query.Where("owner_id = ? OR id IN (?)", actor.ID,
			s.db.Model(&models.ProjectMembership{}).Select("project_id").Where("user_id = ?", actor.ID))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var projects []models.Project
	err := query.Order("id ASC").
		Offset((page - 1) * limit).Limit(limit).
		Preload("Owner").Preload("Members.User").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}

	return &ProjectListResponse{Items: projects, Total: total, Page: page, Limit: limit}, nil
}

// Get loads a project with its owner and membership rows.
func (s *ProjectService) Get(id uint) (*models.Project, error) {
	var project models.Project
	err := s.db.Preload("Owner").Preload("Members.User").First(&project, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}
	return &project, nil
}

// Update replaces the project's fields and full member set after re-running
// the member validation against the incoming set.
func (s *ProjectService) Update(id uint, req *CreateProjectRequest) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = project.Status
	}
	if status != models.ProjectStatusActive && status != models.ProjectStatusArchived {
		return nil, response.NewBadRequest("invalid status, must be 'active' or 'archived'")
	}

	members := MergeMembers(nil, req.Members)
	if err := ValidateMembers(s.db, req.OwnerID, members); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":        req.Name,
			"description": req.Description,
			"status":      status,
			"owner_id":    req.OwnerID,
		}
		if err := tx.Model(&project).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.ProjectMembership{}).Error; err != nil {
			return err
		}
		for _, m := range members {
			row := models.ProjectMembership{ProjectID: project.ID, UserID: m.UserID, Role: m.Role}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(project.ID)
}

// Delete removes the project, its membership rows and all of its tasks in one
// transaction; no orphan tasks remain.
func (s *ProjectService) Delete(id uint) error {
	var project models.Project
	if err := s.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("project not found")
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.ProjectMembership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&project).Error
	})
}

// AssignMembers merges incoming memberships into the existing set and
// persists the result if it still satisfies the invariants. The project row
// is re-read under a row lock inside the transaction so two concurrent
// assignments cannot both slip a second project manager past the count check.
func (s *ProjectService) AssignMembers(id uint, incoming []MemberInput) (*models.Project, error) {
	if len(incoming) == 0 {
		return nil, response.NewBadRequest("members must not be empty")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		q := tx
		// sqlite has no FOR UPDATE; its write transactions are serialized
		// already, so the lock is only needed on the server databases.
		if tx.Dialector.Name() != "sqlite" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var project models.Project
		err := q.First(&project, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("project not found")
			}
			return err
		}

		var existing []models.ProjectMembership
		if err := tx.Where("project_id = ?", project.ID).Order("id ASC").Find(&existing).Error; err != nil {
			return err
		}

		merged := MergeMembers(existing, incoming)
		if err := ValidateMembers(tx, project.OwnerID, merged); err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", project.ID).Delete(&models.ProjectMembership{}).Error; err != nil {
			return err
		}
		for _, m := range merged {
			row := models.ProjectMembership{ProjectID: project.ID, UserID: m.UserID, Role: m.Role}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(id)
}

// validateSeedTasks checks that seed tasks reference valid enums and that any
// assignee is the owner or part of the incoming member set; seed tasks are
// written in the same transaction as the memberships they depend on.
func validateSeedTasks(tasks []SeedTaskInput, ownerID uint, members []MemberInput) error {
	memberSet := make(map[uint]bool, len(members)+1)
	memberSet[ownerID] = true
	for _, m := range members {
		memberSet[m.UserID] = true
	}

	for _, t := range tasks {
		if t.Status != "" && !models.ValidTaskStatus(t.Status) {
			return response.NewBadRequest("invalid task status, must be 'todo', 'in-progress' or 'done'")
		}
		if t.Priority != "" && !models.ValidTaskPriority(t.Priority) {
			return response.NewBadRequest("invalid task priority, must be 'low', 'medium' or 'high'")
		}
		if t.AssigneeID != nil && !memberSet[*t.AssigneeID] {
			return response.NewBadRequest("assignee is not a member of this project")
		}
	}
	return nil
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}
