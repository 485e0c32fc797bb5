package services

import (
	"errors"

	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/pkg/response"
	"gorm.io/gorm"
)

// UserService implements the admin-only user directory operations.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type UserListRequest struct {
	Role   string
	Search string
	Page   int
	Limit  int
}

type UserListResponse struct {
	Items []models.User `json:"data"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

func (s *UserService) List(req *UserListRequest) (*UserListResponse, error) {
	page, limit := normalizePage(req.Page, req.Limit)

	query := s.db.Model(&models.User{})
	if req.Role != "" {
		query = query.Where("role = ?", req.Role)
	}
	if req.Search != "" {
		query = query.Where("name LIKE ? OR email LIKE ?", "%"+req.Search+"%", "%"+req.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var users []models.User
	if err := query.Order("id ASC").Offset((page - 1) * limit).Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}

	return &UserListResponse{Items: users, Total: total, Page: page, Limit: limit}, nil
}

func (s *UserService) Get(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// Update applies an admin edit to a user record. Role changes here do not
// rewrite existing membership rows; membership consistency is re-checked the
// next time the project's member set is mutated.
func (s *UserService) Update(id uint, req *UpdateUserRequest) (*models.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		if *req.Name == "" {
			return nil, response.NewBadRequest("name must not be empty")
		}
		updates["name"] = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		var count int64
		if err := s.db.Model(&models.User{}).Where("email = ?", *req.Email).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, response.NewConflict("email already registered")
		}
		updates["email"] = *req.Email
	}
	if req.Role != nil {
		role := models.GlobalRole(*req.Role)
		if !role.Valid() {
			return nil, response.NewBadRequest("invalid role, must be 'admin', 'project_manager' or 'member'")
		}
		updates["role"] = role
	}

	if len(updates) == 0 {
		return nil, response.NewBadRequest("no fields to update")
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.db.First(user, id)
	return user, nil
}

// Delete removes a user, but only when no project or task references them:
// users who own projects, appear on a membership row, or are assigned to a
// task cannot be deleted.
func (s *UserService) Delete(id uint) error {
	user, err := s.Get(id)
	if err != nil {
		return err
	}

	var owned int64
	if err := s.db.Model(&models.Project{}).Where("owner_id = ?", id).Count(&owned).Error; err != nil {
		return err
	}
	var memberships int64
	if err := s.db.Model(&models.ProjectMembership{}).Where("user_id = ?", id).Count(&memberships).Error; err != nil {
		return err
	}
	if owned > 0 || memberships > 0 {
		return response.NewBadRequest("cannot delete user: user is associated with projects")
	}

	var assigned int64
	if err := s.db.Model(&models.Task{}).Where("assignee_id = ?", id).Count(&assigned).Error; err != nil {
		return err
	}
	if assigned > 0 {
		return response.NewBadRequest("cannot delete user: user is assigned to tasks")
	}

	return s.db.Delete(user).Error
}
