package services

import (
	"errors"
	"time"

	"github.com/taskforge/taskforge/internal/config"
	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/utils"
	"github.com/taskforge/taskforge/pkg/response"
	"gorm.io/gorm"
)

// AuthService handles signup, login and logout. Credential hashing and token
// issuance are delegated to internal/utils; revocation bookkeeping to the
// RevocationService.
type AuthService struct {
	db         *gorm.DB
	jwtConfig  *config.JWTConfig
	revocation *RevocationService
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig, revocation *RevocationService) *AuthService {
	return &AuthService{db: db, jwtConfig: jwtCfg, revocation: revocation}
}

type SignupRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token    string       `json:"token"`
	User     *models.User `json:"user"`
	ExpireAt time.Time    `json:"expire_at"`
}

// Signup registers a new user. Duplicate emails are rejected with a conflict.
func (s *AuthService) Signup(req *SignupRequest) (*models.User, error) {
	role := models.GlobalRole(req.Role)
	if !role.Valid() {
		return nil, response.NewBadRequest("invalid role, must be 'admin', 'project_manager' or 'member'")
	}

	var existing models.User
	err := s.db.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return nil, response.NewConflict("email already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     role,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates by email and password and issues a JWT. Wrong email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(req *LoginRequest) (*LoginResponse, error) {
	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		return nil, response.NewUnauthorized("invalid credentials")
	}

	token, err := utils.GenerateToken(user.ID, user.Email, string(user.Role), s.jwtConfig.ExpireHour)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		Token:    token,
		User:     &user,
		ExpireAt: time.Now().Add(time.Duration(s.jwtConfig.ExpireHour) * time.Hour),
	}, nil
}

// Logout revokes the presented token until its embedded expiry. The token is
// only decoded, not re-verified: the auth middleware already vouched for it,
// and an expired token needs no blacklisting anyway.
func (s *AuthService) Logout(token string) error {
	claims, err := utils.DecodeToken(token)
	if err != nil || claims.ExpiresAt == nil {
		return response.NewBadRequest("invalid token")
	}
	return s.revocation.Revoke(token, claims.ExpiresAt.Time)
}

// GetUserByID returns a user record for the authenticated-user endpoint.
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}
