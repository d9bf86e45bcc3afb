package services

import (
	"errors"

	"renthub/internal/models"
	apperrors "renthub/pkg/errors"

	"gorm.io/gorm"
)

// UserService handles accounts and authentication checks.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// RegisterRequest carries a new account.
type RegisterRequest struct {
	Username string  `json:"username" binding:"required,min=3,max=50"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Name     string  `json:"name" binding:"required,max=100"`
	Phone    *string `json:"phone,omitempty"`
	Role     string  `json:"role" binding:"required,oneof=landlord tenant"`
}

// Register creates an account with a hashed password.
func (s *UserService) Register(req *RegisterRequest) (*models.User, error) {
	var count int64
	s.db.Model(&models.User{}).
		Where("username = ? OR email = ?", req.Username, req.Email).
		Count(&count)
	if count > 0 {
		return nil, apperrors.Conflict("username or email already registered")
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     req.Role,
		Status:   models.UserStatusActive,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperrors.Internal("hash password", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Internal("create user", err)
	}
	return user, nil
}

// Authenticate verifies credentials and returns the account.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Validation("invalid email or password")
		}
		return nil, apperrors.Internal("query user", err)
	}

	if !user.CheckPassword(password) {
		return nil, apperrors.Validation("invalid email or password")
	}
	if user.Status != models.UserStatusActive {
		return nil, apperrors.Forbidden("account is disabled")
	}
	return &user, nil
}

// GetByID returns the user or NotFound.
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("query user", err)
	}
	return &user, nil
}

// IsActive reports whether the account may authenticate.
func (s *UserService) IsActive(user *models.User) bool {
	return user.Status == models.UserStatusActive
}

// RequireRole returns the user only when it holds the expected role; used by
// cross-entity reference validation (agreement tenant, request parties).
func (s *UserService) RequireRole(id uint, role string) (*models.User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user.Role != role {
		return nil, apperrors.Validation("user %d does not have role %s", id, role)
	}
	return user, nil
}
