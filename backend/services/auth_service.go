package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"quizhub/backend/apperr"
	"quizhub/backend/config"
	"quizhub/backend/models"
	"quizhub/backend/utils"
)

type AuthService struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{DB: db, Cfg: cfg}
}

// UserView is the sanitized user shape returned by the API. The
// password hash never appears in a response.
type UserView struct {
	ID        uint        `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

func NewUserView(user *models.User) *UserView {
	return &UserView{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

type RegisterInput struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Name     string      `json:"name" validate:"required"`
	Role     models.Role `json:"role" validate:"required,oneof=TEACHER STUDENT"`
}

func (s *AuthService) Register(input RegisterInput) (*UserView, string, error) {
	var existing models.User
	err := s.DB.Where("email = ?", input.Email).First(&existing).Error
	if err == nil {
		return nil, "", apperr.New(apperr.Conflict, "User with this email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	user := models.User{
		Email:    input.Email,
		Password: hash,
		Name:     input.Name,
		Role:     input.Role,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		return nil, "", err
	}

	token, err := utils.GenerateJWTToken(user.ID, user.Role, s.Cfg)
	if err != nil {
		return nil, "", err
	}

	return NewUserView(&user), token, nil
}

func (s *AuthService) Login(email, password string) (*UserView, string, error) {
	var user models.User
	err := s.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperr.New(apperr.InvalidCredentials, "Invalid email or password")
		}
		return nil, "", err
	}

	if !utils.VerifyPassword(password, user.Password) {
		return nil, "", apperr.New(apperr.InvalidCredentials, "Invalid email or password")
	}

	token, err := utils.GenerateJWTToken(user.ID, user.Role, s.Cfg)
	if err != nil {
		return nil, "", err
	}

	return NewUserView(&user), token, nil
}

func (s *AuthService) Profile(userID uint) (*UserView, error) {
	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "User not found")
		}
		return nil, err
	}
	return NewUserView(&user), nil
}
