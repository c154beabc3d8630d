// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/config"
	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/models"
	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/utils"
)

type AuthService struct {
	db     *gorm.DB
	config *config.Config
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreatePersonRequest struct {
	Username  string `json:"username" validate:"required,username"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,strong_password"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Role      string `json:"role" validate:"omitempty,oneof=admin agent merchant"`
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // seconds
}

func NewAuthService(db *gorm.DB, config *config.Config) *AuthService {
	return &AuthService{
		db:     db,
		config: config,
	}
}

func (s *AuthService) Login(req *LoginRequest) (*models.Person, *AuthTokens, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, nil, fmt.Errorf("validation failed: %w", err)
	}

	var person models.Person
	if err := s.db.Where("username = ? OR email = ?", req.Username, req.Username).First(&person).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errors.New("invalid credentials")
		}
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	if person.Status != models.PersonStatusActive {
		return nil, nil, errors.New("account is not active")
	}

	if err := person.CheckPassword(req.Password); err != nil {
		return nil, nil, errors.New("invalid credentials")
	}

	tokens, err := s.issueTokens(&person)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	s.db.Model(&person).Update("last_login_at", now)

	return &person, tokens, nil
}

func (s *AuthService) RefreshTokens(refreshToken string) (*AuthTokens, error) {
	subject, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	personID, err := uuid.Parse(subject)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	person, err := s.GetPerson(personID)
	if err != nil {
		return nil, err
	}

	if person.Status != models.PersonStatusActive {
		return nil, errors.New("account is not active")
	}

	return s.issueTokens(person)
}

func (s *AuthService) GetPerson(id uuid.UUID) (*models.Person, error) {
	var person models.Person
	if err := s.db.First(&person, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &person, nil
}

// CreatePerson registers a login/approver identity. Admin only; exposed
// through the admin routes.
func (s *AuthService) CreatePerson(req *CreatePersonRequest) (*models.Person, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var count int64
	s.db.Model(&models.Person{}).Where("username = ? OR email = ?", req.Username, req.Email).Count(&count)
	if count > 0 {
		return nil, errors.New("username or email already exists")
	}

	role := models.PersonRole(req.Role)
	if req.Role == "" {
		role = models.PersonRoleAgent
	}

	person := &models.Person{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
		Status:    models.PersonStatusActive,
	}
	if err := person.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(person).Error; err != nil {
		return nil, fmt.Errorf("failed to create person: %w", err)
	}

	return person, nil
}

func (s *AuthService) issueTokens(person *models.Person) (*AuthTokens, error) {
	accessToken, err := utils.GenerateJWT(person.ID, person.Username, string(person.Role), s.config.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(person.ID, s.config.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.config.JWT.AccessTokenTTL * 3600,
	}, nil
}
