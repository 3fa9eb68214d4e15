package services

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/taskflowhq/taskflow-api/internal/apperrors"
	"github.com/taskflowhq/taskflow-api/internal/constants"
	"github.com/taskflowhq/taskflow-api/internal/models"
	"github.com/taskflowhq/taskflow-api/internal/repository"
)

// AuthService handles signup and credential verification. Identity
// resolution afterwards is the tenant directory's job.
type AuthService struct {
	principals repository.PrincipalRepository
	tenants    repository.TenantRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(principals repository.PrincipalRepository, tenants repository.TenantRepository) *AuthService {
	return &AuthService{
		principals: principals,
		tenants:    tenants,
	}
}

// SignupInput represents the required information to create a new tenant and
// its first admin.
type SignupInput struct {
	Email       string
	Password    string
	CompanyName string
}

// Signup creates a tenant and its first admin principal atomically. Every
// non-superuser principal carries exactly one tenant from the moment it
// exists.
func (s *AuthService) Signup(input SignupInput) (*models.Principal, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return nil, apperrors.E(apperrors.KindValidation, "Email is required")
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, apperrors.E(apperrors.KindValidation, "Password too short")
	}
	companyName := strings.TrimSpace(input.CompanyName)
	if companyName == "" {
		return nil, apperrors.E(apperrors.KindValidation, "Company name is required")
	}

	if _, err := s.principals.FindByEmail(email); err == nil {
		return nil, apperrors.E(apperrors.KindConflict, "Email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	tenant := &models.Tenant{
		Name:   companyName,
		Status: models.TenantStatusActive,
	}
	principal := &models.Principal{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Status:       models.PrincipalStatusActive,
	}

	if err := s.tenants.CreateWithAdmin(tenant, principal); err != nil {
		switch {
		case errors.Is(err, repository.ErrCreateTenant):
			return nil, fmt.Errorf("failed to create tenant: %w", err)
		case errors.Is(err, repository.ErrCreateAdmin):
			return nil, fmt.Errorf("failed to create admin principal: %w", err)
		default:
			return nil, fmt.Errorf("failed to complete signup: %w", err)
		}
	}

	return principal, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated principal.
func (s *AuthService) Login(input LoginInput) (*models.Principal, error) {
	principal, err := s.principals.FindByEmail(strings.TrimSpace(strings.ToLower(input.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindUnauthorized, "Invalid email or password")
		}
		return nil, fmt.Errorf("failed to find principal: %w", err)
	}

	if principal.Status != models.PrincipalStatusActive {
		return nil, apperrors.E(apperrors.KindUnauthorized, "Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperrors.E(apperrors.KindUnauthorized, "Invalid email or password")
	}

	return principal, nil
}

// GetPrincipal retrieves a principal by ID.
func (s *AuthService) GetPrincipal(id uint64) (*models.Principal, error) {
	principal, err := s.principals.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindNotFound, "Principal not found")
		}
		return nil, fmt.Errorf("failed to find principal: %w", err)
	}
	return principal, nil
}
