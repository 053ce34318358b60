package services

import (
	"context"

	"github.com/uniconnect/uniconnect-api/internal/models"
)

// StudentServiceInterface defines student profile business operations
type StudentServiceInterface interface {
	Register(ctx context.Context, input *RegistrationInput) (*models.Student, error)
	GetByID(ctx context.Context, id string) (*models.Student, error)
	ListPublic(ctx context.Context, filters models.StudentFilters) ([]models.PublicStudentResponse, error)
	ListAdmin(ctx context.Context, filters models.StudentFilters) ([]*models.Student, error)
	AdminUpdate(ctx context.Context, id string, update *models.StudentUpdate) (*models.Student, error)
	SelfUpdate(ctx context.Context, id string, update *models.StudentUpdate) (*models.Student, error)
	SetAvatar(ctx context.Context, id, avatarURL string) (*models.Student, error)
	Delete(ctx context.Context, id string) error
}

// OTPServiceInterface defines the email-verification lifecycle
type OTPServiceInterface interface {
	Issue(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) (*VerifyOutcome, error)
	ConsumeForEdit(ctx context.Context, studentID, email, code string) error
	AuthorizeEditToken(studentID, token string) error
}

// SettingsServiceInterface defines site settings operations
type SettingsServiceInterface interface {
	Get(ctx context.Context) (*models.Settings, error)
	Patch(ctx context.Context, update *models.SettingsUpdate) (*models.Settings, error)
}
