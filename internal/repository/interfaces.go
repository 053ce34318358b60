package repository

import (
	"context"
	"time"

	"github.com/uniconnect/uniconnect-api/internal/models"
)

// StudentRepositoryInterface defines data access for student profiles
type StudentRepositoryInterface interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id string) (*models.Student, error)
	GetByEmail(ctx context.Context, email string) (*models.Student, error)
	List(ctx context.Context, filters models.StudentFilters) ([]*models.Student, error)
	Update(ctx context.Context, id string, update *models.StudentUpdate) (*models.Student, error)
	Delete(ctx context.Context, id string) error
}

// OTPRepositoryInterface defines data access for OTP challenges
type OTPRepositoryInterface interface {
	Create(ctx context.Context, challenge *models.OTPChallenge) error
	DeleteUnverifiedByEmail(ctx context.Context, email string) error
	FindActive(ctx context.Context, email, code string, now time.Time) (*models.OTPChallenge, error)
	MarkVerified(ctx context.Context, id string) error
	FindVerified(ctx context.Context, email, code, studentID string) (*models.OTPChallenge, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SettingsRepositoryInterface defines data access for the settings singleton
type SettingsRepositoryInterface interface {
	GetOrCreate(ctx context.Context) (*models.Settings, error)
	Patch(ctx context.Context, update *models.SettingsUpdate) (*models.Settings, error)
}
