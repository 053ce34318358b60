package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/uniconnect/uniconnect-api/internal/models"
	"github.com/uniconnect/uniconnect-api/internal/services"
)

// MockStudentService is a mock implementation of StudentServiceInterface
type MockStudentService struct {
	mock.Mock
}

func (m *MockStudentService) Register(ctx context.Context, input *services.RegistrationInput) (*models.Student, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

func (m *MockStudentService) GetByID(ctx context.Context, id string) (*models.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

func (m *MockStudentService) ListPublic(ctx context.Context, filters models.StudentFilters) ([]models.PublicStudentResponse, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PublicStudentResponse), args.Error(1)
}

func (m *MockStudentService) ListAdmin(ctx context.Context, filters models.StudentFilters) ([]*models.Student, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Student), args.Error(1)
}

func (m *MockStudentService) AdminUpdate(ctx context.Context, id string, update *models.StudentUpdate) (*models.Student, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

func (m *MockStudentService) SelfUpdate(ctx context.Context, id string, update *models.StudentUpdate) (*models.Student, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

func (m *MockStudentService) SetAvatar(ctx context.Context, id, avatarURL string) (*models.Student, error) {
	args := m.Called(ctx, id, avatarURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

func (m *MockStudentService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOTPService is a mock implementation of OTPServiceInterface
type MockOTPService struct {
	mock.Mock
}

func (m *MockOTPService) Issue(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockOTPService) Verify(ctx context.Context, email, code string) (*services.VerifyOutcome, error) {
	args := m.Called(ctx, email, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.VerifyOutcome), args.Error(1)
}

func (m *MockOTPService) ConsumeForEdit(ctx context.Context, studentID, email, code string) error {
	args := m.Called(ctx, studentID, email, code)
	return args.Error(0)
}

func (m *MockOTPService) AuthorizeEditToken(studentID, token string) error {
	args := m.Called(studentID, token)
	return args.Error(0)
}

// MockSettingsService is a mock implementation of SettingsServiceInterface
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Get(ctx context.Context) (*models.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Settings), args.Error(1)
}

func (m *MockSettingsService) Patch(ctx context.Context, update *models.SettingsUpdate) (*models.Settings, error) {
	args := m.Called(ctx, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Settings), args.Error(1)
}
