package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/uniconnect/uniconnect-api/internal/models"
	"github.com/uniconnect/uniconnect-api/internal/services"
	apperrors "github.com/uniconnect/uniconnect-api/pkg/errors"
	"github.com/uniconnect/uniconnect-api/pkg/jwt"
)

func newOTPService(otpRepo *MockOTPRepository, studentRepo *MockStudentRepository, m *MockMailer) *services.OTPService {
	tokens := jwt.NewTokenManager("test-secret", "test", 30)
	return services.NewOTPService(otpRepo, studentRepo, m, tokens)
}

func TestOTPService_Issue(t *testing.T) {
	otpRepo := new(MockOTPRepository)
	studentRepo := new(MockStudentRepository)
	mockMailer := new(MockMailer)
	service := newOTPService(otpRepo, studentRepo, mockMailer)
	ctx := context.Background()

	studentRepo.On("GetByEmail", ctx, "sara@example.com").
		Return(&models.Student{ID: "stu-1", Email: "sara@example.com"}, nil).Once()
	otpRepo.On("DeleteUnverifiedByEmail", ctx, "sara@example.com").Return(nil).Once()

	var issued *models.OTPChallenge
	otpRepo.On("Create", ctx, mock.AnythingOfType("*models.OTPChallenge")).
		Run(func(args mock.Arguments) {
			issued = args.Get(1).(*models.OTPChallenge)
		}).
		Return(nil).Once()
	mockMailer.On("SendOTP", ctx, "sara@example.com", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	// Input email is normalized before every lookup
	err := service.Issue(ctx, " Sara@Example.com ")
	assert.NoError(t, err)
	assert.Equal(t, "stu-1", issued.StudentID)
	assert.Len(t, issued.Code, 6)
	assert.False(t, issued.Verified)
	assert.WithinDuration(t, issued.CreatedAt.Add(10*time.Minute), issued.ExpiresAt, time.Second)
	otpRepo.AssertExpectations(t)
	studentRepo.AssertExpectations(t)
	mockMailer.AssertExpectations(t)
}

func TestOTPService_Issue_UnknownEmail(t *testing.T) {
	otpRepo := new(MockOTPRepository)
	studentRepo := new(MockStudentRepository)
	mockMailer := new(MockMailer)
	service := newOTPService(otpRepo, studentRepo, mockMailer)
	ctx := context.Background()

	studentRepo.On("GetByEmail", ctx, "nobody@example.com").
		Return(nil, apperrors.NotFoundError("student")).Once()

	err := service.Issue(ctx, "nobody@example.com")
	assert.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	otpRepo.AssertNotCalled(t, "Create")
	mockMailer.AssertNotCalled(t, "SendOTP")
}

func TestOTPService_Issue_DispatchFailure(t *testing.T) {
	otpRepo := new(MockOTPRepository)
	studentRepo := new(MockStudentRepository)
	mockMailer := new(MockMailer)
	service := newOTPService(otpRepo, studentRepo, mockMailer)
	ctx := context.Background()

	studentRepo.On("GetByEmail", ctx, "sara@example.com").
		Return(&models.Student{ID: "stu-1", Email: "sara@example.com"}, nil).Once()
	otpRepo.On("DeleteUnverifiedByEmail", ctx, "sara@example.com").Return(nil).Once()
	otpRepo.On("Create", ctx, mock.AnythingOfType("*models.OTPChallenge")).Return(nil).Once()
	mockMailer.On("SendOTP", ctx, "sara@example.com", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(errors.New("smtp connection refused")).Once()

	// The challenge is not rolled back; the caller just learns dispatch failed
	err := service.Issue(ctx, "sara@example.com")
	assert.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInternal))
	otpRepo.AssertExpectations(t)
}

func TestOTPService_Verify(t *testing.T) {
	otpRepo := new(MockOTPRepository)
	studentRepo := new(MockStudentRepository)
	mockMailer := new(MockMailer)
	service := newOTPService(otpRepo, studentRepo, mockMailer)
	ctx := context.Background()

	challenge := &models.OTPChallenge{
		ID:        "otp-1",
		Email:     "sara@example.com",
		StudentID: "stu-1",
		Code:      "042137",
		CreatedAt: time.Now().UTC(),
	}

	otpRepo.On("FindActive", ctx, "sara@example.com", "042137", mock.AnythingOfType("time.Time")).
		Return(challenge, nil).Once()
	otpRepo.On("MarkVerified", ctx, "otp-1").Return(nil).Once()
	otpRepo.On("DeleteOlderThan", ctx, mock.AnythingOfType("time.Time")).Return(int64(2), nil).Once()

	outcome, err := service.Verify(ctx, "sara@example.com", "042137")
	assert.NoError(t, err)
	assert.Equal(t, "stu-1", outcome.StudentID)
	assert.NotEmpty(t, outcome.EditToken)
	otpRepo.AssertExpectations(t)
}

func TestOTPService_Verify_UniformRejection(t *testing.T) {
	otpRepo := new(MockOTPRepository)
	studentRepo := new(MockStudentRepository)
	mockMailer := new(MockMailer)
	service := newOTPService(otpRepo, studentRepo, mockMailer)
	ctx := context.Background()

	// Wrong code, expired code and unknown email all surface as not found
	// from the repository and must fail identically
	otpRepo.On("FindActive", ctx, "sara@example.com", "000000", mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.NotFoundError("OTP challenge")).Once()

	outcome, err := service.Verify(ctx, "sara@example.com", "000000")
	assert.Error(t, err)
	assert.Nil(t, outcome)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	otpRepo.AssertNotCalled(t, "MarkVerified")
}

func TestOTPService_Verify_CleanupFailureIsSwallowed(t *testing.T) {
	otpRepo := new(MockOTPRepository)
	studentRepo := new(MockStudentRepository)
	mockMailer := new(MockMailer)
	service := newOTPService(otpRepo, studentRepo, mockMailer)
	ctx := context.Background()

	challenge := &models.OTPChallenge{
		ID:        "otp-1",
		Email:     "sara@example.com",
		StudentID: "stu-1",
		Code:      "042137",
		CreatedAt: time.Now().UTC(),
	}

	otpRepo.On("FindActive", ctx, "sara@example.com", "042137", mock.AnythingOfType("time.Time")).
		Return(challenge, nil).Once()
	otpRepo.On("MarkVerified", ctx, "otp-1").Return(nil).Once()
	otpRepo.On("DeleteOlderThan", ctx, mock.AnythingOfType("time.Time")).
		Return(int64(0), errors.New("deadlock detected")).Once()

	outcome, err := service.Verify(ctx, "sara@example.com", "042137")
	assert.NoError(t, err)
	assert.NotNil(t, outcome)
	otpRepo.AssertExpectations(t)
}

func TestOTPService_ConsumeForEdit_WithinWindow(t *testing.T) {
	otpRepo := new(MockOTPRepository)
	studentRepo := new(MockStudentRepository)
	mockMailer := new(MockMailer)
	service := newOTPService(otpRepo, studentRepo, mockMailer)
	ctx := context.Background()

	studentRepo.On("GetByID", ctx, "stu-1").
		Return(&models.Student{ID: "stu-1", Email: "sara@example.com"}, nil).Once()
	otpRepo.On("FindVerified", ctx, "sara@example.com", "042137", "stu-1").
		Return(&models.OTPChallenge{
			ID:        "otp-1",
			StudentID: "stu-1",
			Verified:  true,
			CreatedAt: time.Now().UTC().Add(-29 * time.Minute),
		}, nil).Once()

	err := service.ConsumeForEdit(ctx, "stu-1", "sara@example.com", "042137")
	assert.NoError(t, err)
	otpRepo.AssertExpectations(t)
}

func TestOTPService_ConsumeForEdit_WindowExpired(t *testing.T) {
	otpRepo := new(MockOTPRepository)
	studentRepo := new(MockStudentRepository)
	mockMailer := new(MockMailer)
	service := newOTPService(otpRepo, studentRepo, mockMailer)
	ctx := context.Background()

	studentRepo.On("GetByID", ctx, "stu-1").
		Return(&models.Student{ID: "stu-1", Email: "sara@example.com"}, nil).Once()
	otpRepo.On("FindVerified", ctx, "sara@example.com", "042137", "stu-1").
		Return(&models.OTPChallenge{
			ID:        "otp-1",
			StudentID: "stu-1",
			Verified:  true,
			CreatedAt: time.Now().UTC().Add(-31 * time.Minute),
		}, nil).Once()

	err := service.ConsumeForEdit(ctx, "stu-1", "sara@example.com", "042137")
	assert.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}

func TestOTPService_ConsumeForEdit_EmailMismatch(t *testing.T) {
	otpRepo := new(MockOTPRepository)
	studentRepo := new(MockStudentRepository)
	mockMailer := new(MockMailer)
	service := newOTPService(otpRepo, studentRepo, mockMailer)
	ctx := context.Background()

	studentRepo.On("GetByID", ctx, "stu-1").
		Return(&models.Student{ID: "stu-1", Email: "sara@example.com"}, nil).Once()

	err := service.ConsumeForEdit(ctx, "stu-1", "other@example.com", "042137")
	assert.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrAccessDenied))
	otpRepo.AssertNotCalled(t, "FindVerified")
}

func TestOTPService_ConsumeForEdit_NeverVerified(t *testing.T) {
	otpRepo := new(MockOTPRepository)
	studentRepo := new(MockStudentRepository)
	mockMailer := new(MockMailer)
	service := newOTPService(otpRepo, studentRepo, mockMailer)
	ctx := context.Background()

	studentRepo.On("GetByID", ctx, "stu-1").
		Return(&models.Student{ID: "stu-1", Email: "sara@example.com"}, nil).Once()
	otpRepo.On("FindVerified", ctx, "sara@example.com", "042137", "stu-1").
		Return(nil, apperrors.NotFoundError("OTP challenge")).Once()

	err := service.ConsumeForEdit(ctx, "stu-1", "sara@example.com", "042137")
	assert.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}

func TestOTPService_AuthorizeEditToken(t *testing.T) {
	otpRepo := new(MockOTPRepository)
	studentRepo := new(MockStudentRepository)
	mockMailer := new(MockMailer)
	service := newOTPService(otpRepo, studentRepo, mockMailer)

	tokens := jwt.NewTokenManager("test-secret", "test", 30)
	token, err := tokens.GenerateEditToken("stu-1", "sara@example.com")
	assert.NoError(t, err)

	assert.NoError(t, service.AuthorizeEditToken("stu-1", token))

	// A valid token for a different student must not authorize this one
	err = service.AuthorizeEditToken("stu-2", token)
	assert.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrAccessDenied))

	err = service.AuthorizeEditToken("stu-1", "not-a-token")
	assert.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}
