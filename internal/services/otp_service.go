package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uniconnect/uniconnect-api/internal/mailer"
	"github.com/uniconnect/uniconnect-api/internal/models"
	"github.com/uniconnect/uniconnect-api/internal/repository"
	apperrors "github.com/uniconnect/uniconnect-api/pkg/errors"
	"github.com/uniconnect/uniconnect-api/pkg/jwt"
	"github.com/uniconnect/uniconnect-api/pkg/logger"
	"github.com/uniconnect/uniconnect-api/pkg/metrics"
)

const (
	// codeTTL is how long an issued code stays verifiable
	codeTTL = 10 * time.Minute

	// consumeWindow is how long a verified code authorizes profile edits,
	// measured from when the code was issued
	consumeWindow = 30 * time.Minute

	// cleanupAge is the retention horizon for challenge rows; purging is
	// piggybacked on verification calls rather than run on a schedule
	cleanupAge = time.Hour
)

// VerifyOutcome is the result of a successful OTP verification
type VerifyOutcome struct {
	StudentID string `json:"studentId"`
	EditToken string `json:"editToken"`
}

// OTPService implements the email-verification lifecycle
type OTPService struct {
	otpRepo     repository.OTPRepositoryInterface
	studentRepo repository.StudentRepositoryInterface
	mailer      mailer.Interface
	tokens      *jwt.TokenManager
	now         func() time.Time
}

// NewOTPService creates a new OTP service
func NewOTPService(
	otpRepo repository.OTPRepositoryInterface,
	studentRepo repository.StudentRepositoryInterface,
	m mailer.Interface,
	tokens *jwt.TokenManager,
) *OTPService {
	return &OTPService{
		otpRepo:     otpRepo,
		studentRepo: studentRepo,
		mailer:      m,
		tokens:      tokens,
		now:         time.Now,
	}
}

// Issue creates and emails a fresh verification code for the profile that
// owns the given email. Any previously issued unverified codes for that email
// are invalidated first.
func (s *OTPService) Issue(ctx context.Context, email string) error {
	email = models.NormalizeEmail(email)

	student, err := s.studentRepo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			metrics.OTPIssued.WithLabelValues("not_found").Inc()
		} else {
			metrics.OTPIssued.WithLabelValues("error").Inc()
		}
		return err
	}

	if err := s.otpRepo.DeleteUnverifiedByEmail(ctx, email); err != nil {
		metrics.OTPIssued.WithLabelValues("error").Inc()
		return err
	}

	code, err := generateCode()
	if err != nil {
		metrics.OTPIssued.WithLabelValues("error").Inc()
		return err
	}

	now := s.now().UTC()
	challenge := &models.OTPChallenge{
		ID:        uuid.NewString(),
		Email:     email,
		StudentID: student.ID,
		Code:      code,
		ExpiresAt: now.Add(codeTTL),
		CreatedAt: now,
	}

	if err := s.otpRepo.Create(ctx, challenge); err != nil {
		metrics.OTPIssued.WithLabelValues("error").Inc()
		return err
	}

	// The challenge stays valid even when delivery fails, so a retried send
	// request invalidates it and issues a fresh code.
	if err := s.mailer.SendOTP(ctx, email, code, challenge.ExpiresAt); err != nil {
		metrics.OTPIssued.WithLabelValues("dispatch_error").Inc()
		return apperrors.InternalError("failed to dispatch verification email")
	}

	metrics.OTPIssued.WithLabelValues("success").Inc()
	logger.Log.Info("otp issued", zap.String("student_id", student.ID))
	return nil
}

// Verify consumes an active code and mints a short-lived edit token. The
// rejection is uniform: wrong code, expired code and unknown email all fail
// the same way.
func (s *OTPService) Verify(ctx context.Context, email, code string) (*VerifyOutcome, error) {
	email = models.NormalizeEmail(email)
	now := s.now().UTC()

	challenge, err := s.otpRepo.FindActive(ctx, email, code, now)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			metrics.OTPVerifications.WithLabelValues("rejected").Inc()
			return nil, apperrors.InvalidInputError("code", "invalid or expired code")
		}
		metrics.OTPVerifications.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := s.otpRepo.MarkVerified(ctx, challenge.ID); err != nil {
		metrics.OTPVerifications.WithLabelValues("error").Inc()
		return nil, err
	}

	s.cleanup(ctx, now)

	token, err := s.tokens.GenerateEditToken(challenge.StudentID, email)
	if err != nil {
		metrics.OTPVerifications.WithLabelValues("error").Inc()
		return nil, apperrors.InternalError("failed to mint edit token")
	}

	metrics.OTPVerifications.WithLabelValues("success").Inc()
	logger.Log.Info("otp verified", zap.String("student_id", challenge.StudentID))

	return &VerifyOutcome{StudentID: challenge.StudentID, EditToken: token}, nil
}

// ConsumeForEdit authorizes a profile edit with an already-verified code.
// The code must belong to the target student and have been issued within the
// consume window.
func (s *OTPService) ConsumeForEdit(ctx context.Context, studentID, email, code string) error {
	email = models.NormalizeEmail(email)

	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return err
	}
	if student.Email != email {
		return apperrors.AccessDeniedError("email does not match profile")
	}

	challenge, err := s.otpRepo.FindVerified(ctx, email, code, studentID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return apperrors.UnauthorizedError("verification required")
		}
		return err
	}

	if s.now().UTC().Sub(challenge.CreatedAt) > consumeWindow {
		return apperrors.UnauthorizedError("verification expired")
	}

	return nil
}

// AuthorizeEditToken checks a minted edit token against the target student
func (s *OTPService) AuthorizeEditToken(studentID, token string) error {
	claims, err := s.tokens.ValidateEditToken(token)
	if err != nil {
		return apperrors.UnauthorizedError("invalid edit token")
	}
	if !jwt.TimingSafeCompare(claims.StudentID, studentID) {
		return apperrors.AccessDeniedError("token does not match profile")
	}
	return nil
}

// cleanup purges challenge rows past the retention horizon. Failures are
// logged and swallowed; housekeeping never fails a verification.
func (s *OTPService) cleanup(ctx context.Context, now time.Time) {
	deleted, err := s.otpRepo.DeleteOlderThan(ctx, now.Add(-cleanupAge))
	if err != nil {
		logger.Log.Warn("otp cleanup failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		logger.Log.Debug("otp challenges purged", zap.Int64("count", deleted))
	}
}

// generateCode produces a 6-digit code, leading zeros included
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
