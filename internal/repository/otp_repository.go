package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/uniconnect/uniconnect-api/internal/models"
	apperrors "github.com/uniconnect/uniconnect-api/pkg/errors"
	"github.com/uniconnect/uniconnect-api/pkg/logger"
	"github.com/uniconnect/uniconnect-api/pkg/metrics"
)

const otpColumns = "id, email, student_id, code, expires_at, verified, created_at"

// OTPRepository handles OTP challenge data access
type OTPRepository struct {
	pool *pgxpool.Pool
}

// NewOTPRepository creates a new OTP repository
func NewOTPRepository(pool *pgxpool.Pool) *OTPRepository {
	return &OTPRepository{pool: pool}
}

func scanChallenge(row pgx.Row) (*models.OTPChallenge, error) {
	var c models.OTPChallenge
	err := row.Scan(&c.ID, &c.Email, &c.StudentID, &c.Code, &c.ExpiresAt, &c.Verified, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new OTP challenge
func (r *OTPRepository) Create(ctx context.Context, challenge *models.OTPChallenge) error {
	start := time.Now()
	operation := "createOTPChallenge"

	query := `
		INSERT INTO otp_challenges (id, email, student_id, code, expires_at, verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		challenge.ID, challenge.Email, challenge.StudentID, challenge.Code,
		challenge.ExpiresAt, challenge.Verified, challenge.CreatedAt,
	)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to insert OTP challenge: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// DeleteUnverifiedByEmail removes all unverified challenges for an email.
// Called before issuing a new code so at most one unverified challenge per
// email exists at a time.
func (r *OTPRepository) DeleteUnverifiedByEmail(ctx context.Context, email string) error {
	start := time.Now()
	operation := "deleteUnverifiedOTP"

	_, err := r.pool.Exec(ctx,
		"DELETE FROM otp_challenges WHERE email = $1 AND verified = FALSE", email)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to delete unverified OTP challenges: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// FindActive looks up an unverified, unexpired challenge exactly matching
// email and code. Returns ErrNotFound for any miss; the caller must not
// distinguish failure reasons.
func (r *OTPRepository) FindActive(ctx context.Context, email, code string, now time.Time) (*models.OTPChallenge, error) {
	start := time.Now()
	operation := "findActiveOTP"

	query := fmt.Sprintf(`
		SELECT %s FROM otp_challenges
		WHERE email = $1 AND code = $2 AND verified = FALSE AND expires_at > $3
	`, otpColumns)

	challenge, err := scanChallenge(r.pool.QueryRow(ctx, query, email, code, now))
	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", duration)
		return nil, apperrors.NotFoundError("OTP challenge")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query OTP challenge: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return challenge, nil
}

// MarkVerified consumes a challenge by setting verified = TRUE
func (r *OTPRepository) MarkVerified(ctx context.Context, id string) error {
	start := time.Now()
	operation := "markOTPVerified"

	result, err := r.pool.Exec(ctx,
		"UPDATE otp_challenges SET verified = TRUE WHERE id = $1", id)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to mark OTP challenge verified: %w", err)
	}

	if result.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return apperrors.NotFoundError("OTP challenge")
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// FindVerified looks up an already-verified challenge matching email, code and
// student id. Used by the second-stage edit check.
func (r *OTPRepository) FindVerified(ctx context.Context, email, code, studentID string) (*models.OTPChallenge, error) {
	start := time.Now()
	operation := "findVerifiedOTP"

	query := fmt.Sprintf(`
		SELECT %s FROM otp_challenges
		WHERE email = $1 AND code = $2 AND student_id = $3 AND verified = TRUE
	`, otpColumns)

	challenge, err := scanChallenge(r.pool.QueryRow(ctx, query, email, code, studentID))
	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", duration)
		return nil, apperrors.NotFoundError("OTP challenge")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query OTP challenge: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return challenge, nil
}

// DeleteOlderThan purges challenges created before the cutoff, regardless of
// verified state. Housekeeping piggybacked on verification calls.
func (r *OTPRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	start := time.Now()
	operation := "purgeOTPChallenges"

	result, err := r.pool.Exec(ctx,
		"DELETE FROM otp_challenges WHERE created_at < $1", cutoff)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(err))
		return 0, fmt.Errorf("failed to purge OTP challenges: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return result.RowsAffected(), nil
}
