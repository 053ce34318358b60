package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/uniconnect/uniconnect-api/internal/models"
	apperrors "github.com/uniconnect/uniconnect-api/pkg/errors"
	"github.com/uniconnect/uniconnect-api/pkg/logger"
	"github.com/uniconnect/uniconnect-api/pkg/metrics"
)

const uniqueViolationCode = "23505"

const studentColumns = `
	id, full_name, email, linkedin_url, github_url,
	COALESCE(portfolio_url, ''), COALESCE(telegram, ''), track, skills, bio,
	COALESCE(avatar_url, ''), COALESCE(preferences, ''), status, featured, special,
	created_at, updated_at`

// StudentRepository handles student profile data access
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	err := row.Scan(
		&s.ID, &s.FullName, &s.Email, &s.LinkedIn, &s.GitHub,
		&s.Portfolio, &s.Telegram, &s.Track, &s.Skills, &s.Bio,
		&s.Avatar, &s.Preferences, &s.Status, &s.Featured, &s.Special,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new student profile. Returns ErrConflict when the email
// is already registered (enforced by the unique index on email).
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	start := time.Now()
	operation := "createStudent"

	query := `
		INSERT INTO students (
			id, full_name, email, linkedin_url, github_url, portfolio_url,
			telegram, track, skills, bio, avatar_url, preferences, status,
			featured, special, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, NULLIF($6, ''),
			NULLIF($7, ''), $8, $9, $10, NULLIF($11, ''), NULLIF($12, ''), $13,
			$14, $15, $16, $17
		)
	`

	_, err := r.pool.Exec(ctx, query,
		student.ID, student.FullName, student.Email, student.LinkedIn,
		student.GitHub, student.Portfolio, student.Telegram, student.Track,
		student.Skills, student.Bio, student.Avatar, student.Preferences,
		student.Status, student.Featured, student.Special,
		student.CreatedAt, student.UpdatedAt,
	)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			recordMetrics(operation, "conflict", duration)
			return apperrors.ConflictError("email already registered")
		}
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to insert student: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall(ctx, "postgres", operation, "success", duration,
		zap.String("student_id", student.ID))
	return nil
}

// GetByID fetches a single student by id
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	return r.getByField(ctx, "getStudentByID", "id = $1", id)
}

// GetByEmail fetches a single student by normalized email
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	return r.getByField(ctx, "getStudentByEmail", "email = $1", email)
}

func (r *StudentRepository) getByField(ctx context.Context, operation, whereClause string, arg interface{}) (*models.Student, error) {
	start := time.Now()

	query := fmt.Sprintf("SELECT %s FROM students WHERE %s", studentColumns, whereClause)

	student, err := scanStudent(r.pool.QueryRow(ctx, query, arg))
	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", duration)
		return nil, apperrors.NotFoundError("student")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query student: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return student, nil
}

// List fetches students matching the given filters, newest first
func (r *StudentRepository) List(ctx context.Context, filters models.StudentFilters) ([]*models.Student, error) {
	start := time.Now()
	operation := "listStudents"

	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	argIndex := 1

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filters.Status)
		argIndex++
	}
	if filters.Track != "" {
		conditions = append(conditions, fmt.Sprintf("track = $%d", argIndex))
		args = append(args, filters.Track)
		argIndex++
	}
	if filters.Query != "" {
		conditions = append(conditions, fmt.Sprintf(`(
			full_name ILIKE '%%' || $%d || '%%'
			OR bio ILIKE '%%' || $%d || '%%'
			OR EXISTS (
				SELECT 1 FROM unnest(skills) AS skill
				WHERE skill ILIKE '%%' || $%d || '%%'
			)
		)`, argIndex, argIndex, argIndex))
		args = append(args, filters.Query)
		argIndex++ //nolint:ineffassign,wastedassign // keeps the pattern extensible
	}

	query := fmt.Sprintf("SELECT %s FROM students", studentColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	students := make([]*models.Student, 0)
	for rows.Next() {
		student, scanErr := scanStudent(rows)
		if scanErr != nil {
			duration := metrics.MeasureDuration(start)
			recordMetrics(operation, "error", duration)
			logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(scanErr))
			return nil, fmt.Errorf("failed to scan student row: %w", scanErr)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall(ctx, "postgres", operation, "success", duration, zap.Int("count", len(students)))

	return students, nil
}

// Update applies a partial update and returns the updated student. createdAt
// is never part of the SET clause; updatedAt is always refreshed.
func (r *StudentRepository) Update(ctx context.Context, id string, update *models.StudentUpdate) (*models.Student, error) {
	start := time.Now()
	operation := "updateStudent"

	setClauses := make([]string, 0, 12)
	args := make([]interface{}, 0, 13)
	argIndex := 1

	addSet := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}
	addNullableSet := func(column string, value string) {
		setClauses = append(setClauses, fmt.Sprintf("%s = NULLIF($%d, '')", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if update.FullName != nil {
		addSet("full_name", *update.FullName)
	}
	if update.LinkedIn != nil {
		addSet("linkedin_url", *update.LinkedIn)
	}
	if update.GitHub != nil {
		addSet("github_url", *update.GitHub)
	}
	if update.Portfolio != nil {
		addNullableSet("portfolio_url", *update.Portfolio)
	}
	if update.Telegram != nil {
		addNullableSet("telegram", *update.Telegram)
	}
	if update.Track != nil {
		addSet("track", *update.Track)
	}
	if update.Skills != nil {
		addSet("skills", *update.Skills)
	}
	if update.Bio != nil {
		addSet("bio", *update.Bio)
	}
	if update.Avatar != nil {
		addNullableSet("avatar_url", *update.Avatar)
	}
	if update.Preferences != nil {
		addNullableSet("preferences", *update.Preferences)
	}
	if update.Featured != nil {
		addSet("featured", *update.Featured)
	}
	if update.Special != nil {
		addSet("special", *update.Special)
	}
	if update.Status != nil {
		addSet("status", *update.Status)
	}

	// updatedAt is refreshed even when the update carries no field changes
	setClauses = append(setClauses, "updated_at = NOW()")

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE students SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), argIndex, studentColumns,
	)

	student, err := scanStudent(r.pool.QueryRow(ctx, query, args...))
	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", duration)
		return nil, apperrors.NotFoundError("student")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to update student: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall(ctx, "postgres", operation, "success", duration, zap.String("student_id", id))
	return student, nil
}

// Delete removes a student. Returns ErrNotFound when no row matched.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	operation := "deleteStudent"

	result, err := r.pool.Exec(ctx, "DELETE FROM students WHERE id = $1", id)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to delete student: %w", err)
	}

	if result.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return apperrors.NotFoundError("student")
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall(ctx, "postgres", operation, "success", duration, zap.String("student_id", id))
	return nil
}
