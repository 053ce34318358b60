package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uniconnect/uniconnect-api/internal/models"
	"github.com/uniconnect/uniconnect-api/internal/repository"
	apperrors "github.com/uniconnect/uniconnect-api/pkg/errors"
	"github.com/uniconnect/uniconnect-api/pkg/logger"
	"github.com/uniconnect/uniconnect-api/pkg/metrics"
)

// RegistrationInput is the validated payload for a new student profile
type RegistrationInput struct {
	FullName    string
	Email       string
	LinkedIn    string
	GitHub      string
	Portfolio   string
	Telegram    string
	Track       string
	Skills      []string
	Bio         string
	Preferences string
}

// StudentService implements student profile business logic
type StudentService struct {
	repo repository.StudentRepositoryInterface
}

// NewStudentService creates a new student service
func NewStudentService(repo repository.StudentRepositoryInterface) *StudentService {
	return &StudentService{repo: repo}
}

// Register creates a new profile in the pending moderation state. Email and
// telegram are normalized before storage; duplicate emails surface as
// ErrConflict from the unique index.
func (s *StudentService) Register(ctx context.Context, input *RegistrationInput) (*models.Student, error) {
	if !models.IsValidTrack(input.Track) {
		metrics.StudentRegistrations.WithLabelValues("invalid").Inc()
		return nil, apperrors.InvalidInputError("track", "unknown track")
	}
	if len(input.Skills) == 0 {
		metrics.StudentRegistrations.WithLabelValues("invalid").Inc()
		return nil, apperrors.InvalidInputError("skills", "at least one skill is required")
	}

	now := time.Now().UTC()
	student := &models.Student{
		ID:          uuid.NewString(),
		FullName:    input.FullName,
		Email:       models.NormalizeEmail(input.Email),
		LinkedIn:    input.LinkedIn,
		GitHub:      input.GitHub,
		Portfolio:   input.Portfolio,
		Telegram:    models.NormalizeTelegram(input.Telegram),
		Track:       input.Track,
		Skills:      input.Skills,
		Bio:         input.Bio,
		Preferences: input.Preferences,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, student); err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			metrics.StudentRegistrations.WithLabelValues("conflict").Inc()
		} else {
			metrics.StudentRegistrations.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	metrics.StudentRegistrations.WithLabelValues("success").Inc()
	logger.Log.Info("student registered",
		zap.String("student_id", student.ID),
		zap.String("track", student.Track))
	return student, nil
}

// GetByID returns a single student profile
func (s *StudentService) GetByID(ctx context.Context, id string) (*models.Student, error) {
	return s.repo.GetByID(ctx, id)
}

// ListPublic returns approved profiles in their sanitized public form,
// featured profiles first and newest first within each group.
func (s *StudentService) ListPublic(ctx context.Context, filters models.StudentFilters) ([]models.PublicStudentResponse, error) {
	filters.Status = models.StatusApproved

	students, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	// Repository order is createdAt DESC; a stable sort keeps that order
	// within the featured and non-featured groups.
	sort.SliceStable(students, func(i, j int) bool {
		return students[i].Featured && !students[j].Featured
	})

	responses := make([]models.PublicStudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, student.ToPublicResponse())
	}
	return responses, nil
}

// ListAdmin returns full profiles, email included, for the moderation view
func (s *StudentService) ListAdmin(ctx context.Context, filters models.StudentFilters) ([]*models.Student, error) {
	if filters.Status != "" && !filters.Status.IsValid() {
		return nil, apperrors.InvalidInputError("status", "unknown status")
	}
	return s.repo.List(ctx, filters)
}

// AdminUpdate applies a moderation update. Admins may change any field,
// including status, featured and special.
func (s *StudentService) AdminUpdate(ctx context.Context, id string, update *models.StudentUpdate) (*models.Student, error) {
	if err := s.validateUpdate(update); err != nil {
		return nil, err
	}
	if update.Status != nil && !update.Status.IsValid() {
		return nil, apperrors.InvalidInputError("status", "unknown status")
	}

	student, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	if update.Status != nil {
		metrics.StudentStatusChanges.WithLabelValues(string(*update.Status)).Inc()
		logger.Log.Info("student status changed",
			zap.String("student_id", id),
			zap.String("status", string(*update.Status)))
	}
	return student, nil
}

// SelfUpdate applies an owner-initiated update. Moderation fields are
// silently dropped rather than rejected, matching the admin allow-list the
// other way around.
func (s *StudentService) SelfUpdate(ctx context.Context, id string, update *models.StudentUpdate) (*models.Student, error) {
	update.StripRestricted()

	if err := s.validateUpdate(update); err != nil {
		metrics.ProfileEdits.WithLabelValues("invalid").Inc()
		return nil, err
	}

	student, err := s.repo.Update(ctx, id, update)
	if err != nil {
		metrics.ProfileEdits.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.ProfileEdits.WithLabelValues("success").Inc()
	return student, nil
}

// SetAvatar stores the uploaded avatar URL on the profile
func (s *StudentService) SetAvatar(ctx context.Context, id, avatarURL string) (*models.Student, error) {
	update := &models.StudentUpdate{Avatar: &avatarURL}
	return s.repo.Update(ctx, id, update)
}

// Delete permanently removes a profile
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Log.Info("student deleted", zap.String("student_id", id))
	return nil
}

// validateUpdate normalizes and checks fields shared by both update paths
func (s *StudentService) validateUpdate(update *models.StudentUpdate) error {
	if update.IsEmpty() {
		return apperrors.InvalidInputError("body", "no updatable fields provided")
	}
	if update.Track != nil && !models.IsValidTrack(*update.Track) {
		return apperrors.InvalidInputError("track", "unknown track")
	}
	if update.Skills != nil && len(*update.Skills) == 0 {
		return apperrors.InvalidInputError("skills", "at least one skill is required")
	}
	if update.Telegram != nil {
		normalized := models.NormalizeTelegram(*update.Telegram)
		update.Telegram = &normalized
	}
	return nil
}
