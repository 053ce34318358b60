package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/uniconnect/uniconnect-api/internal/models"
	"github.com/uniconnect/uniconnect-api/pkg/logger"
	"github.com/uniconnect/uniconnect-api/pkg/metrics"
)

const settingsColumns = `
	maintenance_mode, maintenance_message, site_name, site_description,
	featured_label, special_label, updated_at`

// SettingsRepository handles the single-row site settings record
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

func scanSettings(row pgx.Row) (*models.Settings, error) {
	var s models.Settings
	err := row.Scan(
		&s.MaintenanceMode, &s.MaintenanceMessage, &s.SiteName,
		&s.SiteDescription, &s.FeaturedLabel, &s.SpecialLabel, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetOrCreate returns the settings row, inserting defaults first when the
// table is empty. The CHECK (id = 1) constraint keeps this a singleton, so
// concurrent first reads collapse into one row.
func (r *SettingsRepository) GetOrCreate(ctx context.Context) (*models.Settings, error) {
	start := time.Now()
	operation := "getOrCreateSettings"

	defaults := models.DefaultSettings()
	insert := `
		INSERT INTO site_settings (
			id, maintenance_mode, maintenance_message, site_name,
			site_description, featured_label, special_label
		) VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, insert,
		defaults.MaintenanceMode, defaults.MaintenanceMessage, defaults.SiteName,
		defaults.SiteDescription, defaults.FeaturedLabel, defaults.SpecialLabel,
	)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to seed settings: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM site_settings WHERE id = 1", settingsColumns)
	settings, err := scanSettings(r.pool.QueryRow(ctx, query))
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return settings, nil
}

// Patch applies a partial update to the settings row and returns the result.
// updatedAt is always refreshed server-side.
func (r *SettingsRepository) Patch(ctx context.Context, update *models.SettingsUpdate) (*models.Settings, error) {
	start := time.Now()
	operation := "patchSettings"

	setClauses := make([]string, 0, 7)
	args := make([]interface{}, 0, 6)
	argIndex := 1

	addSet := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if update.MaintenanceMode != nil {
		addSet("maintenance_mode", *update.MaintenanceMode)
	}
	if update.MaintenanceMessage != nil {
		addSet("maintenance_message", *update.MaintenanceMessage)
	}
	if update.SiteName != nil {
		addSet("site_name", *update.SiteName)
	}
	if update.SiteDescription != nil {
		addSet("site_description", *update.SiteDescription)
	}
	if update.FeaturedLabel != nil {
		addSet("featured_label", *update.FeaturedLabel)
	}
	if update.SpecialLabel != nil {
		addSet("special_label", *update.SpecialLabel)
	}

	setClauses = append(setClauses, "updated_at = NOW()")

	query := fmt.Sprintf(
		"UPDATE site_settings SET %s WHERE id = 1 RETURNING %s",
		strings.Join(setClauses, ", "), settingsColumns,
	)

	settings, err := scanSettings(r.pool.QueryRow(ctx, query, args...))
	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		// Row has never been seeded; seed with defaults and retry once
		recordMetrics(operation, "not_found", duration)
		if _, seedErr := r.GetOrCreate(ctx); seedErr != nil {
			return nil, seedErr
		}
		settings, err = scanSettings(r.pool.QueryRow(ctx, query, args...))
		if err != nil {
			return nil, fmt.Errorf("failed to update settings: %w", err)
		}
		return settings, nil
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall(ctx, "postgres", operation, "success", duration)
	return settings, nil
}
