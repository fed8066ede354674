package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/shared"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AlertRepository persists generated arbitrage alerts
type AlertRepository interface {
	InsertAlerts(ctx context.Context, userID uuid.UUID, alerts []models.Alert) error
	DeleteAlert(ctx context.Context, userID uuid.UUID, alertID string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// PostgresAlertRepository stores alerts in the alerts table
type PostgresAlertRepository struct {
	db *sql.DB
}

func NewPostgresAlertRepository(db *sql.DB) *PostgresAlertRepository {
	return &PostgresAlertRepository{db: db}
}

func (r *PostgresAlertRepository) InsertAlerts(ctx context.Context, userID uuid.UUID, alerts []models.Alert) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO alerts (id, user_id, payload, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare alert insert: %w", err)
	}
	defer stmt.Close()

	for _, alert := range alerts {
		payload, err := json.Marshal(alert)
		if err != nil {
			return fmt.Errorf("failed to marshal alert %s: %w", alert.ID, err)
		}
		var expiresAt interface{}
		if at, ok := alert.ExpiresAt(); ok {
			expiresAt = at
		}
		if _, err := stmt.ExecContext(ctx, alert.ID, userID, payload, expiresAt); err != nil {
			return fmt.Errorf("failed to insert alert %s: %w", alert.ID, err)
		}
	}

	return tx.Commit()
}

func (r *PostgresAlertRepository) DeleteAlert(ctx context.Context, userID uuid.UUID, alertID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = $1 AND user_id = $2`, alertID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	return nil
}

func (r *PostgresAlertRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE expires_at IS NOT NULL AND expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired alerts: %w", err)
	}
	return result.RowsAffected()
}

// AlertService generates, lists and dismisses arbitrage alerts.
// Listing only reads the session cache; generation is the only path that calls the oracle.
type AlertService struct {
	oracle   *OracleService
	repo     AlertRepository
	sessions SessionStore
	now      func() time.Time
}

// NewAlertService creates the service. A nil repository keeps alerts in the session store only.
func NewAlertService(oracle *OracleService, repo AlertRepository, sessions SessionStore) *AlertService {
	return &AlertService{
		oracle:   oracle,
		repo:     repo,
		sessions: sessions,
		now:      time.Now,
	}
}

func cachedAlerts(ctx context.Context, sessions SessionStore, userID string) []models.Alert {
	alerts := []models.Alert{}
	if _, err := sessions.Get(ctx, userID, models.SessionKeyAlerts, &alerts); err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "AlertService",
			"user_id":   userID,
			"error":     err.Error(),
		}).Warn("Failed to read cached alerts")
		return []models.Alert{}
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	return alerts
}

// GenerateAlerts saves the settings and, when they name a jurisdiction and an interest,
// replaces the cached alert list with freshly generated opportunities. The flag reports
// whether the alerts were written to the database.
func (s *AlertService) GenerateAlerts(ctx context.Context, claims *Claims, settings models.AlertSettings) (*models.ArbitrageOpportunities, bool, error) {
	settings.LegalInterests = nonEmptyStrings(settings.LegalInterests)
	settings.ApplyDefaults()

	if err := s.SaveSettings(ctx, claims, settings); err != nil {
		return nil, false, err
	}

	if !settings.CanGenerate() {
		return &models.ArbitrageOpportunities{
			Opportunities: cachedAlerts(ctx, s.sessions, claims.UserID),
			OracleMeta:    models.OracleMeta{Source: models.SourceCache},
		}, false, nil
	}

	result := s.oracle.GetArbitrageAlerts(ctx, settings)

	created := s.now().UTC().Format(time.RFC3339)
	for i := range result.Opportunities {
		result.Opportunities[i].ID = uuid.New().String()
		result.Opportunities[i].Created = created
	}

	logger := logrus.WithFields(logrus.Fields{
		"component": "AlertService",
		"user_id":   claims.UserID,
		"count":     len(result.Opportunities),
		"fallback":  result.IsLLMFallback,
	})

	persisted := false
	if userID, ok := accountID(claims); ok && s.repo != nil {
		if err := s.repo.InsertAlerts(ctx, userID, result.Opportunities); err != nil {
			logger.WithError(err).Warn("Failed to persist alerts")
		} else {
			persisted = true
		}
	}

	if err := s.sessions.Set(ctx, claims.UserID, models.SessionKeyAlerts, result.Opportunities); err != nil {
		logger.WithError(err).Warn("Failed to cache alerts")
	}

	logger.WithField("persisted", persisted).Info("Arbitrage alerts generated")
	return &result, persisted, nil
}

// ListAlerts returns the cached alerts without generating anything
func (s *AlertService) ListAlerts(ctx context.Context, claims *Claims) []models.Alert {
	return cachedAlerts(ctx, s.sessions, claims.UserID)
}

// DismissAlert removes exactly one alert from the cache and the database, returning the remaining alerts
func (s *AlertService) DismissAlert(ctx context.Context, claims *Claims, alertID string) ([]models.Alert, error) {
	alerts := cachedAlerts(ctx, s.sessions, claims.UserID)

	remaining := make([]models.Alert, 0, len(alerts))
	found := false
	for _, alert := range alerts {
		if alert.ID == alertID {
			found = true
			continue
		}
		remaining = append(remaining, alert)
	}
	if !found {
		return nil, shared.NewServiceError(shared.ErrorCategoryNotFound, "ALERT_NOT_FOUND",
			"alert not found", "AlertService", "DismissAlert", false, nil)
	}

	if err := s.sessions.Set(ctx, claims.UserID, models.SessionKeyAlerts, remaining); err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryNetwork, "SESSION_WRITE_FAILED", "AlertService", "DismissAlert", true)
	}

	if userID, ok := accountID(claims); ok && s.repo != nil {
		if err := s.repo.DeleteAlert(ctx, userID, alertID); err != nil {
			logrus.WithFields(logrus.Fields{
				"component": "AlertService",
				"user_id":   claims.UserID,
				"alert_id":  alertID,
				"error":     err.Error(),
			}).Warn("Failed to delete alert row")
		}
	}
	return remaining, nil
}

// GetSettings returns the saved alert settings or defaults
func (s *AlertService) GetSettings(ctx context.Context, claims *Claims) models.AlertSettings {
	settings := models.AlertSettings{UserRole: string(claims.Role)}
	if _, err := s.sessions.Get(ctx, claims.UserID, models.SessionKeyAlertSettings, &settings); err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "AlertService",
			"user_id":   claims.UserID,
			"error":     err.Error(),
		}).Warn("Failed to read alert settings")
	}
	settings.ApplyDefaults()
	return settings
}

// SaveSettings stores the alert settings of the caller
func (s *AlertService) SaveSettings(ctx context.Context, claims *Claims, settings models.AlertSettings) error {
	settings.ApplyDefaults()
	if err := s.sessions.Set(ctx, claims.UserID, models.SessionKeyAlertSettings, settings); err != nil {
		return shared.WrapError(err, shared.ErrorCategoryNetwork, "SESSION_WRITE_FAILED", "AlertService", "SaveSettings", true)
	}
	return nil
}

// PurgeExpired deletes persisted alerts whose expiration date has passed
func (s *AlertService) PurgeExpired(ctx context.Context) (int64, error) {
	if s.repo == nil {
		return 0, nil
	}
	return s.repo.DeleteExpired(ctx, s.now().UTC())
}
