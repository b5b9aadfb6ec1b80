package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/domain/entities"
	domainerrors "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/domain/errors"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) UpsertRsvp(ctx context.Context, rsvp entities.Rsvp) error {
	row := rsvpModelFromEntity(rsvp)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status":     row.Status,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("rsvp_repo_upsert_failed", err,
			"rsvp_id", strings.TrimSpace(rsvp.RsvpID),
			"event_id", strings.TrimSpace(rsvp.EventID),
			"user_id", strings.TrimSpace(rsvp.UserID),
		)
	}
	return nil
}

func (r *Repository) GetRsvpByUser(ctx context.Context, eventID string, userID string) (entities.Rsvp, bool, error) {
	var row rsvpModel
	err := r.db.WithContext(ctx).
		Where("event_id = ?", strings.TrimSpace(eventID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Rsvp{}, false, nil
		}
		return entities.Rsvp{}, false, r.logError("rsvp_repo_get_failed", err,
			"event_id", strings.TrimSpace(eventID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListRsvpsByEvent(ctx context.Context, eventID string) ([]entities.Rsvp, error) {
	var rows []rsvpModel
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", strings.TrimSpace(eventID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("rsvp_repo_list_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	items := make([]entities.Rsvp, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) OpenWindow(ctx context.Context, window entities.RsvpWindow) error {
	row := windowModel{
		EventID:      strings.TrimSpace(window.EventID),
		SourceStatus: strings.TrimSpace(window.SourceStatus),
		OpenedAt:     window.OpenedAt.UTC(),
	}
	// Replayed schedule events hit the conflict branch and keep the first row.
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return r.logError("rsvp_repo_open_window_failed", err,
			"event_id", row.EventID,
		)
	}
	return nil
}

func (r *Repository) GetWindow(ctx context.Context, eventID string) (entities.RsvpWindow, bool, error) {
	var row windowModel
	err := r.db.WithContext(ctx).
		Where("event_id = ?", strings.TrimSpace(eventID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.RsvpWindow{}, false, nil
		}
		return entities.RsvpWindow{}, false, r.logError("rsvp_repo_get_window_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	return entities.RsvpWindow{
		EventID:      row.EventID,
		SourceStatus: row.SourceStatus,
		OpenedAt:     row.OpenedAt.UTC(),
	}, true, nil
}

func (r *Repository) ReserveEvent(
	ctx context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	row := dedupModel{
		EventID:     strings.TrimSpace(eventID),
		PayloadHash: strings.TrimSpace(payloadHash),
		ExpiresAt:   expiresAt.UTC(),
		ProcessedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Create(&row).Error
	if err == nil {
		return false, nil
	}
	if !isUniqueViolation(err) {
		return false, r.logError("rsvp_repo_reserve_event_failed", err,
			"event_id", row.EventID,
		)
	}

	var existing dedupModel
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", row.EventID).
		First(&existing).Error; err != nil {
		return false, r.logError("rsvp_repo_reserve_lookup_failed", err,
			"event_id", row.EventID,
		)
	}
	if existing.PayloadHash != row.PayloadHash {
		return false, domainerrors.ErrConflict
	}
	return true, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "social-coordination/rsvp-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("rsvp repository operation failed", fields...)
	return err
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

type rsvpModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	EventID   string    `gorm:"column:event_id;uniqueIndex:uq_rsvp_per_user"`
	UserID    string    `gorm:"column:user_id;uniqueIndex:uq_rsvp_per_user"`
	Status    string    `gorm:"column:status"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (rsvpModel) TableName() string {
	return "event_rsvps"
}

func rsvpModelFromEntity(rsvp entities.Rsvp) rsvpModel {
	row := rsvpModel{
		ID:        strings.TrimSpace(rsvp.RsvpID),
		EventID:   strings.TrimSpace(rsvp.EventID),
		UserID:    strings.TrimSpace(rsvp.UserID),
		Status:    string(rsvp.Status),
		CreatedAt: rsvp.CreatedAt.UTC(),
		UpdatedAt: rsvp.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m rsvpModel) toEntity() entities.Rsvp {
	return entities.Rsvp{
		RsvpID:    m.ID,
		EventID:   m.EventID,
		UserID:    m.UserID,
		Status:    entities.RsvpStatus(m.Status),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type windowModel struct {
	EventID      string    `gorm:"column:event_id;primaryKey"`
	SourceStatus string    `gorm:"column:source_status"`
	OpenedAt     time.Time `gorm:"column:opened_at"`
}

func (windowModel) TableName() string {
	return "rsvp_windows"
}

type dedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (dedupModel) TableName() string {
	return "rsvp_event_dedup"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.RsvpRepository = (*Repository)(nil)
var _ ports.WindowRepository = (*Repository)(nil)
var _ ports.EventDedupStore = (*Repository)(nil)
var _ ports.Clock = SystemClock{}
var _ ports.IDGenerator = UUIDGenerator{}
