package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/domain/entities"
	domainerrors "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/domain/errors"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
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

type txKey struct{}

// InTx opens one transaction and threads it through the context, so every
// repository call made inside fn joins the same transaction. Nested calls
// reuse the outer transaction.
func (r *Repository) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func txFromContext(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(txKey{}).(*gorm.DB)
	return tx
}

func (r *Repository) conn(ctx context.Context) *gorm.DB {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *Repository) GetEvent(ctx context.Context, eventID string) (entities.Event, error) {
	var row eventModel
	err := r.conn(ctx).
		Where("id = ?", strings.TrimSpace(eventID)).
		Where("archived = ?", false).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Event{}, domainerrors.ErrEventNotFound
		}
		return entities.Event{}, r.logError("scheduling_repo_get_event_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	return row.toEntity(), nil
}

// GetEventForUpdate takes a FOR UPDATE row lock on the event, held until the
// surrounding transaction commits. A transition racing a ledger write blocks
// here and re-reads the committed status, so the loser fails its draft check
// instead of writing onto a scheduled event.
func (r *Repository) GetEventForUpdate(ctx context.Context, eventID string) (entities.Event, error) {
	var row eventModel
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", strings.TrimSpace(eventID)).
		Where("archived = ?", false).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Event{}, domainerrors.ErrEventNotFound
		}
		return entities.Event{}, r.logError("scheduling_repo_get_event_for_update_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	return row.toEntity(), nil
}

// TransitionSchedule is the compare-and-set write behind lock/finalize: the
// status guard sits in the UPDATE itself, so the losing side of a race sees
// zero rows affected instead of overwriting the winner.
func (r *Repository) TransitionSchedule(
	ctx context.Context,
	eventID string,
	to entities.EventStatus,
	startsAt time.Time,
	endsAt time.Time,
	updatedAt time.Time,
) (bool, error) {
	result := r.conn(ctx).Model(&eventModel{}).
		Where("id = ?", strings.TrimSpace(eventID)).
		Where("status = ?", string(entities.EventStatusDraft)).
		Where("archived = ?", false).
		Updates(map[string]any{
			"status":     string(to),
			"starts_at":  startsAt.UTC(),
			"ends_at":    endsAt.UTC(),
			"updated_at": updatedAt.UTC(),
		})
	if result.Error != nil {
		return false, r.logError("scheduling_repo_transition_failed", result.Error,
			"event_id", strings.TrimSpace(eventID),
			"to_status", string(to),
		)
	}
	return result.RowsAffected == 1, nil
}

func (r *Repository) SaveCandidate(ctx context.Context, candidate entities.CandidateTime) error {
	row := candidateModelFromEntity(candidate)
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateCandidate
		}
		return r.logError("scheduling_repo_save_candidate_failed", err,
			"candidate_id", strings.TrimSpace(candidate.CandidateID),
			"event_id", strings.TrimSpace(candidate.EventID),
		)
	}
	return nil
}

func (r *Repository) GetCandidate(ctx context.Context, candidateID string) (entities.CandidateTime, error) {
	var row candidateModel
	err := r.conn(ctx).
		Where("id = ?", strings.TrimSpace(candidateID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.CandidateTime{}, domainerrors.ErrCandidateNotFound
		}
		return entities.CandidateTime{}, r.logError("scheduling_repo_get_candidate_failed", err,
			"candidate_id", strings.TrimSpace(candidateID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListCandidatesByEvent(ctx context.Context, eventID string) ([]entities.CandidateTime, error) {
	var rows []candidateModel
	if err := r.conn(ctx).
		Where("event_id = ?", strings.TrimSpace(eventID)).
		Order("start_time ASC, created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("scheduling_repo_list_candidates_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	items := make([]entities.CandidateTime, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) DeleteCandidate(ctx context.Context, candidateID string) error {
	result := r.conn(ctx).
		Where("id = ?", strings.TrimSpace(candidateID)).
		Delete(&candidateModel{})
	if result.Error != nil {
		return r.logError("scheduling_repo_delete_candidate_failed", result.Error,
			"candidate_id", strings.TrimSpace(candidateID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrCandidateNotFound
	}
	return nil
}

// UpsertVote relies on the (event_id, voter_id) uniqueness constraint: a
// concurrent cast by the same voter lands on the conflict branch instead of
// creating a second row.
func (r *Repository) UpsertVote(ctx context.Context, vote entities.Vote) error {
	row := voteModelFromEntity(vote)
	err := r.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "event_id"}, {Name: "voter_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"candidate_id": row.CandidateID,
			"updated_at":   row.UpdatedAt,
		}),
	}).Create(&row).Error
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("scheduling_repo_upsert_vote_failed", err,
			"vote_id", strings.TrimSpace(vote.VoteID),
			"event_id", strings.TrimSpace(vote.EventID),
			"voter_id", strings.TrimSpace(vote.VoterID),
		)
	}
	return nil
}

func (r *Repository) GetVoteByVoter(ctx context.Context, eventID string, voterID string) (entities.Vote, bool, error) {
	var row voteModel
	err := r.conn(ctx).
		Where("event_id = ?", strings.TrimSpace(eventID)).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Vote{}, false, nil
		}
		return entities.Vote{}, false, r.logError("scheduling_repo_get_vote_failed", err,
			"event_id", strings.TrimSpace(eventID),
			"voter_id", strings.TrimSpace(voterID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) DeleteVoteByVoter(ctx context.Context, eventID string, voterID string) (bool, error) {
	result := r.conn(ctx).
		Where("event_id = ?", strings.TrimSpace(eventID)).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		Delete(&voteModel{})
	if result.Error != nil {
		return false, r.logError("scheduling_repo_delete_vote_failed", result.Error,
			"event_id", strings.TrimSpace(eventID),
			"voter_id", strings.TrimSpace(voterID),
		)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) CountVotesByCandidate(ctx context.Context, eventID string) (map[string]int, error) {
	var rows []struct {
		CandidateID string
		Votes       int
	}
	err := r.conn(ctx).Model(&voteModel{}).
		Select("candidate_id", "COUNT(*) AS votes").
		Where("event_id = ?", strings.TrimSpace(eventID)).
		Group("candidate_id").
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("scheduling_repo_count_votes_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.CandidateID] = row.Votes
	}
	return counts, nil
}

func (r *Repository) CountVotesForCandidate(ctx context.Context, candidateID string) (int, error) {
	var count int64
	err := r.conn(ctx).Model(&voteModel{}).
		Where("candidate_id = ?", strings.TrimSpace(candidateID)).
		Count(&count).
		Error
	if err != nil {
		return 0, r.logError("scheduling_repo_count_candidate_votes_failed", err,
			"candidate_id", strings.TrimSpace(candidateID),
		)
	}
	return int(count), nil
}

func (r *Repository) IsMember(ctx context.Context, circleID string, userID string) (bool, error) {
	var count int64
	err := r.conn(ctx).Model(&circleMemberModel{}).
		Where("circle_id = ?", strings.TrimSpace(circleID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("scheduling_repo_is_member_failed", err,
			"circle_id", strings.TrimSpace(circleID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	return count > 0, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := marshalEnvelope(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("scheduling_repo_append_outbox_failed", err,
			"outbox_id", row.OutboxID,
			"event_type", row.EventType,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	err := r.conn(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("scheduling_repo_list_outbox_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	published := publishedAt.UTC()
	result := r.conn(ctx).Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Where("status = ?", outboxStatusPending).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": &published,
		})
	if result.Error != nil {
		return r.logError("scheduling_repo_mark_outbox_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "social-coordination/scheduling-engine",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("scheduling repository operation failed", fields...)
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

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.EventRepository = (*Repository)(nil)
var _ ports.CandidateRepository = (*Repository)(nil)
var _ ports.VoteRepository = (*Repository)(nil)
var _ ports.MembershipChecker = (*Repository)(nil)
var _ ports.TxRunner = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.Clock = SystemClock{}
var _ ports.IDGenerator = UUIDGenerator{}
