package postgresadapter

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/domain/entities"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/ports"
)

type eventModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	CircleID    string     `gorm:"column:circle_id"`
	OwnerID     string     `gorm:"column:owner_id"`
	Title       string     `gorm:"column:title"`
	Description string     `gorm:"column:description"`
	Status      string     `gorm:"column:status"`
	StartsAt    *time.Time `gorm:"column:starts_at"`
	EndsAt      *time.Time `gorm:"column:ends_at"`
	Archived    bool       `gorm:"column:archived"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (eventModel) TableName() string {
	return "events"
}

func (m eventModel) toEntity() entities.Event {
	return entities.Event{
		EventID:     m.ID,
		CircleID:    m.CircleID,
		OwnerID:     m.OwnerID,
		Title:       m.Title,
		Description: m.Description,
		Status:      entities.EventStatus(m.Status),
		StartsAt:    normalizeOptionalTime(m.StartsAt),
		EndsAt:      normalizeOptionalTime(m.EndsAt),
		Archived:    m.Archived,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type candidateModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	EventID    string    `gorm:"column:event_id;uniqueIndex:uq_candidate_range"`
	StartTime  time.Time `gorm:"column:start_time;uniqueIndex:uq_candidate_range"`
	EndTime    time.Time `gorm:"column:end_time;uniqueIndex:uq_candidate_range"`
	ProposedBy string    `gorm:"column:proposed_by"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (candidateModel) TableName() string {
	return "event_candidates"
}

func candidateModelFromEntity(candidate entities.CandidateTime) candidateModel {
	row := candidateModel{
		ID:         strings.TrimSpace(candidate.CandidateID),
		EventID:    strings.TrimSpace(candidate.EventID),
		StartTime:  candidate.StartTime.UTC(),
		EndTime:    candidate.EndTime.UTC(),
		ProposedBy: strings.TrimSpace(candidate.ProposedBy),
		CreatedAt:  candidate.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m candidateModel) toEntity() entities.CandidateTime {
	return entities.CandidateTime{
		CandidateID: m.ID,
		EventID:     m.EventID,
		StartTime:   m.StartTime.UTC(),
		EndTime:     m.EndTime.UTC(),
		ProposedBy:  m.ProposedBy,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

type voteModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	EventID     string    `gorm:"column:event_id;uniqueIndex:uq_vote_per_voter"`
	CandidateID string    `gorm:"column:candidate_id"`
	VoterID     string    `gorm:"column:voter_id;uniqueIndex:uq_vote_per_voter"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (voteModel) TableName() string {
	return "event_votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	row := voteModel{
		ID:          strings.TrimSpace(vote.VoteID),
		EventID:     strings.TrimSpace(vote.EventID),
		CandidateID: strings.TrimSpace(vote.CandidateID),
		VoterID:     strings.TrimSpace(vote.VoterID),
		CreatedAt:   vote.CreatedAt.UTC(),
		UpdatedAt:   vote.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:      m.ID,
		EventID:     m.EventID,
		CandidateID: m.CandidateID,
		VoterID:     m.VoterID,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

// circleMemberModel is a read-only projection maintained by the circle
// membership service; the engine never writes it.
type circleMemberModel struct {
	CircleID string `gorm:"column:circle_id;primaryKey"`
	UserID   string `gorm:"column:user_id;primaryKey"`
}

func (circleMemberModel) TableName() string {
	return "circle_members"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "scheduling_outbox"
}

func marshalEnvelope(envelope ports.EventEnvelope) ([]byte, error) {
	return json.Marshal(envelope)
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}
