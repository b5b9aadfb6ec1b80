package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/domain/entities"
	domainerrors "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/domain/errors"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type memberKey struct {
	circleID string
	userID   string
}

type voterKey struct {
	eventID string
	voterID string
}

// Store is the in-memory adapter backing unit tests and local wiring. It
// mirrors the Postgres adapter's semantics under a single mutex: the schedule
// transition is a compare-and-set and the vote table is keyed by
// (event, voter). The mutex is released between calls, so unlike Postgres no
// row lock spans a transaction; every ledger write re-validates the owning
// event's status under the write mutex instead.
type Store struct {
	mu sync.RWMutex

	events     map[string]entities.Event
	candidates map[string]entities.CandidateTime
	votes      map[voterKey]entities.Vote
	members    map[memberKey]bool
	outbox     map[string]outboxRecord
}

func NewStore(seed []entities.Event) *Store {
	events := make(map[string]entities.Event, len(seed))
	for _, event := range seed {
		events[event.EventID] = event
	}
	return &Store{
		events:     events,
		candidates: make(map[string]entities.CandidateTime),
		votes:      make(map[voterKey]entities.Vote),
		members:    make(map[memberKey]bool),
		outbox:     make(map[string]outboxRecord),
	}
}

// SeedEvent registers an event row as the out-of-scope CRUD layer would.
func (s *Store) SeedEvent(event entities.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !entities.IsSupportedEventStatus(string(event.Status)) {
		event.Status = entities.EventStatusDraft
	}
	s.events[strings.TrimSpace(event.EventID)] = event
}

// SetMember seeds the circle-membership projection.
func (s *Store) SetMember(circleID string, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[memberKey{
		circleID: strings.TrimSpace(circleID),
		userID:   strings.TrimSpace(userID),
	}] = true
}

func (s *Store) GetEvent(_ context.Context, eventID string) (entities.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.events[strings.TrimSpace(eventID)]
	if !ok || event.Archived {
		return entities.Event{}, domainerrors.ErrEventNotFound
	}
	return event, nil
}

// GetEventForUpdate matches the Postgres signature but cannot hold a lock
// beyond the call; here the draft re-check in the write methods keeps late
// writes off a scheduled event.
func (s *Store) GetEventForUpdate(ctx context.Context, eventID string) (entities.Event, error) {
	return s.GetEvent(ctx, eventID)
}

// requireDraft re-validates the owning event's status. Callers hold the write
// mutex, so a transition committed after the use case's draft check is visible
// here and the straggling write is rejected.
func (s *Store) requireDraft(eventID string) error {
	event, ok := s.events[strings.TrimSpace(eventID)]
	if !ok || event.Archived {
		return domainerrors.ErrEventNotFound
	}
	if event.Status != entities.EventStatusDraft {
		return domainerrors.ErrEventNotDraft
	}
	return nil
}

func (s *Store) TransitionSchedule(
	_ context.Context,
	eventID string,
	to entities.EventStatus,
	startsAt time.Time,
	endsAt time.Time,
	updatedAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[strings.TrimSpace(eventID)]
	if !ok || event.Archived {
		return false, domainerrors.ErrEventNotFound
	}
	if event.Status != entities.EventStatusDraft {
		return false, nil
	}
	start := startsAt.UTC()
	end := endsAt.UTC()
	event.Status = to
	event.StartsAt = &start
	event.EndsAt = &end
	event.UpdatedAt = updatedAt.UTC()
	s.events[event.EventID] = event
	return true, nil
}

func (s *Store) SaveCandidate(_ context.Context, candidate entities.CandidateTime) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireDraft(candidate.EventID); err != nil {
		return err
	}
	for _, other := range s.candidates {
		if other.EventID == candidate.EventID && candidate.SameRange(other) &&
			other.CandidateID != candidate.CandidateID {
			return domainerrors.ErrDuplicateCandidate
		}
	}
	s.candidates[strings.TrimSpace(candidate.CandidateID)] = candidate
	return nil
}

func (s *Store) GetCandidate(_ context.Context, candidateID string) (entities.CandidateTime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidate, ok := s.candidates[strings.TrimSpace(candidateID)]
	if !ok {
		return entities.CandidateTime{}, domainerrors.ErrCandidateNotFound
	}
	return candidate, nil
}

func (s *Store) ListCandidatesByEvent(_ context.Context, eventID string) ([]entities.CandidateTime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.CandidateTime, 0)
	for _, candidate := range s.candidates {
		if candidate.EventID == strings.TrimSpace(eventID) {
			items = append(items, candidate)
		}
	}
	sortCandidates(items)
	return items, nil
}

func (s *Store) DeleteCandidate(_ context.Context, candidateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(candidateID)
	candidate, ok := s.candidates[key]
	if !ok {
		return domainerrors.ErrCandidateNotFound
	}
	if err := s.requireDraft(candidate.EventID); err != nil {
		return err
	}
	delete(s.candidates, key)
	return nil
}

func (s *Store) UpsertVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireDraft(vote.EventID); err != nil {
		return err
	}
	s.votes[voterKey{
		eventID: strings.TrimSpace(vote.EventID),
		voterID: strings.TrimSpace(vote.VoterID),
	}] = vote
	return nil
}

func (s *Store) GetVoteByVoter(_ context.Context, eventID string, voterID string) (entities.Vote, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vote, ok := s.votes[voterKey{
		eventID: strings.TrimSpace(eventID),
		voterID: strings.TrimSpace(voterID),
	}]
	return vote, ok, nil
}

func (s *Store) DeleteVoteByVoter(_ context.Context, eventID string, voterID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireDraft(eventID); err != nil {
		return false, err
	}
	key := voterKey{
		eventID: strings.TrimSpace(eventID),
		voterID: strings.TrimSpace(voterID),
	}
	if _, ok := s.votes[key]; !ok {
		return false, nil
	}
	delete(s.votes, key)
	return true, nil
}

func (s *Store) CountVotesByCandidate(_ context.Context, eventID string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for key, vote := range s.votes {
		if key.eventID == strings.TrimSpace(eventID) {
			counts[vote.CandidateID]++
		}
	}
	return counts, nil
}

func (s *Store) CountVotesForCandidate(_ context.Context, candidateID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, vote := range s.votes {
		if vote.CandidateID == strings.TrimSpace(candidateID) {
			count++
		}
	}
	return count, nil
}

func (s *Store) IsMember(_ context.Context, circleID string, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.members[memberKey{
		circleID: strings.TrimSpace(circleID),
		userID:   strings.TrimSpace(userID),
	}], nil
}

// InTx runs the function directly: individual store operations are atomic
// under the mutex, the compare-and-set transition and the write-time draft
// checks carry the race safety, so the in-memory adapter needs no rollback
// machinery.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func sortCandidates(items []entities.CandidateTime) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].StartTime.Equal(items[j].StartTime) {
			return items[i].StartTime.Before(items[j].StartTime)
		}
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		// Same clock tick: fall through to the id so listing order never
		// depends on map iteration.
		return items[i].CandidateID < items[j].CandidateID
	})
}

var _ ports.EventRepository = (*Store)(nil)
var _ ports.CandidateRepository = (*Store)(nil)
var _ ports.VoteRepository = (*Store)(nil)
var _ ports.MembershipChecker = (*Store)(nil)
var _ ports.TxRunner = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
