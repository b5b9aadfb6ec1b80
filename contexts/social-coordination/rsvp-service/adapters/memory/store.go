package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/domain/entities"
	domainerrors "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/domain/errors"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/ports"

	"github.com/google/uuid"
)

type userKey struct {
	eventID string
	userID  string
}

type dedupRecord struct {
	payloadHash string
	expiresAt   time.Time
}

type Store struct {
	mu sync.RWMutex

	rsvps      map[userKey]entities.Rsvp
	windows    map[string]entities.RsvpWindow
	eventDedup map[string]dedupRecord
}

func NewStore() *Store {
	return &Store{
		rsvps:      make(map[userKey]entities.Rsvp),
		windows:    make(map[string]entities.RsvpWindow),
		eventDedup: make(map[string]dedupRecord),
	}
}

func (s *Store) UpsertRsvp(_ context.Context, rsvp entities.Rsvp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rsvps[userKey{
		eventID: strings.TrimSpace(rsvp.EventID),
		userID:  strings.TrimSpace(rsvp.UserID),
	}] = rsvp
	return nil
}

func (s *Store) GetRsvpByUser(_ context.Context, eventID string, userID string) (entities.Rsvp, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rsvp, ok := s.rsvps[userKey{
		eventID: strings.TrimSpace(eventID),
		userID:  strings.TrimSpace(userID),
	}]
	return rsvp, ok, nil
}

func (s *Store) ListRsvpsByEvent(_ context.Context, eventID string) ([]entities.Rsvp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Rsvp, 0)
	for key, rsvp := range s.rsvps {
		if key.eventID == strings.TrimSpace(eventID) {
			items = append(items, rsvp)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) OpenWindow(_ context.Context, window entities.RsvpWindow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Opening twice is harmless; the first timestamp wins.
	key := strings.TrimSpace(window.EventID)
	if _, ok := s.windows[key]; ok {
		return nil
	}
	s.windows[key] = window
	return nil
}

func (s *Store) GetWindow(_ context.Context, eventID string) (entities.RsvpWindow, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	window, ok := s.windows[strings.TrimSpace(eventID)]
	return window, ok, nil
}

func (s *Store) ReserveEvent(
	_ context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(eventID)
	existing, ok := s.eventDedup[key]
	if ok {
		if !existing.expiresAt.IsZero() && time.Now().UTC().After(existing.expiresAt.UTC()) {
			delete(s.eventDedup, key)
		} else {
			if existing.payloadHash != strings.TrimSpace(payloadHash) {
				return false, domainerrors.ErrConflict
			}
			return true, nil
		}
	}

	s.eventDedup[key] = dedupRecord{
		payloadHash: strings.TrimSpace(payloadHash),
		expiresAt:   expiresAt.UTC(),
	}
	return false, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.RsvpRepository = (*Store)(nil)
var _ ports.WindowRepository = (*Store)(nil)
var _ ports.EventDedupStore = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
