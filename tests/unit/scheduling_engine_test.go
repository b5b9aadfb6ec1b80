package unit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	schedulingengine "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/adapters/memory"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/domain/entities"
	domainerrors "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/domain/errors"
	httptransport "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/transport/http"
)

func newDraftSchedulingModule(t *testing.T, members ...string) schedulingengine.Module {
	t.Helper()
	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	module := schedulingengine.NewInMemoryModule([]entities.Event{
		{
			EventID:   "event-1",
			CircleID:  "circle-1",
			OwnerID:   "owner-1",
			Title:     "Game night",
			Status:    entities.EventStatusDraft,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}, nil)
	module.Store.SetMember("circle-1", "owner-1")
	for _, member := range members {
		module.Store.SetMember("circle-1", member)
	}
	return module
}

func proposeWindow(
	t *testing.T,
	module schedulingengine.Module,
	proposer string,
	start time.Time,
) httptransport.CandidateResponse {
	t.Helper()
	resp, err := module.Handler.ProposeTimeHandler(context.Background(), "event-1", proposer, httptransport.ProposeTimeRequest{
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("propose candidate failed: %v", err)
	}
	return resp
}

func TestSchedulingProposeVoteAndFinalizePicksTallyWinner(t *testing.T) {
	module := newDraftSchedulingModule(t, "user-1", "user-2", "user-3")
	friday := time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC)
	saturday := time.Date(2026, 9, 5, 19, 0, 0, 0, time.UTC)

	first := proposeWindow(t, module, "user-1", friday)
	second := proposeWindow(t, module, "user-2", saturday)

	for _, voter := range []string{"user-1", "user-2"} {
		if _, err := module.Handler.VoteHandler(context.Background(), "event-1", voter, httptransport.VoteRequest{
			CandidateID: first.CandidateID,
		}); err != nil {
			t.Fatalf("vote for first candidate failed: %v", err)
		}
	}
	if _, err := module.Handler.VoteHandler(context.Background(), "event-1", "user-3", httptransport.VoteRequest{
		CandidateID: second.CandidateID,
	}); err != nil {
		t.Fatalf("vote for second candidate failed: %v", err)
	}

	resp, err := module.Handler.FinalizeEventHandler(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if resp.Status != string(entities.EventStatusFinalized) {
		t.Fatalf("expected finalized status, got %s", resp.Status)
	}
	if !resp.StartsAt.Equal(friday) {
		t.Fatalf("expected winner start %s, got %s", friday, resp.StartsAt)
	}
	if len(resp.Tally) != 2 {
		t.Fatalf("expected two ranked candidates, got %d", len(resp.Tally))
	}
	if resp.Tally[0].CandidateID != first.CandidateID || resp.Tally[0].Votes != 2 {
		t.Fatalf("expected first candidate ranked first with 2 votes, got %+v", resp.Tally[0])
	}
	if resp.Tally[1].Rank != 2 {
		t.Fatalf("expected second candidate ranked 2, got %d", resp.Tally[1].Rank)
	}
}

func TestSchedulingDuplicateCandidateRejected(t *testing.T) {
	module := newDraftSchedulingModule(t, "user-1")
	start := time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC)
	proposeWindow(t, module, "user-1", start)

	_, err := module.Handler.ProposeTimeHandler(context.Background(), "event-1", "owner-1", httptransport.ProposeTimeRequest{
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
	})
	if !errors.Is(err, domainerrors.ErrDuplicateCandidate) {
		t.Fatalf("expected duplicate candidate error, got %v", err)
	}
}

func TestSchedulingInvalidCandidateRangeRejected(t *testing.T) {
	module := newDraftSchedulingModule(t)
	start := time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC)

	_, err := module.Handler.ProposeTimeHandler(context.Background(), "event-1", "owner-1", httptransport.ProposeTimeRequest{
		StartTime: start,
		EndTime:   start,
	})
	if !errors.Is(err, domainerrors.ErrInvalidCandidateRange) {
		t.Fatalf("expected invalid range error, got %v", err)
	}

	_, err = module.Handler.ProposeTimeHandler(context.Background(), "event-1", "owner-1", httptransport.ProposeTimeRequest{
		StartTime: start,
		EndTime:   start.Add(-time.Hour),
	})
	if !errors.Is(err, domainerrors.ErrInvalidCandidateRange) {
		t.Fatalf("expected invalid range error for inverted window, got %v", err)
	}
}

func TestSchedulingNonMemberCannotProposeOrVote(t *testing.T) {
	module := newDraftSchedulingModule(t, "user-1")
	start := time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC)
	candidate := proposeWindow(t, module, "user-1", start)

	_, err := module.Handler.ProposeTimeHandler(context.Background(), "event-1", "stranger-1", httptransport.ProposeTimeRequest{
		StartTime: start.Add(24 * time.Hour),
		EndTime:   start.Add(26 * time.Hour),
	})
	if !errors.Is(err, domainerrors.ErrNotCircleMember) {
		t.Fatalf("expected membership error on propose, got %v", err)
	}

	_, err = module.Handler.VoteHandler(context.Background(), "event-1", "stranger-1", httptransport.VoteRequest{
		CandidateID: candidate.CandidateID,
	})
	if !errors.Is(err, domainerrors.ErrNotCircleMember) {
		t.Fatalf("expected membership error on vote, got %v", err)
	}
}

func TestSchedulingRevoteReplacesPreviousVote(t *testing.T) {
	module := newDraftSchedulingModule(t, "user-1")
	friday := time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC)
	saturday := time.Date(2026, 9, 5, 19, 0, 0, 0, time.UTC)
	first := proposeWindow(t, module, "user-1", friday)
	second := proposeWindow(t, module, "user-1", saturday)

	initial, err := module.Handler.VoteHandler(context.Background(), "event-1", "user-1", httptransport.VoteRequest{
		CandidateID: first.CandidateID,
	})
	if err != nil {
		t.Fatalf("initial vote failed: %v", err)
	}
	if initial.Replaced {
		t.Fatalf("expected initial vote to be fresh")
	}

	revote, err := module.Handler.VoteHandler(context.Background(), "event-1", "user-1", httptransport.VoteRequest{
		CandidateID: second.CandidateID,
	})
	if err != nil {
		t.Fatalf("revote failed: %v", err)
	}
	if !revote.Replaced {
		t.Fatalf("expected revote to replace previous vote")
	}
	if revote.VoteID != initial.VoteID {
		t.Fatalf("expected replaced vote to keep vote id %s, got %s", initial.VoteID, revote.VoteID)
	}

	board, err := module.Handler.ListCandidatesHandler(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("list candidates failed: %v", err)
	}
	if board.TotalVotes != 1 {
		t.Fatalf("expected single counted vote after revote, got %d", board.TotalVotes)
	}
	tally, err := module.Handler.TallyHandler(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("tally failed: %v", err)
	}
	if tally.Counts[first.CandidateID] != 0 || tally.Counts[second.CandidateID] != 1 {
		t.Fatalf("unexpected raw counts: %+v", tally.Counts)
	}
	for _, item := range board.Items {
		switch item.CandidateID {
		case first.CandidateID:
			if item.Votes != 0 {
				t.Fatalf("expected old candidate to drop to 0 votes, got %d", item.Votes)
			}
		case second.CandidateID:
			if item.Votes != 1 {
				t.Fatalf("expected new candidate to hold the vote, got %d", item.Votes)
			}
		}
	}
}

func TestSchedulingRetractMissingVoteIsNoOp(t *testing.T) {
	module := newDraftSchedulingModule(t, "user-1")
	if err := module.Handler.RetractVoteHandler(context.Background(), "event-1", "user-1"); err != nil {
		t.Fatalf("expected retract without a vote to succeed, got %v", err)
	}
}

func TestSchedulingRemoveCandidateWithVotesRejected(t *testing.T) {
	module := newDraftSchedulingModule(t, "user-1")
	start := time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC)
	candidate := proposeWindow(t, module, "user-1", start)

	if _, err := module.Handler.VoteHandler(context.Background(), "event-1", "user-1", httptransport.VoteRequest{
		CandidateID: candidate.CandidateID,
	}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	err := module.Handler.RemoveCandidateHandler(context.Background(), "event-1", candidate.CandidateID, "user-1")
	if !errors.Is(err, domainerrors.ErrCandidateHasVotes) {
		t.Fatalf("expected candidate-has-votes error, got %v", err)
	}

	if err := module.Handler.RetractVoteHandler(context.Background(), "event-1", "user-1"); err != nil {
		t.Fatalf("retract failed: %v", err)
	}
	if err := module.Handler.RemoveCandidateHandler(context.Background(), "event-1", candidate.CandidateID, "user-1"); err != nil {
		t.Fatalf("expected removal after retraction to succeed, got %v", err)
	}
}

func TestSchedulingLockRequiresOwner(t *testing.T) {
	module := newDraftSchedulingModule(t, "user-1")
	start := time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC)
	candidate := proposeWindow(t, module, "user-1", start)

	_, err := module.Handler.LockEventHandler(context.Background(), "event-1", "user-1", httptransport.LockEventRequest{
		CandidateID: candidate.CandidateID,
	})
	if !errors.Is(err, domainerrors.ErrNotEventOwner) {
		t.Fatalf("expected owner error, got %v", err)
	}

	resp, err := module.Handler.LockEventHandler(context.Background(), "event-1", "owner-1", httptransport.LockEventRequest{
		CandidateID: candidate.CandidateID,
	})
	if err != nil {
		t.Fatalf("owner lock failed: %v", err)
	}
	if resp.Status != string(entities.EventStatusLocked) {
		t.Fatalf("expected locked status, got %s", resp.Status)
	}
	if !resp.StartsAt.Equal(start) {
		t.Fatalf("expected locked start %s, got %s", start, resp.StartsAt)
	}
}

func TestSchedulingLockedEventRejectsFurtherMutations(t *testing.T) {
	module := newDraftSchedulingModule(t, "user-1")
	start := time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC)
	candidate := proposeWindow(t, module, "user-1", start)

	if _, err := module.Handler.LockEventHandler(context.Background(), "event-1", "owner-1", httptransport.LockEventRequest{
		CandidateID: candidate.CandidateID,
	}); err != nil {
		t.Fatalf("lock failed: %v", err)
	}

	if _, err := module.Handler.ProposeTimeHandler(context.Background(), "event-1", "user-1", httptransport.ProposeTimeRequest{
		StartTime: start.Add(24 * time.Hour),
		EndTime:   start.Add(26 * time.Hour),
	}); !errors.Is(err, domainerrors.ErrEventNotDraft) {
		t.Fatalf("expected not-draft error on propose, got %v", err)
	}
	if _, err := module.Handler.VoteHandler(context.Background(), "event-1", "user-1", httptransport.VoteRequest{
		CandidateID: candidate.CandidateID,
	}); !errors.Is(err, domainerrors.ErrEventNotDraft) {
		t.Fatalf("expected not-draft error on vote, got %v", err)
	}
	if err := module.Handler.RetractVoteHandler(context.Background(), "event-1", "user-1"); !errors.Is(err, domainerrors.ErrEventNotDraft) {
		t.Fatalf("expected not-draft error on retract, got %v", err)
	}
	if _, err := module.Handler.FinalizeEventHandler(context.Background(), "event-1"); !errors.Is(err, domainerrors.ErrAlreadyScheduled) {
		t.Fatalf("expected already-scheduled error on finalize, got %v", err)
	}
	if err := module.Handler.RemoveCandidateHandler(context.Background(), "event-1", candidate.CandidateID, "owner-1"); !errors.Is(err, domainerrors.ErrEventNotDraft) {
		t.Fatalf("expected not-draft error on candidate removal, got %v", err)
	}
}

func TestSchedulingFinalizeWithoutCandidatesKeepsDraft(t *testing.T) {
	module := newDraftSchedulingModule(t)

	_, err := module.Handler.FinalizeEventHandler(context.Background(), "event-1")
	if !errors.Is(err, domainerrors.ErrNoCandidates) {
		t.Fatalf("expected no-candidates error, got %v", err)
	}

	board, err := module.Handler.ListCandidatesHandler(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("list candidates failed: %v", err)
	}
	if board.Status != string(entities.EventStatusDraft) {
		t.Fatalf("expected event to stay draft, got %s", board.Status)
	}
}

func TestSchedulingFinalizeWithoutVotesRejectedByPolicy(t *testing.T) {
	module := newDraftSchedulingModule(t, "user-1")
	proposeWindow(t, module, "user-1", time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC))

	_, err := module.Handler.FinalizeEventHandler(context.Background(), "event-1")
	if !errors.Is(err, domainerrors.ErrNoVotes) {
		t.Fatalf("expected no-votes error, got %v", err)
	}
}

func TestSchedulingTieBreaksOnEarliestStart(t *testing.T) {
	module := newDraftSchedulingModule(t, "user-1", "user-2")
	friday := time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC)
	saturday := time.Date(2026, 9, 5, 19, 0, 0, 0, time.UTC)
	// Propose the later window first so creation order cannot mask the
	// start-time tie break.
	later := proposeWindow(t, module, "user-1", saturday)
	earlier := proposeWindow(t, module, "user-2", friday)

	if _, err := module.Handler.VoteHandler(context.Background(), "event-1", "user-1", httptransport.VoteRequest{
		CandidateID: later.CandidateID,
	}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := module.Handler.VoteHandler(context.Background(), "event-1", "user-2", httptransport.VoteRequest{
		CandidateID: earlier.CandidateID,
	}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	resp, err := module.Handler.FinalizeEventHandler(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if !resp.StartsAt.Equal(friday) {
		t.Fatalf("expected tie to break on earliest start %s, got %s", friday, resp.StartsAt)
	}
	if resp.Tally[0].CandidateID != earlier.CandidateID {
		t.Fatalf("expected earlier window ranked first, got %s", resp.Tally[0].CandidateID)
	}
}

func TestSchedulingRemoveCandidateRequiresMatchingEvent(t *testing.T) {
	module := newDraftSchedulingModule(t, "user-1")
	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	module.Store.SeedEvent(entities.Event{
		EventID:   "event-2",
		CircleID:  "circle-1",
		OwnerID:   "owner-1",
		Title:     "Movie night",
		Status:    entities.EventStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	})
	candidate := proposeWindow(t, module, "user-1", time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC))

	err := module.Handler.RemoveCandidateHandler(context.Background(), "event-2", candidate.CandidateID, "user-1")
	if !errors.Is(err, domainerrors.ErrCandidateNotFound) {
		t.Fatalf("expected removal through a foreign event to fail, got %v", err)
	}

	board, err := module.Handler.ListCandidatesHandler(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("list candidates failed: %v", err)
	}
	if len(board.Items) != 1 {
		t.Fatalf("expected candidate to survive the mismatched removal, got %d", len(board.Items))
	}
}

// gatedMembershipChecker parks the next membership check until released, so a
// test can hold a mutation between its draft check and its write while a
// transition commits.
type gatedMembershipChecker struct {
	inner   *memory.Store
	mu      sync.Mutex
	armed   bool
	arrived chan struct{}
	release chan struct{}
}

func newGatedMembershipChecker(inner *memory.Store) *gatedMembershipChecker {
	return &gatedMembershipChecker{
		inner:   inner,
		arrived: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gatedMembershipChecker) arm() {
	g.mu.Lock()
	g.armed = true
	g.mu.Unlock()
}

func (g *gatedMembershipChecker) IsMember(ctx context.Context, circleID string, userID string) (bool, error) {
	g.mu.Lock()
	armed := g.armed
	g.armed = false
	g.mu.Unlock()
	if armed {
		close(g.arrived)
		<-g.release
	}
	return g.inner.IsMember(ctx, circleID, userID)
}

func newGatedSchedulingModule(t *testing.T, members ...string) (schedulingengine.Module, *memory.Store, *gatedMembershipChecker) {
	t.Helper()
	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	store := memory.NewStore([]entities.Event{
		{
			EventID:   "event-1",
			CircleID:  "circle-1",
			OwnerID:   "owner-1",
			Title:     "Game night",
			Status:    entities.EventStatusDraft,
			CreatedAt: now,
			UpdatedAt: now,
		},
	})
	gate := newGatedMembershipChecker(store)
	module := schedulingengine.NewModule(schedulingengine.Dependencies{
		Events:     store,
		Candidates: store,
		Votes:      store,
		Members:    gate,
		Outbox:     store,
		Tx:         store,
		Clock:      store,
		IDGen:      store,
		Policy:     entities.DefaultFinalizePolicy(),
	})
	module.Store = store
	store.SetMember("circle-1", "owner-1")
	for _, member := range members {
		store.SetMember("circle-1", member)
	}
	return module, store, gate
}

func TestSchedulingProposeRacingLockIsRejected(t *testing.T) {
	module, store, gate := newGatedSchedulingModule(t, "user-1")
	start := time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC)
	candidate := proposeWindow(t, module, "user-1", start)

	gate.arm()
	proposeErr := make(chan error, 1)
	go func() {
		_, err := module.Handler.ProposeTimeHandler(context.Background(), "event-1", "user-1", httptransport.ProposeTimeRequest{
			StartTime: start.Add(24 * time.Hour),
			EndTime:   start.Add(26 * time.Hour),
		})
		proposeErr <- err
	}()

	// The in-flight propose already passed its draft check; lock the event
	// underneath it, then let it resume.
	<-gate.arrived
	if _, err := module.Handler.LockEventHandler(context.Background(), "event-1", "owner-1", httptransport.LockEventRequest{
		CandidateID: candidate.CandidateID,
	}); err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	close(gate.release)

	if err := <-proposeErr; !errors.Is(err, domainerrors.ErrEventNotDraft) {
		t.Fatalf("expected in-flight propose to be rejected, got %v", err)
	}
	candidates, err := store.ListCandidatesByEvent(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("list candidates failed: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected no candidate to land after the lock, got %d", len(candidates))
	}
}

func TestSchedulingVoteRacingLockIsRejected(t *testing.T) {
	module, store, gate := newGatedSchedulingModule(t, "user-1")
	start := time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC)
	candidate := proposeWindow(t, module, "user-1", start)

	gate.arm()
	voteErr := make(chan error, 1)
	go func() {
		_, err := module.Handler.VoteHandler(context.Background(), "event-1", "user-1", httptransport.VoteRequest{
			CandidateID: candidate.CandidateID,
		})
		voteErr <- err
	}()

	<-gate.arrived
	if _, err := module.Handler.LockEventHandler(context.Background(), "event-1", "owner-1", httptransport.LockEventRequest{
		CandidateID: candidate.CandidateID,
	}); err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	close(gate.release)

	if err := <-voteErr; !errors.Is(err, domainerrors.ErrEventNotDraft) {
		t.Fatalf("expected in-flight vote to be rejected, got %v", err)
	}
	counts, err := store.CountVotesByCandidate(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("count votes failed: %v", err)
	}
	if counts[candidate.CandidateID] != 0 {
		t.Fatalf("expected no vote to land after the lock, got %d", counts[candidate.CandidateID])
	}
}

func TestSchedulingConcurrentLockAndFinalizeProduceSingleWinner(t *testing.T) {
	module := newDraftSchedulingModule(t, "user-1")
	start := time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC)
	candidate := proposeWindow(t, module, "user-1", start)
	if _, err := module.Handler.VoteHandler(context.Background(), "event-1", "user-1", httptransport.VoteRequest{
		CandidateID: candidate.CandidateID,
	}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	lockErr := make(chan error, 1)
	finalizeErr := make(chan error, 1)
	go func() {
		_, err := module.Handler.LockEventHandler(context.Background(), "event-1", "owner-1", httptransport.LockEventRequest{
			CandidateID: candidate.CandidateID,
		})
		lockErr <- err
	}()
	go func() {
		_, err := module.Handler.FinalizeEventHandler(context.Background(), "event-1")
		finalizeErr <- err
	}()

	first := <-lockErr
	second := <-finalizeErr
	succeeded := 0
	for _, err := range []error{first, second} {
		if err == nil {
			succeeded++
			continue
		}
		if !errors.Is(err, domainerrors.ErrAlreadyScheduled) {
			t.Fatalf("expected losing writer to observe already-scheduled, got %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one writer to win the transition, got %d", succeeded)
	}

	board, err := module.Handler.ListCandidatesHandler(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("list candidates failed: %v", err)
	}
	if board.Status == string(entities.EventStatusDraft) {
		t.Fatalf("expected event to leave draft after the race")
	}
	if board.StartsAt == nil || !board.StartsAt.Equal(start) {
		t.Fatalf("expected fixed window start %s, got %v", start, board.StartsAt)
	}
}
