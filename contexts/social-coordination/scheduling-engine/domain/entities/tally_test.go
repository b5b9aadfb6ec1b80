package entities

import (
	"testing"
	"time"
)

func tallyCandidate(id string, start time.Time, created time.Time) CandidateTime {
	return CandidateTime{
		CandidateID: id,
		EventID:     "event-1",
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		CreatedAt:   created,
	}
}

func TestRankCandidatesOrdersByVotesDescending(t *testing.T) {
	base := time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC)
	candidates := []CandidateTime{
		tallyCandidate("c-1", base, base.Add(-3*time.Hour)),
		tallyCandidate("c-2", base.Add(24*time.Hour), base.Add(-2*time.Hour)),
		tallyCandidate("c-3", base.Add(48*time.Hour), base.Add(-time.Hour)),
	}
	counts := map[string]int{"c-1": 1, "c-2": 3, "c-3": 2}

	ranked := RankCandidates(candidates, counts)
	if len(ranked) != 3 {
		t.Fatalf("expected all candidates ranked, got %d", len(ranked))
	}
	for i, want := range []string{"c-2", "c-3", "c-1"} {
		if ranked[i].Candidate.CandidateID != want {
			t.Fatalf("expected %s at rank %d, got %s", want, i+1, ranked[i].Candidate.CandidateID)
		}
		if ranked[i].Rank != i+1 {
			t.Fatalf("expected 1-based rank %d, got %d", i+1, ranked[i].Rank)
		}
	}
}

func TestRankCandidatesTieBreaksByStartThenCreation(t *testing.T) {
	base := time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC)
	candidates := []CandidateTime{
		tallyCandidate("later-start", base.Add(24*time.Hour), base.Add(-3*time.Hour)),
		tallyCandidate("earlier-start", base, base.Add(-2*time.Hour)),
		tallyCandidate("same-start-newer", base, base.Add(-time.Hour)),
	}
	counts := map[string]int{"later-start": 1, "earlier-start": 1, "same-start-newer": 1}

	ranked := RankCandidates(candidates, counts)
	if ranked[0].Candidate.CandidateID != "earlier-start" {
		t.Fatalf("expected earliest start to win the tie, got %s", ranked[0].Candidate.CandidateID)
	}
	if ranked[1].Candidate.CandidateID != "same-start-newer" {
		t.Fatalf("expected creation order to break the start tie, got %s", ranked[1].Candidate.CandidateID)
	}
}

func TestRankCandidatesSameTickTieBreaksOnCandidateID(t *testing.T) {
	base := time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC)
	created := base.Add(-time.Hour)
	// Identical votes, start and creation instant: only the id separates them.
	candidates := []CandidateTime{
		tallyCandidate("c-b", base, created),
		tallyCandidate("c-a", base, created),
	}
	counts := map[string]int{"c-a": 1, "c-b": 1}

	ranked := RankCandidates(candidates, counts)
	if ranked[0].Candidate.CandidateID != "c-a" || ranked[1].Candidate.CandidateID != "c-b" {
		t.Fatalf("expected id order to settle the tie, got %s then %s",
			ranked[0].Candidate.CandidateID, ranked[1].Candidate.CandidateID)
	}
}

func TestRankCandidatesZeroVotesStillRanked(t *testing.T) {
	base := time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC)
	candidates := []CandidateTime{
		tallyCandidate("c-1", base, base),
	}

	ranked := RankCandidates(candidates, nil)
	if ranked[0].Votes != 0 || ranked[0].Rank != 1 {
		t.Fatalf("expected zero-vote candidate ranked first, got votes=%d rank=%d", ranked[0].Votes, ranked[0].Rank)
	}
}

func TestTotalVotesIgnoresForeignCandidateCounts(t *testing.T) {
	base := time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC)
	candidates := []CandidateTime{
		tallyCandidate("c-1", base, base),
		tallyCandidate("c-2", base.Add(time.Hour), base),
	}
	counts := map[string]int{"c-1": 2, "c-2": 1, "other-event-candidate": 9}

	if total := TotalVotes(candidates, counts); total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
}
