package entities

import "sort"

// CandidateTally pairs a candidate with its vote count and final rank.
type CandidateTally struct {
	Candidate CandidateTime
	Votes     int
	Rank      int
}

// TallyResult carries the winning candidate plus the full ranked tally so the
// caller can log or expose the complete ordering for audit.
type TallyResult struct {
	Winner CandidateTally
	Ranked []CandidateTally
}

// FinalizePolicy controls when automatic finalization may run.
type FinalizePolicy struct {
	RequireVotes bool
	MinVotes     int
}

func DefaultFinalizePolicy() FinalizePolicy {
	return FinalizePolicy{
		RequireVotes: true,
		MinVotes:     1,
	}
}

// RankCandidates orders candidates by vote count descending, then earliest
// start time, then earliest creation, then candidate id so candidates created
// in the same clock tick still rank deterministically. Rank is 1-based and
// strictly positional, so equal-vote candidates still receive distinct ranks
// in tie-break order.
func RankCandidates(candidates []CandidateTime, counts map[string]int) []CandidateTally {
	ranked := make([]CandidateTally, 0, len(candidates))
	for _, candidate := range candidates {
		ranked = append(ranked, CandidateTally{
			Candidate: candidate,
			Votes:     counts[candidate.CandidateID],
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Votes != ranked[j].Votes {
			return ranked[i].Votes > ranked[j].Votes
		}
		if !ranked[i].Candidate.StartTime.Equal(ranked[j].Candidate.StartTime) {
			return ranked[i].Candidate.StartTime.Before(ranked[j].Candidate.StartTime)
		}
		if !ranked[i].Candidate.CreatedAt.Equal(ranked[j].Candidate.CreatedAt) {
			return ranked[i].Candidate.CreatedAt.Before(ranked[j].Candidate.CreatedAt)
		}
		return ranked[i].Candidate.CandidateID < ranked[j].Candidate.CandidateID
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// TotalVotes sums the counts of the given candidates only, so stray counts for
// foreign candidate ids never satisfy the finalize policy.
func TotalVotes(candidates []CandidateTime, counts map[string]int) int {
	total := 0
	for _, candidate := range candidates {
		total += counts[candidate.CandidateID]
	}
	return total
}
