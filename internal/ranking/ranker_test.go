package ranking

import (
	"context"
	"errors"
	"testing"

	"github.com/saksham-os/agent-core/internal/marketplace"
	"go.uber.org/zap"
)

type stubStore struct {
	profiles map[string]*marketplace.FreelancerProfile
	err      error
	lastIDs  []string
}

func (s *stubStore) LookupProfiles(_ context.Context, ids []string) (map[string]*marketplace.FreelancerProfile, error) {
	s.lastIDs = ids
	if s.err != nil {
		return nil, s.err
	}
	found := make(map[string]*marketplace.FreelancerProfile)
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			found[id] = p
		}
	}
	return found, nil
}

func TestRankOrdersByScoreDescending(t *testing.T) {
	job := &marketplace.JobPosting{ID: "job1", Skills: `["React","Node.js"]`, BudgetMax: 50000}
	bids := &marketplace.Bids{Items: []*marketplace.Bid{
		{JobID: "job1", FreelancerID: "weak", Amount: 45000},
		{JobID: "job1", FreelancerID: "strong", Amount: 20000},
	}}

	store := &stubStore{profiles: map[string]*marketplace.FreelancerProfile{
		"weak":   {ID: "weak", Skills: []string{"PHP"}, ExperienceYears: 1},
		"strong": {ID: "strong", Skills: []string{"React", "Node.js"}, ExperienceYears: 6},
	}}

	ranked, err := NewRanker(store, zap.NewNop()).Rank(context.Background(), job, bids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked bids, got %d", len(ranked))
	}
	if ranked[0].FreelancerID != "strong" {
		t.Fatalf("expected strong bidder first, got %s", ranked[0].FreelancerID)
	}
	if ranked[0].Score <= ranked[1].Score {
		t.Fatalf("expected descending scores, got %d then %d", ranked[0].Score, ranked[1].Score)
	}
}

func TestRankTiesPreserveSubmissionOrder(t *testing.T) {
	job := &marketplace.JobPosting{ID: "job1", Skills: "Go", BudgetMax: 10000}
	bids := &marketplace.Bids{Items: []*marketplace.Bid{
		{JobID: "job1", FreelancerID: "first", Amount: 5000},
		{JobID: "job1", FreelancerID: "second", Amount: 5000},
	}}

	// Identical profiles produce identical scores.
	profile := func(id string) *marketplace.FreelancerProfile {
		return &marketplace.FreelancerProfile{ID: id, Skills: []string{"Go"}, ExperienceYears: 3}
	}
	store := &stubStore{profiles: map[string]*marketplace.FreelancerProfile{
		"first":  profile("first"),
		"second": profile("second"),
	}}

	ranked, err := NewRanker(store, zap.NewNop()).Rank(context.Background(), job, bids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ranked[0].Score != ranked[1].Score {
		t.Fatalf("expected a tie, got %d and %d", ranked[0].Score, ranked[1].Score)
	}
	if ranked[0].FreelancerID != "first" || ranked[1].FreelancerID != "second" {
		t.Fatalf("tie broke submission order: %s, %s", ranked[0].FreelancerID, ranked[1].FreelancerID)
	}
}

func TestRankEmptyBidList(t *testing.T) {
	ranked, err := NewRanker(&stubStore{}, zap.NewNop()).Rank(context.Background(), &marketplace.JobPosting{ID: "job1"}, &marketplace.Bids{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 0 {
		t.Fatalf("expected empty result, got %d", len(ranked))
	}
}

func TestRankUnknownBidderScoresZero(t *testing.T) {
	job := &marketplace.JobPosting{ID: "job1", Skills: "Go", BudgetMax: 10000}
	bids := &marketplace.Bids{Items: []*marketplace.Bid{
		{JobID: "job1", FreelancerID: "known", Amount: 5000},
		{JobID: "job1", FreelancerID: "ghost", Amount: 100},
	}}

	store := &stubStore{profiles: map[string]*marketplace.FreelancerProfile{
		"known": {ID: "known", Skills: []string{"Go"}, ExperienceYears: 2},
	}}

	ranked, err := NewRanker(store, zap.NewNop()).Rank(context.Background(), job, bids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ranked[1].FreelancerID != "ghost" || ranked[1].Score != 0 {
		t.Fatalf("expected ghost bidder last with zero score, got %s=%d", ranked[1].FreelancerID, ranked[1].Score)
	}
}

func TestRankBatchesDistinctIDs(t *testing.T) {
	job := &marketplace.JobPosting{ID: "job1", Skills: "Go", BudgetMax: 10000}
	bids := &marketplace.Bids{Items: []*marketplace.Bid{
		{JobID: "job1", FreelancerID: "f1", Amount: 5000},
		{JobID: "job1", FreelancerID: "f1", Amount: 4000},
	}}

	store := &stubStore{profiles: map[string]*marketplace.FreelancerProfile{}}
	if _, err := NewRanker(store, zap.NewNop()).Rank(context.Background(), job, bids); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.lastIDs) != 1 || store.lastIDs[0] != "f1" {
		t.Fatalf("expected a single distinct id in the lookup, got %v", store.lastIDs)
	}
}

func TestRankPropagatesStoreError(t *testing.T) {
	store := &stubStore{err: errors.New("store down")}
	bids := &marketplace.Bids{Items: []*marketplace.Bid{{JobID: "job1", FreelancerID: "f1"}}}

	if _, err := NewRanker(store, zap.NewNop()).Rank(context.Background(), &marketplace.JobPosting{ID: "job1"}, bids); err == nil {
		t.Fatal("expected error from failing store")
	}
}
