package ranking

import (
	"context"
	"fmt"
	"sort"

	"github.com/saksham-os/agent-core/internal/marketplace"
	"go.uber.org/zap"
)

// Ranker orders the bids on a posting by composite score.
type Ranker struct {
	store  marketplace.ProfileStore
	logger *zap.Logger
}

func NewRanker(store marketplace.ProfileStore, logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{store: store, logger: logger}
}

// Rank resolves bidder profiles in one batched lookup, scores every bid and
// returns them sorted descending by score. The sort is stable: tied bids keep
// their submission order. An empty bid list yields an empty result.
func (r *Ranker) Rank(ctx context.Context, job *marketplace.JobPosting, bids *marketplace.Bids) ([]*ScoredBid, error) {
	if bids == nil || bids.Len() == 0 {
		return []*ScoredBid{}, nil
	}
	if r.store == nil {
		return nil, fmt.Errorf("profile store is required")
	}

	profiles, err := r.store.LookupProfiles(ctx, bids.FreelancerIDs())
	if err != nil {
		return nil, fmt.Errorf("lookup bidder profiles: %w", err)
	}

	scored := make([]*ScoredBid, 0, bids.Len())
	for _, bid := range bids.Items {
		profile := profiles[bid.FreelancerID]
		if profile == nil {
			r.logger.Debug("no profile on file for bidder, scoring zero",
				zap.String("job_id", job.ID),
				zap.String("freelancer_id", bid.FreelancerID),
			)
		}

		score, details := ScoreBid(job, bid, profile)
		scored = append(scored, &ScoredBid{Bid: bid, Score: score, Details: details})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	r.logger.Info("ranked bids",
		zap.String("job_id", job.ID),
		zap.Int("bids", len(scored)),
	)

	return scored, nil
}
