package marketplace

import "time"

// BidStatus is the lifecycle state of a bid.
type BidStatus string

const (
	BidPending  BidStatus = "Pending"
	BidAccepted BidStatus = "Accepted"
	BidRejected BidStatus = "Rejected"
)

// Bid is one freelancer's offer on a posting. The application layer is
// expected to keep at most one bid per (job, freelancer) pair; nothing here
// dedupes.
type Bid struct {
	ID             string    `json:"bid_id,omitempty"`
	JobID          string    `json:"job_id"`
	FreelancerID   string    `json:"freelancer_id"`
	FreelancerName string    `json:"freelancer_name,omitempty"`
	Amount         float64   `json:"amount"`
	Proposal       string    `json:"proposal,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
	Status         BidStatus `json:"status,omitempty"`
}

// Bids is a list of bids in submission order.
type Bids struct {
	Items []*Bid
}

func (b *Bids) Len() int {
	return len(b.Items)
}

// FreelancerIDs returns the distinct bidder ids, preserving first-seen order.
func (b *Bids) FreelancerIDs() []string {
	seen := make(map[string]struct{}, len(b.Items))
	ids := make([]string, 0, len(b.Items))
	for _, bid := range b.Items {
		if _, ok := seen[bid.FreelancerID]; ok {
			continue
		}
		seen[bid.FreelancerID] = struct{}{}
		ids = append(ids, bid.FreelancerID)
	}
	return ids
}
