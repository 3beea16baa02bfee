package profiles

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/saksham-os/agent-core/internal/marketplace"
)

// Static is an in-memory profile store, used by the CLI when pointed at a
// JSON fixture and by tests.
type Static struct {
	profiles map[string]*marketplace.FreelancerProfile
}

func NewStatic(list []*marketplace.FreelancerProfile) *Static {
	profiles := make(map[string]*marketplace.FreelancerProfile, len(list))
	for _, p := range list {
		if p != nil && p.ID != "" {
			profiles[p.ID] = p
		}
	}
	return &Static{profiles: profiles}
}

// LoadStatic reads a JSON array of profiles from the given file.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles from %q: %w", path, err)
	}

	var list []*marketplace.FreelancerProfile
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing profiles from %q: %w", path, err)
	}
	return NewStatic(list), nil
}

func (s *Static) LookupProfiles(_ context.Context, ids []string) (map[string]*marketplace.FreelancerProfile, error) {
	found := make(map[string]*marketplace.FreelancerProfile)
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			found[id] = p
		}
	}
	return found, nil
}
