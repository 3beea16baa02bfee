package profiles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saksham-os/agent-core/internal/marketplace"
)

const lookupQuery = `
SELECT user_id, name, skills, experience_years, hourly_rate,
       credibility_score, assigned_projects, availability_hours_per_week, min_rate
FROM freelancer_profiles
WHERE user_id = ANY($1)`

// Postgres resolves profiles from the marketplace's freelancer_profiles
// table.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

func (s *Postgres) LookupProfiles(ctx context.Context, ids []string) (map[string]*marketplace.FreelancerProfile, error) {
	found := make(map[string]*marketplace.FreelancerProfile, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	rows, err := s.pool.Query(ctx, lookupQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p marketplace.FreelancerProfile
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Skills, &p.ExperienceYears, &p.HourlyRate,
			&p.CredibilityScore, &p.AssignedProjects, &p.AvailabilityHours, &p.MinRate,
		); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		found[p.ID] = &p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	return found, nil
}

func (s *Postgres) Close() {
	s.pool.Close()
}
