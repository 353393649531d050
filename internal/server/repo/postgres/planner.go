package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PlannerRepo struct {
	pool *pgxpool.Pool
}

func NewPlannerRepo(pool *pgxpool.Pool) *PlannerRepo {
	return &PlannerRepo{pool: pool}
}

// SaveDay stores one date's document for the user, replacing any
// stored version. Last writer wins; the document is opaque JSON.
func (r *PlannerRepo) SaveDay(ctx context.Context, userID, day string, doc json.RawMessage) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO planner_days (user_id, day, doc, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (user_id, day) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`,
		userID, day, doc)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

// GetAllForUser returns every stored day of the user keyed by date.
// An unknown user yields an empty map, not an error.
func (r *PlannerRepo) GetAllForUser(ctx context.Context, userID string) (map[string]json.RawMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT day, doc FROM planner_days WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	planner := make(map[string]json.RawMessage)
	for rows.Next() {
		var day string
		var doc json.RawMessage
		if err := rows.Scan(&day, &doc); err != nil {
			return nil, fmt.Errorf("error performing sql request: %w", err)
		}
		planner[day] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	return planner, nil
}
