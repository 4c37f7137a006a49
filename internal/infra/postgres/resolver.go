package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
)

// NameResolver resolves display names from the platform's students table in
// one batch query per leaderboard, rather than one lookup per row.
type NameResolver struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewNameResolver(pool *pgxpool.Pool, timeout time.Duration) *NameResolver {
	return &NameResolver{pool: pool, timeout: timeout}
}

func (r *NameResolver) ResolveNames(ctx context.Context, studentIDs []string) (map[string]string, error) {
	if len(studentIDs) == 0 {
		return map[string]string{}, nil
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name FROM students WHERE id = ANY($1)`, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve names: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string, len(studentIDs))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("resolve names: %w", err)
	}
	return names, nil
}
