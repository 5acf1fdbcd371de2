package registry

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool wraps pgxpool.Pool for dependency injection.
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates a new Postgres connection pool.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() {
	p.Pool.Close()
}

// Address kind values in the address_labels table.
const (
	KindProtocol = "protocol"
	KindLocker   = "locker"
)

// LoadPostgres reads the registry from the address_labels table.
// Rows with unknown kinds are ignored.
func LoadPostgres(ctx context.Context, pool *Pool) (*Registry, error) {
	rows, err := pool.Query(ctx,
		`SELECT address, label, kind FROM address_labels`)
	if err != nil {
		return nil, fmt.Errorf("query address labels: %w", err)
	}
	defer rows.Close()

	protocols := make(map[string]string)
	lockers := make(map[string]string)

	for rows.Next() {
		var address, label, kind string
		if err := rows.Scan(&address, &label, &kind); err != nil {
			return nil, fmt.Errorf("scan address label: %w", err)
		}
		switch kind {
		case KindProtocol:
			protocols[address] = label
		case KindLocker:
			lockers[address] = label
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate address labels: %w", err)
	}

	return New(protocols, lockers), nil
}
