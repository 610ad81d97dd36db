package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PoolConfig struct {
	ConnStr string
}

type ConnectionPool struct {
	pool *pgxpool.Pool
}

func NewConnectionPool(ctx context.Context, cfg PoolConfig) (*ConnectionPool, error) {
	dbpool, err := pgxpool.New(ctx, cfg.ConnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	return &ConnectionPool{pool: dbpool}, nil
}

// Pool returns the shared pgx pool. Callers acquire connections from it per
// statement or transaction and must not close it.
func (p *ConnectionPool) Pool() *pgxpool.Pool {
	return p.pool
}

func (p *ConnectionPool) Close() {
	p.pool.Close()
}
