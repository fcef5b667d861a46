// Package postgres provides PostgreSQL persistence using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/sixthworld/internal/config"
)

// connectAttempts bounds how often NewPool pings a database that is still
// starting up.
const connectAttempts = 5

// Pool is the table server's handle on PostgreSQL.
type Pool struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Stats is a point-in-time snapshot of pool usage.
type Stats struct {
	Total    int32
	Idle     int32
	Acquired int32
	Max      int32
}

// NewPool opens a pool for cfg and pings it, retrying with a linear backoff
// while the server refuses connections.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a connected Pool or a non-nil error; no pool leaks on failure.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	pcfg.MaxConns = cfg.MaxConns
	pcfg.MinConns = cfg.MinConns
	pcfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	start := time.Now()
	for attempt := 1; ; attempt++ {
		err = pool.Ping(ctx)
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			pool.Close()
			return nil, fmt.Errorf("pinging database after %d attempts: %w", attempt, err)
		}
		logger.Warn("database not ready", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
		}
	}

	logger.Info("database connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Pool{pool: pool, logger: logger}, nil
}

// Health pings the database, giving up after timeout. A failure is logged
// together with the current pool usage.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.pool.Ping(ctx); err != nil {
		s := p.Stats()
		p.logger.Warn("database health check failed",
			zap.Error(err),
			zap.Int32("conns", s.Total),
			zap.Int32("acquired", s.Acquired),
		)
		return fmt.Errorf("database health: %w", err)
	}
	return nil
}

// Stats reports connection usage.
func (p *Pool) Stats() Stats {
	s := p.pool.Stat()
	return Stats{
		Total:    s.TotalConns(),
		Idle:     s.IdleConns(),
		Acquired: s.AcquiredConns(),
		Max:      s.MaxConns(),
	}
}

// Close releases every connection.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB exposes the pgx pool to the stores built on it.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
