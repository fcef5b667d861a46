package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/sixthworld/internal/config"
	"github.com/cory-johannsen/sixthworld/internal/storage/postgres"
	"github.com/cory-johannsen/sixthworld/internal/testutil"
)

func TestPool_HealthAndStats(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in -short mode")
	}
	pc := testutil.NewPostgresContainer(t)

	require.NoError(t, pc.Pool.Health(context.Background(), 2*time.Second))
	s := pc.Pool.Stats()
	assert.Equal(t, pc.Config.MaxConns, s.Max)
	assert.GreaterOrEqual(t, s.Total, s.Idle)
}

func TestNewPool_GivesUpOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := config.DatabaseConfig{
		Host: "127.0.0.1", Port: 1, User: "u", Password: "p", Name: "n",
		SSLMode: "disable", MaxConns: 1, MinConns: 0, MaxConnLifetime: time.Minute,
	}
	_, err := postgres.NewPool(ctx, cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}
