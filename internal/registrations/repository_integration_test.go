//go:build integration

package registrations

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/trailbook/backend/pkg/database"
)

func setupPostgres(t *testing.T, ctx context.Context) (*pgxpool.Pool, func()) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())
	pool, err := database.NewPostgresPool(ctx, dsn, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(ctx, pool))

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}
	return pool, cleanup
}

func seedActivityWithCustomer(t *testing.T, ctx context.Context, pool *pgxpool.Pool) (activityID, userID uuid.UUID) {
	t.Helper()

	companyID := uuid.New()
	_, err := pool.Exec(ctx, `INSERT INTO companies (id, name) VALUES ($1, 'Trailbook Test Co')`, companyID)
	require.NoError(t, err)

	activityID = uuid.New()
	_, err = pool.Exec(ctx,
		`INSERT INTO activities (id, company_id, name, start_time) VALUES ($1, $2, 'Canyon hike', $3)`,
		activityID, companyID, time.Now().Add(48*time.Hour))
	require.NoError(t, err)

	userID = uuid.New()
	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, role_id) VALUES ($1, 'Sam', $2, 'x', 3)`,
		userID, userID.String()+"@example.com")
	require.NoError(t, err)
	return activityID, userID
}

func TestIntegration_AttachIsAtMostOnce(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	repo := NewRepository(pool)
	activityID, userID := seedActivityWithCustomer(t, ctx, pool)

	require.NoError(t, repo.Attach(ctx, activityID, userID))

	err := repo.Attach(ctx, activityID, userID)
	require.ErrorIs(t, err, database.ErrUniqueViolation)

	registered, err := repo.IsParticipant(ctx, activityID, userID)
	require.NoError(t, err)
	require.True(t, registered)
}

func TestIntegration_ConcurrentAttachAdmitsExactlyOne(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	repo := NewRepository(pool)
	activityID, userID := seedActivityWithCustomer(t, ctx, pool)

	const workers = 5
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			results <- repo.Attach(ctx, activityID, userID)
		}()
	}

	var admitted, rejected int
	for i := 0; i < workers; i++ {
		err := <-results
		switch {
		case err == nil:
			admitted++
		case errors.Is(err, database.ErrUniqueViolation):
			rejected++
		default:
			t.Fatalf("unexpected attach error: %v", err)
		}
	}
	require.Equal(t, 1, admitted)
	require.Equal(t, workers-1, rejected)
}

func TestIntegration_DetachThenReattach(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	repo := NewRepository(pool)
	activityID, userID := seedActivityWithCustomer(t, ctx, pool)

	require.NoError(t, repo.Attach(ctx, activityID, userID))

	removed, err := repo.Detach(ctx, activityID, userID)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = repo.Detach(ctx, activityID, userID)
	require.NoError(t, err)
	require.False(t, removed)

	// Cancelling frees the slot for a fresh registration.
	require.NoError(t, repo.Attach(ctx, activityID, userID))
}
