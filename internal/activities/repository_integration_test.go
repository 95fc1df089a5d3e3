//go:build integration

package activities

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/trailbook/backend/internal/models"
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

func seedCompany(t *testing.T, ctx context.Context, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(ctx, `INSERT INTO companies (id, name) VALUES ($1, 'Trailbook Test Co')`, id)
	require.NoError(t, err)
	return id
}

func seedActivity(t *testing.T, ctx context.Context, pool *pgxpool.Pool, companyID uuid.UUID, name string, start time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(ctx,
		`INSERT INTO activities (id, company_id, name, start_time) VALUES ($1, $2, $3, $4)`,
		id, companyID, name, start)
	require.NoError(t, err)
	return id
}

func TestIntegration_ListUpcomingExcludesPastAndSortsAscending(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	repo := NewRepository(pool)
	companyID := seedCompany(t, ctx, pool)

	now := time.Now()
	seedActivity(t, ctx, pool, companyID, "yesterday", now.Add(-24*time.Hour))
	seedActivity(t, ctx, pool, companyID, "next week", now.Add(7*24*time.Hour))
	seedActivity(t, ctx, pool, companyID, "tomorrow", now.Add(24*time.Hour))

	list, total, err := repo.ListUpcoming(ctx, PageSize, 0)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, list, 2)
	require.Equal(t, "tomorrow", list[0].Name)
	require.Equal(t, "next week", list[1].Name)
	for _, a := range list {
		require.True(t, a.StartTime.After(now), "listing leaked a past activity: %s", a.Name)
	}
	require.True(t, list[0].StartTime.Before(list[1].StartTime))
}

func TestIntegration_ListUpcomingPaginates(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	repo := NewRepository(pool)
	companyID := seedCompany(t, ctx, pool)

	now := time.Now()
	for i := 1; i <= PageSize+3; i++ {
		seedActivity(t, ctx, pool, companyID, fmt.Sprintf("trip %02d", i), now.Add(time.Duration(i)*time.Hour))
	}

	page1, total, err := repo.ListUpcoming(ctx, PageSize, 0)
	require.NoError(t, err)
	require.Equal(t, PageSize+3, total)
	require.Len(t, page1, PageSize)
	require.Equal(t, "trip 01", page1[0].Name)

	page2, total, err := repo.ListUpcoming(ctx, PageSize, PageSize)
	require.NoError(t, err)
	require.Equal(t, PageSize+3, total)
	require.Len(t, page2, 3)
	require.Equal(t, fmt.Sprintf("trip %02d", PageSize+1), page2[0].Name)

	// The second page continues where the first ended.
	require.True(t, page1[len(page1)-1].StartTime.Before(page2[0].StartTime))
}

func TestIntegration_GetByIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	repo := NewRepository(pool)
	companyID := seedCompany(t, ctx, pool)

	activity := &models.Activity{
		CompanyID:   companyID,
		Name:        "Canyon hike",
		Description: "Full-day guided hike.",
		StartTime:   time.Now().Add(72 * time.Hour),
	}
	activity.SetPrice(49.50)
	require.NoError(t, repo.Create(ctx, activity))

	got, err := repo.GetByID(ctx, activity.ID)
	require.NoError(t, err)
	require.Equal(t, "Canyon hike", got.Name)
	require.Equal(t, int64(4950), got.PriceCents)
	require.Equal(t, companyID, got.CompanyID)
}
