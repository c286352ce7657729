//go:build integration

package postgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/discovery"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env:        []string{"POSTGRES_PASSWORD=secret", "POSTGRES_DB=catalog"},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start Postgres resource: %s", err)
	}
	url := fmt.Sprintf("postgres://postgres:secret@%s/catalog?sslmode=disable", resource.GetHostPort("5432/tcp"))

	if err := pool.Retry(func() error {
		var errRetry error
		testPool, errRetry = NewClient(context.Background(), Config{DatabaseURL: url})
		return errRetry
	}); err != nil {
		log.Fatalf("Could not connect to Postgres: %s", err)
	}

	code := m.Run()

	testPool.Close()
	if err := pool.Purge(resource); err != nil {
		log.Printf("Could not purge Postgres resource: %s", err)
	}
	os.Exit(code)
}

func newTestRepo(t *testing.T) *ListingRepository {
	t.Helper()
	ctx := context.Background()
	_, err := testPool.Exec(ctx, "DROP TABLE IF EXISTS listings")
	require.NoError(t, err)
	require.NoError(t, EnsureSchema(ctx, testPool))
	repo, err := NewListingRepository(testPool, logger.NewNop())
	require.NoError(t, err)
	return repo
}

func TestListingRepository_ExplicitIDAdvancesSequence(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	insert := func(id int64) {
		require.NoError(t, repo.Insert(ctx, &domain.Listing{
			ID:        id,
			Slug:      discovery.Slugify("Seeded", id),
			Title:     "Seeded",
			Currency:  "USD",
			Status:    domain.StatusDraft,
			CreatedAt: now,
			UpdatedAt: now,
		}))
	}

	insert(7)
	id, err := repo.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), id)

	insert(id)
	insert(3)
	id, err = repo.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)

	l, err := repo.FindByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "seeded-3", l.Slug)
}
