//go:build integration

// Package integration exercises the PostgreSQL persistence layer against a
// real database.  Tests require Docker and are gated behind the
// "integration" build tag.
package integration

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rankforge/rankforge/internal/config"
	"github.com/rankforge/rankforge/internal/domain/keyword"
	"github.com/rankforge/rankforge/internal/domain/research"
	"github.com/rankforge/rankforge/internal/infrastructure/database/postgres"
	"github.com/rankforge/rankforge/internal/infrastructure/database/postgres/repositories"
	"github.com/rankforge/rankforge/pkg/types/common"
)

// startPostgres launches a PostgreSQL 16 container, applies the real
// migrations and returns a connected pool.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "rankforge_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Host:          host,
		Port:          port.Int(),
		User:          "test",
		Password:      "test",
		DBName:        "rankforge_test",
		SSLMode:       "disable",
		MaxConns:      4,
		MinConns:      1,
		MigrationPath: filepath.Join("..", "..", "migrations"),
	}
	require.NoError(t, postgres.Migrate(cfg))

	pool, err := postgres.NewPool(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func newTestKeyword(runID common.ID, text string, opportunity int) *keyword.PersistedKeyword {
	return &keyword.PersistedKeyword{
		ID:          common.NewID(),
		RunID:       runID,
		Text:        text,
		Volume:      intPtr(1200),
		Difficulty:  intPtr(35),
		CPC:         floatPtr(2.40),
		Opportunity: intPtr(opportunity),
		Intent:      keyword.IntentInformational,
		Sources:     []string{"autocomplete", "serp"},
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestRunRepository_Lifecycle(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	runs := repositories.NewRunRepository(pool)

	run := research.NewRun(common.NewID(), "example.com", "seo tooling",
		[]string{"rival.com"}, []string{"seo audit"})
	require.NoError(t, runs.Create(ctx, run))

	got, err := runs.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, research.StatusPending, got.Status)
	assert.Equal(t, "example.com", got.Domain)
	assert.Equal(t, "seo tooling", got.Niche)
	assert.Equal(t, []string{"rival.com"}, got.Competitors)
	assert.Equal(t, []string{"seo audit"}, got.SeedKeywords)

	claimed, err := runs.NextPending(ctx)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, run.ID, claimed.ID)
	assert.Equal(t, research.StatusProcessing, claimed.Status)
	assert.NotNil(t, claimed.StartedAt)

	// The queue is empty once the only pending run is claimed.
	none, err := runs.NextPending(ctx)
	require.NoError(t, err)
	assert.Nil(t, none)

	claimed.Log(0, "expansion produced %d candidates", 42)
	require.NoError(t, claimed.Complete(42))
	require.NoError(t, runs.Update(ctx, claimed))

	final, err := runs.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, research.StatusCompleted, final.Status)
	assert.Equal(t, 42, final.TotalFound)
	require.Len(t, final.ProgressLog, 1)
	assert.Contains(t, final.ProgressLog[0].Message, "42 candidates")
	assert.NotNil(t, final.FinishedAt)
}

func TestRunRepository_GetByIDMissing(t *testing.T) {
	pool := startPostgres(t)
	runs := repositories.NewRunRepository(pool)

	_, err := runs.GetByID(context.Background(), common.NewID())
	assert.Error(t, err)
}

func TestRunRepository_FailedRunKeepsErrorMessage(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	runs := repositories.NewRunRepository(pool)

	run := research.NewRun(common.NewID(), "example.com", "", nil, nil)
	require.NoError(t, runs.Create(ctx, run))

	claimed, err := runs.NextPending(ctx)
	require.NoError(t, err)
	require.NoError(t, claimed.Fail("competitor mining for rival.com: connection refused"))
	require.NoError(t, runs.Update(ctx, claimed))

	got, err := runs.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, research.StatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Contains(t, *got.ErrorMessage, "connection refused")
}

func TestKeywordRepository_SaveBatchAndList(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	runs := repositories.NewRunRepository(pool)
	keywords := repositories.NewKeywordRepository(pool)

	run := research.NewRun(common.NewID(), "example.com", "seo", nil, nil)
	require.NoError(t, runs.Create(ctx, run))

	batch := []*keyword.PersistedKeyword{
		newTestKeyword(run.ID, "keyword research tool", 81),
		newTestKeyword(run.ID, "seo audit checklist", 64),
		newTestKeyword(run.ID, "how to do keyword research", 64),
	}
	// One keyword without estimated metrics sorts after the scored ones.
	unscored := newTestKeyword(run.ID, "zzz niche query", 0)
	unscored.Volume, unscored.Difficulty, unscored.CPC, unscored.Opportunity = nil, nil, nil, nil
	batch = append(batch, unscored)

	require.NoError(t, keywords.SaveBatch(ctx, batch))

	listed, err := keywords.ListByRun(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, listed, 4)

	// Ordered by opportunity descending, nulls last, text ascending on ties.
	assert.Equal(t, "keyword research tool", listed[0].Text)
	assert.Equal(t, "how to do keyword research", listed[1].Text)
	assert.Equal(t, "seo audit checklist", listed[2].Text)
	assert.Equal(t, "zzz niche query", listed[3].Text)
	assert.Nil(t, listed[3].Opportunity)
	assert.Equal(t, []string{"autocomplete", "serp"}, listed[0].Sources)
}

func TestKeywordRepository_UpdateClusterMetadata(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	runs := repositories.NewRunRepository(pool)
	keywords := repositories.NewKeywordRepository(pool)

	run := research.NewRun(common.NewID(), "example.com", "seo", nil, nil)
	require.NoError(t, runs.Create(ctx, run))

	rep := newTestKeyword(run.ID, "keyword research tool", 81)
	member := newTestKeyword(run.ID, "best keyword research tool", 58)
	require.NoError(t, keywords.SaveBatch(ctx, []*keyword.PersistedKeyword{rep, member}))

	clusterID := 1
	rep.ClusterID = &clusterID
	rep.IsRepresentative = true
	rep.ClusterSize = 2
	rep.ClusterSiblings = []string{member.Text}
	require.NoError(t, keywords.UpdateClusterMetadata(ctx, rep))

	member.ClusterID = &clusterID
	member.ClusterSize = 2
	require.NoError(t, keywords.UpdateClusterMetadata(ctx, member))

	listed, err := keywords.ListByRun(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.NotNil(t, listed[0].ClusterID)
	assert.True(t, listed[0].IsRepresentative)
	assert.Equal(t, []string{member.Text}, listed[0].ClusterSiblings)
	assert.False(t, listed[1].IsRepresentative)

	// Metric columns survive cluster annotation untouched.
	require.NotNil(t, listed[0].Opportunity)
	assert.Equal(t, 81, *listed[0].Opportunity)

	// Unknown keyword IDs are rejected.
	ghost := newTestKeyword(run.ID, "never persisted", 10)
	err = keywords.UpdateClusterMetadata(ctx, ghost)
	assert.Error(t, err)
}

func TestKeywordRepository_RunsAreIsolated(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	runs := repositories.NewRunRepository(pool)
	keywords := repositories.NewKeywordRepository(pool)

	runA := research.NewRun(common.NewID(), "a.com", "", nil, nil)
	runB := research.NewRun(common.NewID(), "b.com", "", nil, nil)
	require.NoError(t, runs.Create(ctx, runA))
	require.NoError(t, runs.Create(ctx, runB))

	require.NoError(t, keywords.SaveBatch(ctx, []*keyword.PersistedKeyword{
		newTestKeyword(runA.ID, "for run a", 50),
	}))
	require.NoError(t, keywords.SaveBatch(ctx, []*keyword.PersistedKeyword{
		newTestKeyword(runB.ID, fmt.Sprintf("for run b %d", 1), 60),
		newTestKeyword(runB.ID, fmt.Sprintf("for run b %d", 2), 40),
	}))

	listedA, err := keywords.ListByRun(ctx, runA.ID)
	require.NoError(t, err)
	assert.Len(t, listedA, 1)

	listedB, err := keywords.ListByRun(ctx, runB.ID)
	require.NoError(t, err)
	assert.Len(t, listedB, 2)
}
