//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/campushub/internal/domain"
	"github.com/campushub/campushub/internal/testutil"
)

func insertUniversity(ctx context.Context, t *testing.T, repo *UniversityRepository, name, country, city, description string) string {
	now := time.Now().UTC().Truncate(time.Microsecond)
	u := &domain.University{
		ID:          uuid.NewString(),
		Name:        name,
		Country:     country,
		City:        city,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, repo.Create(ctx, u))
	return u.ID
}

func seedUniversities(ctx context.Context, t *testing.T, repo *UniversityRepository) {
	insertUniversity(ctx, t, repo,
		"Massachusetts Institute of Technology", "USA", "Cambridge",
		"Research university focused on science and engineering")
	insertUniversity(ctx, t, repo,
		"Stanford University", "USA", "Stanford",
		"Private research university in Silicon Valley")
	insertUniversity(ctx, t, repo,
		"University of Oxford", "UK", "Oxford",
		"Collegiate research university, oldest in the English-speaking world")
}

func TestUniversityRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewUniversityRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrUniversityNotFound)
}

func TestUniversityRepository_ListFiltersByCountry(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewUniversityRepository(pool)
	seedUniversities(ctx, t, repo)

	summaries, total, err := repo.List(ctx, "USA", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, summaries, 2)
	// alphabetical order
	assert.Equal(t, "Massachusetts Institute of Technology", summaries[0].Name)

	all, total, err := repo.List(ctx, "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)
}

func TestUniversityRepository_SearchIndexed(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewUniversityRepository(pool)
	seedUniversities(ctx, t, repo)

	summaries, total, err := repo.SearchIndexed(ctx, "research university", "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, summaries, 3)
	// all carry a relevance score from ts_rank
	for _, s := range summaries {
		assert.Greater(t, s.Score, 0.0)
	}
}

func TestUniversityRepository_SearchTextWithoutSearchMigration(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	// schema only: the search_vector columns and indexes do not exist
	pool := testutil.NewBarePool(ctx, t, pc)
	defer pool.Close()
	require.NoError(t, testutil.RunMigrationFiles(ctx, pool, "../../migrations", "0001_init.up.sql"))

	repo := NewUniversityRepository(pool)
	seedUniversities(ctx, t, repo)

	// indexed query fails against the bare schema
	_, _, err := repo.SearchIndexed(ctx, "stanford", "", 10, 0)
	assert.Error(t, err)

	// the on-the-fly text query still works
	summaries, total, err := repo.SearchText(ctx, "stanford", "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Stanford University", summaries[0].Name)
}

func TestUniversityRepository_SearchSubstringMatchesPartialTokens(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewBarePool(ctx, t, pc)
	defer pool.Close()
	require.NoError(t, testutil.RunMigrationFiles(ctx, pool, "../../migrations", "0001_init.up.sql"))

	repo := NewUniversityRepository(pool)
	seedUniversities(ctx, t, repo)

	// "stanf" is not a full token, so the text query misses it
	_, total, err := repo.SearchText(ctx, "stanf", "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	// the substring scan catches it
	summaries, total, err := repo.SearchSubstring(ctx, "stanf", "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Stanford University", summaries[0].Name)
}

func TestUniversityRepository_SearchSubstringEscapesWildcards(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewUniversityRepository(pool)
	insertUniversity(ctx, t, repo, "100% Online College", "USA", "Remote", "fully online")
	insertUniversity(ctx, t, repo, "Stanford University", "USA", "Stanford", "on campus")

	// a literal % must not act as a wildcard
	summaries, total, err := repo.SearchSubstring(ctx, "100%", "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, summaries, 1)
	assert.Equal(t, "100% Online College", summaries[0].Name)
}

func TestCapabilityProbe_ReflectsSearchMigration(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewBarePool(ctx, t, pc)
	defer pool.Close()
	require.NoError(t, testutil.RunMigrationFiles(ctx, pool, "../../migrations", "0001_init.up.sql"))

	probe := NewCapabilityProbe(pool)
	assert.Error(t, probe.ProbeIndexed(ctx))

	require.NoError(t, testutil.RunMigrationFiles(ctx, pool, "../../migrations", "0002_search.up.sql"))
	assert.NoError(t, probe.ProbeIndexed(ctx))
}

func TestUniversityRepository_RecalcRating(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	uniRepo := NewUniversityRepository(pool)
	reviewRepo := NewReviewRepository(pool)

	uniID := insertUniversity(ctx, t, uniRepo, "Stanford University", "USA", "Stanford", "research")
	alice := insertUser(ctx, t, pool, "alice")
	bob := insertUser(ctx, t, pool, "bob")

	now := time.Now().UTC().Truncate(time.Microsecond)
	for _, rev := range []*domain.Review{
		{ID: uuid.NewString(), AuthorID: alice, UniversityID: uniID, Rating: 5, Content: "great", CreatedAt: now, UpdatedAt: now},
		{ID: uuid.NewString(), AuthorID: bob, UniversityID: uniID, Rating: 2, Content: "meh", CreatedAt: now, UpdatedAt: now},
	} {
		require.NoError(t, reviewRepo.Create(ctx, rev))
	}

	require.NoError(t, uniRepo.RecalcRating(ctx, uniID))

	u, err := uniRepo.GetByID(ctx, uniID)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, u.AvgRating, 0.001)
	assert.Equal(t, 2, u.ReviewCount)
}
