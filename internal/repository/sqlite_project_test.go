package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, database *sql.DB, opts ...testutil.UserOption) *domain.User {
	t.Helper()
	u := testutil.NewTestUser(opts...)
	require.NoError(t, NewSQLiteUserRepo(database).Create(context.Background(), u, Credentials{}))
	return u
}

func TestProjectRepo_CreateAndGetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()
	user := seedUser(t, db)

	proj := testutil.NewTestProject(user.ID, "Website",
		testutil.WithFixedFee(500000, 36000),
		testutil.WithDescription("Landing page"),
		testutil.WithTags("web", "design"))
	require.NoError(t, repo.Create(ctx, proj))

	fetched, err := repo.GetByID(ctx, user.ID, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, "Website", fetched.Title)
	assert.Equal(t, "Landing page", fetched.Description)
	assert.Equal(t, domain.BillingFixed, fetched.BillingType)
	assert.Equal(t, int64(500000), fetched.BillingAmount)
	require.NotNil(t, fetched.EstimatedDuration)
	assert.Equal(t, int64(36000), *fetched.EstimatedDuration)
	assert.Equal(t, []string{"web", "design"}, fetched.Tags)
	assert.True(t, fetched.Active)
}

func TestProjectRepo_GetByID_NilEstimate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()
	user := seedUser(t, db)

	proj := testutil.NewTestProject(user.ID, "Consulting", testutil.WithHourlyRate(15000))
	require.NoError(t, repo.Create(ctx, proj))

	fetched, err := repo.GetByID(ctx, user.ID, proj.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.EstimatedDuration)
	assert.Empty(t, fetched.Tags)
}

func TestProjectRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()
	user := seedUser(t, db)

	_, err := repo.GetByID(ctx, user.ID, "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectRepo_ScopedToOwner(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()
	alice := seedUser(t, db)
	bob := seedUser(t, db)

	proj := testutil.NewTestProject(alice.ID, "Private")
	require.NoError(t, repo.Create(ctx, proj))

	_, err := repo.GetByID(ctx, bob.ID, proj.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := repo.List(ctx, bob.ID, true)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, repo.Delete(ctx, bob.ID, proj.ID), ErrNotFound)

	proj.UserID = bob.ID
	proj.Title = "Stolen"
	assert.ErrorIs(t, repo.Update(ctx, proj), ErrNotFound)
}

func TestProjectRepo_List_ExcludesInactive(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()
	user := seedUser(t, db)

	require.NoError(t, repo.Create(ctx, testutil.NewTestProject(user.ID, "beta")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestProject(user.ID, "Alpha")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestProject(user.ID, "Gamma", testutil.WithInactive())))

	active, err := repo.List(ctx, user.ID, false)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Alpha", active[0].Title)
	assert.Equal(t, "beta", active[1].Title)

	all, err := repo.List(ctx, user.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestProjectRepo_Update(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()
	user := seedUser(t, db)

	proj := testutil.NewTestProject(user.ID, "Old")
	require.NoError(t, repo.Create(ctx, proj))

	proj.Title = "New"
	proj.BillingType = domain.BillingFixed
	proj.BillingAmount = 100
	proj.Active = false
	require.NoError(t, repo.Update(ctx, proj))

	fetched, err := repo.GetByID(ctx, user.ID, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", fetched.Title)
	assert.Equal(t, domain.BillingFixed, fetched.BillingType)
	assert.Equal(t, int64(100), fetched.BillingAmount)
	assert.False(t, fetched.Active)
}

func TestProjectRepo_Delete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()
	user := seedUser(t, db)

	proj := testutil.NewTestProject(user.ID, "Temp")
	require.NoError(t, repo.Create(ctx, proj))
	require.NoError(t, repo.Delete(ctx, user.ID, proj.ID))

	_, err := repo.GetByID(ctx, user.ID, proj.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectRepo_RejectsNegativeAmount(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()
	user := seedUser(t, db)

	proj := testutil.NewTestProject(user.ID, "Broken", testutil.WithHourlyRate(-1))
	assert.Error(t, repo.Create(ctx, proj))
}
