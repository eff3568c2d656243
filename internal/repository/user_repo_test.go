package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/techblog-server/internal/model"
	"github.com/example/techblog-server/internal/testutil"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })
	repo := NewUserRepository(db)

	user := &model.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	require.NoError(t, repo.Create(user))

	byID, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byEmail, err := repo.GetByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byName, err := repo.GetByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	_, err = repo.GetByEmail("missing@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_Exists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })
	repo := NewUserRepository(db)

	testutil.TestUser(t, db, testutil.WithUsername("bob"), testutil.WithEmail("bob@example.com"))

	exists, err := repo.ExistsByEmail("bob@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail("nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByUsername("bob")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUsername("nobody")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })
	repo := NewUserRepository(db)

	user := testutil.TestUser(t, db)
	user.Bio = "updated bio"
	require.NoError(t, repo.Update(user))

	got, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated bio", got.Bio)
}
