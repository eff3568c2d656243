package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/techblog-server/internal/model"
	"github.com/example/techblog-server/internal/testutil"
)

func setupCommentRepo(t *testing.T) (*CommentRepository, *gorm.DB, *model.Post) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	author := testutil.TestUser(t, db, testutil.WithRole(model.RoleAuthor))
	post := testutil.TestPost(t, db, author.ID)

	return NewCommentRepository(db), db, post
}

func TestCommentRepository_CreateAndGet(t *testing.T) {
	repo, _, post := setupCommentRepo(t)

	comment := &model.Comment{
		PostID:      post.ID,
		AuthorName:  "Guest",
		AuthorEmail: "guest@example.com",
		Content:     "hello",
	}
	require.NoError(t, repo.Create(comment))
	assert.NotZero(t, comment.ID)

	got, err := repo.GetByID(comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)
	assert.False(t, got.IsApproved)
}

func TestCommentRepository_GetByID_ExcludesDeleted(t *testing.T) {
	repo, db, post := setupCommentRepo(t)

	comment := testutil.TestComment(t, db, post.ID, testutil.Deleted())

	_, err := repo.GetByID(comment.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCommentRepository_ListByPostID(t *testing.T) {
	repo, db, post := setupCommentRepo(t)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	testutil.TestComment(t, db, post.ID, testutil.Approved(), testutil.WithCreatedAt(base))
	testutil.TestComment(t, db, post.ID, testutil.WithCreatedAt(base.Add(time.Minute)))
	testutil.TestComment(t, db, post.ID, testutil.Deleted(), testutil.WithCreatedAt(base.Add(2*time.Minute)))

	comments, err := repo.ListByPostID(post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2, "deleted rows are excluded, pending are included")

	// Newest first
	assert.True(t, comments[0].CreatedAt.After(comments[1].CreatedAt))
}

func TestCommentRepository_ListApprovedByPostID(t *testing.T) {
	repo, db, post := setupCommentRepo(t)

	approved := testutil.TestComment(t, db, post.ID, testutil.Approved())
	testutil.TestComment(t, db, post.ID)

	comments, err := repo.ListApprovedByPostID(post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, approved.ID, comments[0].ID)
}

func TestCommentRepository_ListAllAndApproved(t *testing.T) {
	repo, db, post := setupCommentRepo(t)

	author := testutil.TestUser(t, db, testutil.WithRole(model.RoleAuthor))
	otherPost := testutil.TestPost(t, db, author.ID)

	testutil.TestComment(t, db, post.ID, testutil.Approved())
	testutil.TestComment(t, db, otherPost.ID)
	testutil.TestComment(t, db, otherPost.ID, testutil.Deleted())

	all, err := repo.ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	approved, err := repo.ListApproved()
	require.NoError(t, err)
	assert.Len(t, approved, 1)
}

func TestCommentRepository_ListByParentID(t *testing.T) {
	repo, db, post := setupCommentRepo(t)

	parent := testutil.TestComment(t, db, post.ID, testutil.Approved())
	r1 := testutil.TestComment(t, db, post.ID, testutil.WithParent(parent.ID))
	r2 := testutil.TestComment(t, db, post.ID, testutil.WithParent(parent.ID), testutil.Approved())
	// Grandchild must not appear in the parent's direct replies
	testutil.TestComment(t, db, post.ID, testutil.WithParent(r1.ID))

	replies, err := repo.ListByParentID(parent.ID)
	require.NoError(t, err)
	assert.Len(t, replies, 2)

	batch, err := repo.ListByParentIDs([]int64{parent.ID, r1.ID, r2.ID})
	require.NoError(t, err)
	assert.Len(t, batch, 3)

	empty, err := repo.ListByParentIDs(nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestCommentRepository_SetApproval(t *testing.T) {
	repo, db, post := setupCommentRepo(t)

	comment := testutil.TestComment(t, db, post.ID)

	require.NoError(t, repo.SetApproval(comment.ID, true))
	got, err := repo.GetByID(comment.ID)
	require.NoError(t, err)
	assert.True(t, got.IsApproved)

	require.NoError(t, repo.SetApproval(comment.ID, false))
	got, err = repo.GetByID(comment.ID)
	require.NoError(t, err)
	assert.False(t, got.IsApproved)
}

func TestCommentRepository_UpdateContent(t *testing.T) {
	repo, db, post := setupCommentRepo(t)

	comment := testutil.TestComment(t, db, post.ID)

	require.NoError(t, repo.UpdateContent(comment.ID, "edited", true))

	got, err := repo.GetByID(comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)
	assert.True(t, got.IsApproved)
}

func TestCommentRepository_SoftDelete(t *testing.T) {
	repo, db, post := setupCommentRepo(t)

	parent := testutil.TestComment(t, db, post.ID, testutil.Approved())
	reply := testutil.TestComment(t, db, post.ID, testutil.WithParent(parent.ID), testutil.Approved())

	require.NoError(t, repo.SoftDelete(parent.ID))

	_, err := repo.GetByID(parent.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The row stays in the table and replies are untouched
	var raw model.Comment
	require.NoError(t, db.Where("id = ?", parent.ID).First(&raw).Error)
	assert.True(t, raw.IsDeleted)

	got, err := repo.GetByID(reply.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDeleted)
}

func TestCommentRepository_CountByPostID(t *testing.T) {
	repo, db, post := setupCommentRepo(t)

	testutil.TestComment(t, db, post.ID, testutil.Approved())
	testutil.TestComment(t, db, post.ID)
	testutil.TestComment(t, db, post.ID, testutil.Deleted())

	total, err := repo.CountByPostID(post.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	approved, err := repo.CountByPostID(post.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), approved)
}

func TestCommentRepository_PurgeDeletedBefore(t *testing.T) {
	repo, db, post := setupCommentRepo(t)

	kept := testutil.TestComment(t, db, post.ID, testutil.Approved())
	oldDeleted := testutil.TestComment(t, db, post.ID, testutil.Deleted())
	recentDeleted := testutil.TestComment(t, db, post.ID, testutil.Deleted())

	// backdate one of the deleted rows past the cutoff
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, db.Model(&model.Comment{}).
		Where("id = ?", oldDeleted.ID).
		UpdateColumn("updated_at", old).Error)

	cutoff := time.Now().Add(-24 * time.Hour)

	count, err := repo.CountDeletedBefore(cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	purged, err := repo.PurgeDeletedBefore(cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	var remaining int64
	require.NoError(t, db.Model(&model.Comment{}).Count(&remaining).Error)
	assert.Equal(t, int64(2), remaining)

	var raw model.Comment
	err = db.Where("id = ?", oldDeleted.ID).First(&raw).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var keptRaw model.Comment
	require.NoError(t, db.Where("id = ?", kept.ID).First(&keptRaw).Error)
	var recentRaw model.Comment
	require.NoError(t, db.Where("id = ?", recentDeleted.ID).First(&recentRaw).Error)
}
