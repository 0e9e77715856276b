package repository

import (
	"context"
	"testing"

	"socialnet/internal/models"
	"socialnet/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_CreateRequiresPost(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice, "p", false)

	c := &models.Comment{UserID: alice.ID, PostID: post.ID, Text: "first"}
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.User.Username)

	err = repo.Create(ctx, &models.Comment{UserID: alice.ID, PostID: 404, Text: "orphan"})
	requireCode(t, err, models.CodeValidation)
}

func TestCommentRepository_List(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	p1 := testutil.CreatePost(t, db, alice, "p1", false)
	p2 := testutil.CreatePost(t, db, alice, "p2", false)
	testutil.CreateComment(t, db, alice, p1, "great")
	testutil.CreateComment(t, db, bob, p1, "agreed")
	testutil.CreateComment(t, db, bob, p2, "hmm")

	comments, count, err := repo.List(ctx, CommentFilter{PostID: p1.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Len(t, comments, 2)

	comments, count, err = repo.List(ctx, CommentFilter{UserID: bob.ID, ListQuery: ListQuery{Ordering: "text"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	require.Len(t, comments, 2)
	assert.Equal(t, "agreed", comments[0].Text)
	assert.Equal(t, "bob", comments[0].User.Username)

	comments, _, err = repo.List(ctx, CommentFilter{ListQuery: ListQuery{Search: "ALI"}})
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "great", comments[0].Text)
}

func TestCommentRepository_UpdateOwnedAndDelete(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice, "p", false)
	c := testutil.CreateComment(t, db, bob, post, "typo")

	got, err := repo.UpdateOwned(ctx, c.ID, bob.ID, "fixed")
	require.NoError(t, err)
	assert.Equal(t, "fixed", got.Text)

	_, err = repo.UpdateOwned(ctx, c.ID, alice.ID, "hijack")
	requireCode(t, err, models.CodeNotFound)

	require.NoError(t, repo.Delete(ctx, c.ID))
	requireCode(t, repo.Delete(ctx, c.ID), models.CodeNotFound)
}

func TestAttachmentRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewAttachmentRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	p1 := testutil.CreatePost(t, db, alice, "p1", false)
	p2 := testutil.CreatePost(t, db, alice, "p2", false)

	a := &models.Attachment{PostID: p1.ID, File: "attachments/2024/01/a.png"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, &models.Attachment{PostID: p2.ID, File: "attachments/2024/01/b.png"}))
	requireCode(t, repo.Create(ctx, &models.Attachment{PostID: 404, File: "x"}), models.CodeValidation)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, p1.ID, got.PostID)

	_, err = repo.GetByID(ctx, 999)
	requireCode(t, err, models.CodeNotFound)

	list, count, err := repo.List(ctx, AttachmentFilter{PostID: p2.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, "attachments/2024/01/b.png", list[0].File)

	_, count, err = repo.List(ctx, AttachmentFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
