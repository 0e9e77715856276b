package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"socialnet/internal/models"
	"socialnet/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAttachment(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	post := testutil.CreatePost(t, env.db, alice, "with file", false)
	fields := map[string]string{"post": strconv.FormatUint(uint64(post.ID), 10)}

	resp := env.upload(http.MethodPost, "/api/attachments", fields, "file", "report.pdf", []byte("%PDF-1.4"), env.token(bob))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Zero(t, env.blobs.Len())

	resp = env.upload(http.MethodPost, "/api/attachments", fields, "file", "report.pdf", []byte("%PDF-1.4"), env.token(alice))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	att := decode[AttachmentResponse](t, resp)
	assert.Equal(t, post.ID, att.Post)
	assert.True(t, strings.HasPrefix(att.File, fmt.Sprintf("http://blobs.test/attachments/%d/", post.ID)))
	assert.True(t, strings.HasSuffix(att.File, ".pdf"))
	assert.Equal(t, 1, env.blobs.Len())

	resp = env.do(http.MethodGet, fmt.Sprintf("/api/attachments/%d", att.ID), nil, env.token(bob))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, att, decode[AttachmentResponse](t, resp))

	resp = env.do(http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), nil, env.token(bob))
	got := decode[PostResponse](t, resp)
	require.Len(t, got.PostAttachments, 1)
	assert.Equal(t, att.File, got.PostAttachments[0].File)
}

func TestCreateAttachment_Validation(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	post := testutil.CreatePost(t, env.db, alice, "post", false)
	token := env.token(alice)
	postField := map[string]string{"post": strconv.FormatUint(uint64(post.ID), 10)}

	tests := []struct {
		name     string
		fields   map[string]string
		file     string
		content  []byte
		expected int
	}{
		{"missing post", nil, "file", []byte("x"), http.StatusBadRequest},
		{"bad post", map[string]string{"post": "abc"}, "file", []byte("x"), http.StatusBadRequest},
		{"missing file", postField, "", nil, http.StatusBadRequest},
		{"empty file", postField, "file", []byte{}, http.StatusBadRequest},
		{"unknown post", map[string]string{"post": "9999"}, "file", []byte("x"), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.upload(http.MethodPost, "/api/attachments", tt.fields, tt.file, "a.txt", tt.content, token)
			assert.Equal(t, tt.expected, resp.StatusCode)
		})
	}
	assert.Zero(t, env.blobs.Len())
}

func TestCreateAttachment_StorageFailure(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	post := testutil.CreatePost(t, env.db, alice, "post", false)
	env.blobs.FailUpload = true

	fields := map[string]string{"post": strconv.FormatUint(uint64(post.ID), 10)}
	resp := env.upload(http.MethodPost, "/api/attachments", fields, "file", "a.txt", []byte("x"), env.token(alice))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode[models.ErrorResponse](t, resp)
	assert.Equal(t, models.CodeInternal, body.Code)
	assert.Empty(t, body.Details)
}

func TestListAttachments_PostFilter(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	first := testutil.CreatePost(t, env.db, alice, "first", false)
	second := testutil.CreatePost(t, env.db, alice, "second", false)
	require.NoError(t, env.db.Create(&models.Attachment{PostID: first.ID, File: "attachments/1/a.txt"}).Error)
	require.NoError(t, env.db.Create(&models.Attachment{PostID: first.ID, File: "attachments/1/b.txt"}).Error)
	require.NoError(t, env.db.Create(&models.Attachment{PostID: second.ID, File: "attachments/2/c.txt"}).Error)
	token := env.token(alice)

	resp := env.do(http.MethodGet, "/api/attachments", nil, token)
	assert.Equal(t, int64(3), decode[pageOf[AttachmentResponse]](t, resp).Count)

	resp = env.do(http.MethodGet, fmt.Sprintf("/api/attachments?post=%d", first.ID), nil, token)
	page := decode[pageOf[AttachmentResponse]](t, resp)
	assert.Equal(t, int64(2), page.Count)
	for _, a := range page.Results {
		assert.Equal(t, first.ID, a.Post)
		assert.True(t, strings.HasPrefix(a.File, "http://blobs.test/"))
	}
}
