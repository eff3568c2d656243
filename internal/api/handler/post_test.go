package handler

import (
	"fmt"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/techblog-server/internal/model"
	"github.com/example/techblog-server/internal/model/dto"
	"github.com/example/techblog-server/internal/pkg/response"
	"github.com/example/techblog-server/internal/repository"
	"github.com/example/techblog-server/internal/service"
	"github.com/example/techblog-server/internal/testutil"
)

func setupPostHandler(t *testing.T) (*PostHandler, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	handler := NewPostHandler(service.NewPostService(
		repository.NewPostRepository(db),
		repository.NewUserRepository(db),
	))
	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return handler, db, cleanup
}

func TestPostHandler_List(t *testing.T) {
	handler, db, cleanup := setupPostHandler(t)
	defer cleanup()

	author := testutil.TestUser(t, db, testutil.WithRole(model.RoleAuthor))
	testutil.TestPost(t, db, author.ID)
	testutil.TestPost(t, db, author.ID, testutil.WithPublished(false))

	router := gin.New()
	router.GET("/posts", handler.List)

	w := performRequest(router, "GET", "/posts", nil)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestPostHandler_Get(t *testing.T) {
	handler, db, cleanup := setupPostHandler(t)
	defer cleanup()

	author := testutil.TestUser(t, db, testutil.WithRole(model.RoleAuthor))
	post := testutil.TestPost(t, db, author.ID)

	router := gin.New()
	router.GET("/posts/:id", handler.Get)

	t.Run("by id", func(t *testing.T) {
		w := performRequest(router, "GET", fmt.Sprintf("/posts/%d", post.ID), nil)
		resp := parseResponse(t, w)
		assert.Equal(t, response.CodeSuccess, resp.Code)
	})

	t.Run("by slug", func(t *testing.T) {
		w := performRequest(router, "GET", "/posts/"+post.Slug, nil)
		resp := parseResponse(t, w)
		assert.Equal(t, response.CodeSuccess, resp.Code)
	})

	t.Run("missing", func(t *testing.T) {
		w := performRequest(router, "GET", "/posts/9999", nil)
		resp := parseResponse(t, w)
		assert.Equal(t, response.CodeResourceNotFound, resp.Code)
	})
}

func TestPostHandler_Create(t *testing.T) {
	handler, db, cleanup := setupPostHandler(t)
	defer cleanup()

	author := testutil.TestUser(t, db, testutil.WithRole(model.RoleAuthor))
	reader := testutil.TestUser(t, db)

	req := dto.CreatePostRequest{
		Title:       "New Post",
		Slug:        "new-post",
		Content:     "body",
		IsPublished: true,
	}

	t.Run("author can publish", func(t *testing.T) {
		router := gin.New()
		router.Use(mockAuth(author.ID, author.Role))
		router.POST("/posts", handler.Create)

		w := performRequest(router, "POST", "/posts", req)
		resp := parseResponse(t, w)
		assert.Equal(t, response.CodeSuccess, resp.Code)
	})

	t.Run("reader is denied", func(t *testing.T) {
		router := gin.New()
		router.Use(mockAuth(reader.ID, reader.Role))
		router.POST("/posts", handler.Create)

		w := performRequest(router, "POST", "/posts", dto.CreatePostRequest{
			Title: "Nope", Slug: "nope", Content: "x",
		})
		resp := parseResponse(t, w)
		assert.Equal(t, response.CodePermissionDenied, resp.Code)
	})

	t.Run("anonymous is rejected", func(t *testing.T) {
		router := gin.New()
		router.POST("/posts", handler.Create)

		w := performRequest(router, "POST", "/posts", req)
		resp := parseResponse(t, w)
		assert.Equal(t, response.CodeAuthFailed, resp.Code)
	})
}
