package handler_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/teamofroman/hw05-final/internal/cache"
	"github.com/teamofroman/hw05-final/internal/domain"
	"github.com/teamofroman/hw05-final/internal/handler"
	"github.com/teamofroman/hw05-final/internal/media"
	"github.com/teamofroman/hw05-final/internal/repository"
	"github.com/teamofroman/hw05-final/internal/service"
	"github.com/teamofroman/hw05-final/pkg/database"
)

const cookieName = "session_id"

type testApp struct {
	router  *gin.Engine
	handler *handler.Handler
	db      *gorm.DB
	posts   repository.PostRepository
	groups  repository.GroupRepository
	follows repository.FollowRepository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.New(&database.Config{
		Driver:   "sqlite",
		FilePath: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)

	require.NoError(t, database.AutoMigrate(db,
		&domain.User{},
		&domain.Group{},
		&domain.Post{},
		&domain.Comment{},
		&domain.Follow{},
		&domain.Session{},
		&domain.PasswordResetToken{},
	))

	userRepo := repository.NewGormUserRepository(db)
	groupRepo := repository.NewGormGroupRepository(db)
	postRepo := repository.NewGormPostRepository(db)
	commentRepo := repository.NewGormCommentRepository(db)
	followRepo := repository.NewGormFollowRepository(db)
	sessionRepo := repository.NewGormSessionRepository(db)
	tokenRepo := repository.NewGormResetTokenRepository(db)

	mediaStore, err := media.NewStore(t.TempDir())
	require.NoError(t, err)

	h := handler.New(handler.Options{
		Auth:       service.NewAuthService(userRepo, sessionRepo, tokenRepo, time.Hour),
		Blog:       service.NewBlogService(postRepo, groupRepo, commentRepo, 10),
		Social:     service.NewSocialService(followRepo, postRepo, 10),
		Users:      userRepo,
		PageCache:  cache.NewMemoryPageCache(),
		CacheTTL:   20 * time.Second,
		MediaStore: mediaStore,
		CookieName: cookieName,
	})

	router, err := handler.NewRouter(h, "../../web/templates", zerolog.Nop())
	require.NoError(t, err)

	return &testApp{
		router:  router,
		handler: h,
		db:      db,
		posts:   postRepo,
		groups:  groupRepo,
		follows: followRepo,
	}
}

func (a *testApp) get(t *testing.T, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// signupAndLogin registers a fresh account over HTTP and returns its
// session cookie.
func (a *testApp) signupAndLogin(t *testing.T, username string) *http.Cookie {
	t.Helper()

	w := a.postForm(t, "/auth/signup/", url.Values{
		"username": {username},
		"email":    {username + "@example.com"},
		"password": {"secret1"},
		"confirm":  {"secret1"},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code, "signup should redirect")

	w = a.postForm(t, "/auth/login/", url.Values{
		"username": {username},
		"password": {"secret1"},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code, "login should redirect")

	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func (a *testApp) countPosts(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, a.db.Model(&domain.Post{}).Count(&count).Error)
	return count
}

func TestSignupLoginLogout(t *testing.T) {
	app := newTestApp(t)

	cookie := app.signupAndLogin(t, "alice")

	w := app.get(t, "/create/", cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.get(t, "/auth/logout/", cookie)
	assert.Equal(t, http.StatusFound, w.Code)

	w = app.get(t, "/create/", cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/create/", w.Header().Get("Location"))
}

func TestAuthRequiredRedirectsWithNext(t *testing.T) {
	app := newTestApp(t)

	w := app.postForm(t, "/posts/1/comment/", url.Values{"text": {"hi"}}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/posts/1/comment/", w.Header().Get("Location"))

	w = app.get(t, "/follow/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/follow/", w.Header().Get("Location"))
}

func TestCreatePostAttribution(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signupAndLogin(t, "alice")

	w := app.postForm(t, "/create/", url.Values{"text": {"my first post"}}, cookie)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/alice/", w.Header().Get("Location"))

	assert.EqualValues(t, 1, app.countPosts(t))

	post, err := app.posts.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "my first post", post.Text)
	assert.Equal(t, "alice", post.Author.Username)
	assert.Nil(t, post.GroupID)

	w = app.get(t, "/profile/alice/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "my first post")
}

func TestCreatePostEmptyTextRerenders(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signupAndLogin(t, "alice")

	w := app.postForm(t, "/create/", url.Values{"text": {"   "}}, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "This field is required.")
	assert.Zero(t, app.countPosts(t))
}

func TestCreatePostUnknownGroupRerenders(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signupAndLogin(t, "alice")

	w := app.postForm(t, "/create/", url.Values{
		"text":  {"text"},
		"group": {"42"},
	}, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Select a valid group.")
	assert.Zero(t, app.countPosts(t))
}

func TestEditPostByAuthor(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signupAndLogin(t, "alice")

	app.postForm(t, "/create/", url.Values{"text": {"original"}}, cookie)
	original, err := app.posts.GetByID(context.Background(), 1)
	require.NoError(t, err)

	w := app.postForm(t, "/posts/1/edit/", url.Values{"text": {"revised"}}, cookie)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/posts/1/", w.Header().Get("Location"))

	assert.EqualValues(t, 1, app.countPosts(t))

	updated, err := app.posts.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "revised", updated.Text)
	assert.Equal(t, original.AuthorID, updated.AuthorID)
	assert.Equal(t, original.ID, updated.ID)
	assert.True(t, original.PubDate.Equal(updated.PubDate))
}

func TestEditPostByNonAuthorSilentRedirect(t *testing.T) {
	app := newTestApp(t)
	author := app.signupAndLogin(t, "alice")
	other := app.signupAndLogin(t, "bob")

	app.postForm(t, "/create/", url.Values{"text": {"untouchable"}}, author)

	w := app.get(t, "/posts/1/edit/", other)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/posts/1/", w.Header().Get("Location"))

	w = app.postForm(t, "/posts/1/edit/", url.Values{"text": {"defaced"}}, other)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/posts/1/", w.Header().Get("Location"))

	assert.EqualValues(t, 1, app.countPosts(t))
	post, err := app.posts.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "untouchable", post.Text)
}

func TestAddComment(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signupAndLogin(t, "alice")

	app.postForm(t, "/create/", url.Values{"text": {"a post"}}, cookie)

	w := app.postForm(t, "/posts/1/comment/", url.Values{"text": {"nice one"}}, cookie)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/posts/1/", w.Header().Get("Location"))

	w = app.get(t, "/posts/1/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "nice one")
}

func TestAddCommentInvalidSilentlyDropped(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signupAndLogin(t, "alice")

	app.postForm(t, "/create/", url.Values{"text": {"a post"}}, cookie)

	// An empty comment still redirects to the detail page; the failure
	// is not surfaced and nothing is stored.
	w := app.postForm(t, "/posts/1/comment/", url.Values{"text": {"  "}}, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/posts/1/", w.Header().Get("Location"))

	var count int64
	require.NoError(t, app.db.Model(&domain.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAddCommentUnknownPost(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signupAndLogin(t, "alice")

	w := app.postForm(t, "/posts/999/comment/", url.Values{"text": {"hello"}}, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotFoundPages(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{
		"/group/no-such-group/",
		"/profile/nobody/",
		"/posts/999/",
		"/unexisting_page/",
	} {
		w := app.get(t, path, nil)
		assert.Equalf(t, http.StatusNotFound, w.Code, "path %s", path)
	}
}

func TestGroupListingFiltersBySlug(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signupAndLogin(t, "alice")

	ctx := context.Background()
	group := &domain.Group{Title: "Gophers", Slug: "gophers", Description: "all things Go"}
	require.NoError(t, app.groups.Create(ctx, group))

	app.postForm(t, "/create/", url.Values{"text": {"inside the group"}, "group": {"1"}}, cookie)
	app.postForm(t, "/create/", url.Values{"text": {"outside any group"}}, cookie)

	w := app.get(t, "/group/gophers/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "inside the group")
	assert.NotContains(t, w.Body.String(), "outside any group")
}

func TestProfileShowsFollowStatus(t *testing.T) {
	app := newTestApp(t)
	reader := app.signupAndLogin(t, "reader")
	app.signupAndLogin(t, "writer")

	w := app.get(t, "/profile/writer/", reader)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/profile/writer/follow/")

	w = app.get(t, "/profile/writer/follow/", reader)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/writer/", w.Header().Get("Location"))

	w = app.get(t, "/profile/writer/", reader)
	assert.Contains(t, w.Body.String(), "/profile/writer/unfollow/")
}

func TestFollowUnfollowCounts(t *testing.T) {
	app := newTestApp(t)
	reader := app.signupAndLogin(t, "reader")
	app.signupAndLogin(t, "writer")
	ctx := context.Background()

	count := func() int64 {
		n, err := app.follows.CountByUser(ctx, 1)
		require.NoError(t, err)
		return n
	}

	require.Zero(t, count())

	app.get(t, "/profile/writer/follow/", reader)
	assert.EqualValues(t, 1, count())

	// Duplicate follow is a silent no-op.
	w := app.get(t, "/profile/writer/follow/", reader)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.EqualValues(t, 1, count())

	// Self-follow is a silent no-op.
	w = app.get(t, "/profile/reader/follow/", reader)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.EqualValues(t, 1, count())

	app.get(t, "/profile/writer/unfollow/", reader)
	assert.Zero(t, count())

	// Unfollowing without a follow is a silent no-op.
	w = app.get(t, "/profile/writer/unfollow/", reader)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Zero(t, count())
}

func TestFeedVisibility(t *testing.T) {
	app := newTestApp(t)
	follower := app.signupAndLogin(t, "follower")
	bystander := app.signupAndLogin(t, "bystander")
	author := app.signupAndLogin(t, "author")

	app.get(t, "/profile/author/follow/", follower)
	app.postForm(t, "/create/", url.Values{"text": {"broadcast to followers"}}, author)

	w := app.get(t, "/follow/", follower)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "broadcast to followers")

	w = app.get(t, "/follow/", bystander)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "broadcast to followers")
}

func TestHomePageCache(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	first := app.get(t, "/", nil)
	require.Equal(t, http.StatusOK, first.Code)

	user := &domain.User{Username: "ghost", Email: "ghost@example.com", PasswordHash: "x"}
	require.NoError(t, app.db.Create(user).Error)
	require.NoError(t, app.posts.Create(ctx, &domain.Post{Text: "invisible until expiry", AuthorID: user.ID}))

	// The cached page ignores the new post entirely.
	second := app.get(t, "/", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
	assert.NotContains(t, second.Body.String(), "invisible until expiry")

	require.NoError(t, app.handler.ClearPageCache(ctx))

	third := app.get(t, "/", nil)
	require.Equal(t, http.StatusOK, third.Code)
	assert.Contains(t, third.Body.String(), "invisible until expiry")
}

func TestHomePaginationSplit(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signupAndLogin(t, "prolific")

	for i := 0; i < 12; i++ {
		w := app.postForm(t, "/create/", url.Values{"text": {postText(i)}}, cookie)
		require.Equal(t, http.StatusFound, w.Code)
	}

	page1 := app.get(t, "/", nil).Body.String()
	assert.Equal(t, 10, strings.Count(page1, `<article class="post">`))

	page2 := app.get(t, "/?page=2", nil).Body.String()
	assert.Equal(t, 2, strings.Count(page2, `<article class="post">`))

	// Out-of-range pages clamp instead of erroring.
	w := app.get(t, "/?page=99", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, strings.Count(w.Body.String(), `<article class="post">`))
}

func postText(i int) string {
	return "numbered post " + strings.Repeat("x", i+1)
}

func TestCreatePostWithImage(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signupAndLogin(t, "alice")

	// Smallest possible sniffable PNG header.
	png := append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 16)...)

	w := app.postMultipart(t, "/create/", map[string]string{"text": "picture post"}, "cat.png", png, cookie)
	require.Equal(t, http.StatusFound, w.Code)

	post, err := app.posts.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.NotEmpty(t, post.Image)
	assert.True(t, strings.HasPrefix(post.Image, "posts/"))
}

func TestCreatePostRejectsNonImage(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signupAndLogin(t, "alice")

	w := app.postMultipart(t, "/create/", map[string]string{"text": "bad upload"}, "notes.txt", []byte("plain text"), cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Upload a valid image.")
	assert.Zero(t, app.countPosts(t))
}

func (a *testApp) postMultipart(t *testing.T, path string, fields map[string]string, filename string, file []byte, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}
