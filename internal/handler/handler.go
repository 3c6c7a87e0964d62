// Package handler wires the HTTP routes: one gin handler per page,
// each a composition of session lookup, entity fetch, pagination and
// template rendering.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/teamofroman/hw05-final/internal/cache"
	"github.com/teamofroman/hw05-final/internal/domain"
	"github.com/teamofroman/hw05-final/internal/media"
	"github.com/teamofroman/hw05-final/internal/repository"
	"github.com/teamofroman/hw05-final/internal/service"
	pkglog "github.com/teamofroman/hw05-final/pkg/log"
)

// Handler holds every dependency the page handlers need.
type Handler struct {
	auth   service.AuthService
	blog   service.BlogService
	social service.SocialService
	users  repository.UserRepository

	pageCache cache.PageCache
	cacheTTL  time.Duration

	mediaStore *media.Store
	cookieName string

	flight singleflight.Group
}

type Options struct {
	Auth       service.AuthService
	Blog       service.BlogService
	Social     service.SocialService
	Users      repository.UserRepository
	PageCache  cache.PageCache
	CacheTTL   time.Duration
	MediaStore *media.Store
	CookieName string
}

func New(opts Options) *Handler {
	return &Handler{
		auth:       opts.Auth,
		blog:       opts.Blog,
		social:     opts.Social,
		users:      opts.Users,
		pageCache:  opts.PageCache,
		cacheTTL:   opts.CacheTTL,
		mediaStore: opts.MediaStore,
		cookieName: opts.CookieName,
	}
}

// NewRouter builds the Gin engine: recovery, request logging, the HTML
// template renderer and every route.
func NewRouter(h *Handler, templateDir string, logger zerolog.Logger) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	renderer, err := newTemplateRenderer(templateDir)
	if err != nil {
		return nil, err
	}
	r.HTMLRender = renderer

	h.RegisterRoutes(r)
	return r, nil
}

// RegisterRoutes registers all routes onto the Gin engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.Use(h.resolveSession())

	r.GET("/", h.cachePage(), h.Index)
	r.GET("/group/:slug/", h.GroupPosts)
	r.GET("/profile/:username/", h.Profile)
	r.GET("/profile/:username/follow/", h.requireAuth(), h.ProfileFollow)
	r.GET("/profile/:username/unfollow/", h.requireAuth(), h.ProfileUnfollow)
	r.GET("/posts/:id/", h.PostDetail)
	r.GET("/posts/:id/edit/", h.requireAuth(), h.PostEdit)
	r.POST("/posts/:id/edit/", h.requireAuth(), h.PostEdit)
	r.POST("/posts/:id/comment/", h.requireAuth(), h.AddComment)
	r.GET("/create/", h.requireAuth(), h.PostCreate)
	r.POST("/create/", h.requireAuth(), h.PostCreate)
	r.GET("/follow/", h.requireAuth(), h.FollowIndex)

	r.GET("/about/author/", h.AboutAuthor)
	r.GET("/about/tech/", h.AboutTech)

	auth := r.Group("/auth")
	{
		auth.GET("/signup/", h.Signup)
		auth.POST("/signup/", h.Signup)
		auth.GET("/login/", h.Login)
		auth.POST("/login/", h.Login)
		auth.GET("/logout/", h.Logout)
		auth.GET("/password_change/", h.requireAuth(), h.PasswordChange)
		auth.POST("/password_change/", h.requireAuth(), h.PasswordChange)
		auth.GET("/password_reset/", h.PasswordReset)
		auth.POST("/password_reset/", h.PasswordReset)
		auth.GET("/reset/:token/", h.PasswordResetConfirm)
		auth.POST("/reset/:token/", h.PasswordResetConfirm)
	}

	r.Static("/static", "./web/static")
	if h.mediaStore != nil {
		r.Static("/media", h.mediaStore.BaseDir())
	}

	r.NoRoute(h.notFound)
}

// ClearPageCache drops every cached rendered page. Administrative and
// test hook; nothing calls it on the write path.
func (h *Handler) ClearPageCache(ctx context.Context) error {
	return h.pageCache.Clear(ctx)
}

// render executes the named page template with the shared context keys
// (current user, year) merged in.
func (h *Handler) render(c *gin.Context, code int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["User"]; !ok {
		data["User"] = currentUser(c)
	}
	data["Year"] = time.Now().Year()
	c.HTML(code, name, data)
}

func (h *Handler) notFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "404", gin.H{
		"Path": c.Request.URL.Path,
	})
}

// currentUser returns the viewer resolved by the session middleware, or
// nil for anonymous requests.
func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}
