package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teamofroman/hw05-final/internal/cache"
	pkglog "github.com/teamofroman/hw05-final/pkg/log"
)

const (
	ctxUserKey = "current_user"
	loginPath  = "/auth/login/"
)

// resolveSession loads the viewer from the session cookie, if any.
// Anonymous and expired/revoked sessions just leave the key unset.
func (h *Handler) resolveSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(h.cookieName)
		if err == nil && sid != "" {
			if user, err := h.auth.UserFromSession(c.Request.Context(), sid); err == nil {
				c.Set(ctxUserKey, user)
				c.Set(pkglog.FieldUserID, user.ID)
				c.Set(pkglog.FieldUsername, user.Username)
			}
		}
		c.Next()
	}
}

// requireAuth redirects anonymous viewers to the login page, carrying the
// originally requested path in ?next= so login can send them back.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			c.Redirect(http.StatusFound, loginPath+"?next="+c.Request.URL.Path)
			c.Abort()
			return
		}
		c.Next()
	}
}

// cachePage serves the route from the rendered-page cache, keyed by path
// plus query string. Entries live for the configured TTL; nothing
// invalidates them on writes, so a fresh post shows up only after expiry
// or an explicit ClearPageCache. Concurrent misses on the same key are
// collapsed through singleflight so only one render runs.
func (h *Handler) cachePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.pageCache == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := c.Request.URL.RequestURI()

		if entry, err := h.pageCache.Get(ctx, key); err == nil {
			writeEntry(c, entry)
			c.Abort()
			return
		}

		v, err, _ := h.flight.Do(key, func() (interface{}, error) {
			w := newCaptureWriter(c.Writer)
			orig := c.Writer
			c.Writer = w
			c.Next()
			c.Writer = orig

			entry := &cache.Entry{
				Status:      w.status,
				ContentType: w.Header().Get("Content-Type"),
				Body:        w.body.Bytes(),
			}
			if entry.Status == http.StatusOK {
				if err := h.pageCache.Set(ctx, key, entry, h.cacheTTL); err != nil {
					pkglog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to store page cache entry")
				}
			}
			return entry, nil
		})
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		writeEntry(c, v.(*cache.Entry))
		c.Abort()
	}
}

func writeEntry(c *gin.Context, entry *cache.Entry) {
	contentType := entry.ContentType
	if contentType == "" {
		contentType = "text/html; charset=utf-8"
	}
	c.Data(entry.Status, contentType, entry.Body)
}

// captureWriter buffers the response body so the cache middleware can
// store it before anything reaches the wire. Headers still go to the
// shared header map; only status and body are held back.
type captureWriter struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func newCaptureWriter(w gin.ResponseWriter) *captureWriter {
	return &captureWriter{
		ResponseWriter: w,
		body:           &bytes.Buffer{},
		status:         http.StatusOK,
	}
}

func (w *captureWriter) WriteHeader(code int) { w.status = code }

func (w *captureWriter) WriteHeaderNow() {}

func (w *captureWriter) Write(b []byte) (int, error) { return w.body.Write(b) }

func (w *captureWriter) WriteString(s string) (int, error) { return w.body.WriteString(s) }

func (w *captureWriter) Status() int { return w.status }

func (w *captureWriter) Size() int { return w.body.Len() }

func (w *captureWriter) Written() bool { return w.body.Len() > 0 }
