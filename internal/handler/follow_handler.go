package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teamofroman/hw05-final/internal/domain"
	"github.com/teamofroman/hw05-final/internal/pagination"
	"github.com/teamofroman/hw05-final/internal/repository"
	"github.com/teamofroman/hw05-final/internal/service"
)

// FollowIndex shows the viewer's feed: posts from every followed author,
// newest first, paginated.
func (h *Handler) FollowIndex(c *gin.Context) {
	user := currentUser(c)

	page, err := h.social.FeedPage(c.Request.Context(), user.ID, pagination.ParsePageParam(c.Query("page")))
	if err != nil {
		h.serverError(c, err)
		return
	}

	h.render(c, http.StatusOK, "follow", gin.H{
		"PageObj": page,
	})
}

// ProfileFollow starts following the named author. Following yourself or
// someone already followed is a silent no-op; either way the viewer lands
// back on the author's profile.
func (h *Handler) ProfileFollow(c *gin.Context) {
	user := currentUser(c)

	author, ok := h.lookupAuthor(c)
	if !ok {
		return
	}

	err := h.social.Follow(c.Request.Context(), user.ID, author.ID)
	if err != nil && !errors.Is(err, service.ErrSelfFollow) && !errors.Is(err, service.ErrAlreadyFollowing) {
		h.serverError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/profile/"+author.Username+"/")
}

// ProfileUnfollow stops following the named author; unfollowing someone
// not followed is a silent no-op.
func (h *Handler) ProfileUnfollow(c *gin.Context) {
	user := currentUser(c)

	author, ok := h.lookupAuthor(c)
	if !ok {
		return
	}

	err := h.social.Unfollow(c.Request.Context(), user.ID, author.ID)
	if err != nil && !errors.Is(err, service.ErrNotFollowing) {
		h.serverError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/profile/"+author.Username+"/")
}

// lookupAuthor fetches the user named in the :username param, rendering a
// 404 and returning ok=false when it does not exist.
func (h *Handler) lookupAuthor(c *gin.Context) (*domain.User, bool) {
	author, err := h.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			h.notFound(c)
		} else {
			h.serverError(c, err)
		}
		return nil, false
	}
	return author, true
}
