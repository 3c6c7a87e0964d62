package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/teamofroman/hw05-final/internal/domain"
	"github.com/teamofroman/hw05-final/internal/forms"
	"github.com/teamofroman/hw05-final/internal/media"
	"github.com/teamofroman/hw05-final/internal/pagination"
	"github.com/teamofroman/hw05-final/internal/repository"
	"github.com/teamofroman/hw05-final/internal/service"
	pkglog "github.com/teamofroman/hw05-final/pkg/log"
)

// Index lists all posts, newest first, paginated. Sits behind the page
// cache middleware.
func (h *Handler) Index(c *gin.Context) {
	page, err := h.blog.IndexPage(c.Request.Context(), pagination.ParsePageParam(c.Query("page")))
	if err != nil {
		h.serverError(c, err)
		return
	}

	h.render(c, http.StatusOK, "index", gin.H{
		"PageObj": page,
	})
}

// GroupPosts lists the posts of one group; unknown slugs are 404.
func (h *Handler) GroupPosts(c *gin.Context) {
	group, page, err := h.blog.GroupPage(
		c.Request.Context(),
		c.Param("slug"),
		pagination.ParsePageParam(c.Query("page")),
	)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c, err)
		return
	}

	h.render(c, http.StatusOK, "group_list", gin.H{
		"Group":   group,
		"PageObj": page,
	})
}

// Profile lists one author's posts and reports whether the viewer
// follows them.
func (h *Handler) Profile(c *gin.Context) {
	ctx := c.Request.Context()

	author, ok := h.lookupAuthor(c)
	if !ok {
		return
	}

	page, err := h.blog.AuthorPage(ctx, author.ID, pagination.ParsePageParam(c.Query("page")))
	if err != nil {
		h.serverError(c, err)
		return
	}

	isFollowing := false
	if viewer := currentUser(c); viewer != nil {
		isFollowing, err = h.social.IsFollowing(ctx, viewer.ID, author.ID)
		if err != nil {
			h.serverError(c, err)
			return
		}
	}

	h.render(c, http.StatusOK, "profile", gin.H{
		"Author":      author,
		"PageObj":     page,
		"IsFollowing": isFollowing,
	})
}

// PostDetail shows one post, its comments newest first, and an empty
// comment form for authenticated viewers.
func (h *Handler) PostDetail(c *gin.Context) {
	post, ok := h.lookupPost(c)
	if !ok {
		return
	}

	comments, err := h.blog.CommentsFor(c.Request.Context(), post.ID)
	if err != nil {
		h.serverError(c, err)
		return
	}

	h.render(c, http.StatusOK, "post_detail", gin.H{
		"Post":     post,
		"Comments": comments,
		"Form":     &forms.CommentForm{},
	})
}

// PostCreate renders the empty post form on GET and creates a post on a
// valid POST, redirecting to the author's profile.
func (h *Handler) PostCreate(c *gin.Context) {
	user := currentUser(c)

	if c.Request.Method == http.MethodGet {
		h.renderPostForm(c, &forms.PostForm{}, false, 0)
		return
	}

	form := &forms.PostForm{
		Text:    c.PostForm("text"),
		GroupID: c.PostForm("group"),
	}
	groupID, image := h.processPostForm(c, form)
	if !form.Valid() {
		h.renderPostForm(c, form, false, 0)
		return
	}

	_, err := h.blog.CreatePost(c.Request.Context(), user.ID, form.Text, groupID, image)
	if err != nil {
		if errors.Is(err, service.ErrGroupUnknown) {
			form.AddError("group", "Select a valid group.")
			h.renderPostForm(c, form, false, 0)
			return
		}
		h.serverError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/profile/"+user.Username+"/")
}

// PostEdit lets the author update a post in place. A viewer who is not
// the author is sent to the detail page without touching anything.
func (h *Handler) PostEdit(c *gin.Context) {
	user := currentUser(c)

	post, ok := h.lookupPost(c)
	if !ok {
		return
	}

	detailPath := fmt.Sprintf("/posts/%d/", post.ID)
	if post.AuthorID != user.ID {
		c.Redirect(http.StatusFound, detailPath)
		return
	}

	if c.Request.Method == http.MethodGet {
		form := &forms.PostForm{Text: post.Text}
		if post.GroupID != nil {
			form.GroupID = strconv.FormatUint(uint64(*post.GroupID), 10)
		}
		h.renderPostForm(c, form, true, post.ID)
		return
	}

	form := &forms.PostForm{
		Text:    c.PostForm("text"),
		GroupID: c.PostForm("group"),
	}
	groupID, image := h.processPostForm(c, form)
	if !form.Valid() {
		h.renderPostForm(c, form, true, post.ID)
		return
	}

	if err := h.blog.UpdatePost(c.Request.Context(), post, form.Text, groupID, image); err != nil {
		if errors.Is(err, service.ErrGroupUnknown) {
			form.AddError("group", "Select a valid group.")
			h.renderPostForm(c, form, true, post.ID)
			return
		}
		h.serverError(c, err)
		return
	}

	c.Redirect(http.StatusFound, detailPath)
}

// AddComment attaches a comment to a post. Validation failures drop the
// comment without surfacing an error; either way the viewer lands back
// on the detail page.
func (h *Handler) AddComment(c *gin.Context) {
	user := currentUser(c)

	post, ok := h.lookupPost(c)
	if !ok {
		return
	}

	form := &forms.CommentForm{Text: c.PostForm("text")}
	if form.Validate() {
		if _, err := h.blog.AddComment(c.Request.Context(), post.ID, user.ID, form.Text); err != nil {
			h.serverError(c, err)
			return
		}
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d/", post.ID))
}

// processPostForm runs field validation and the upload checks shared by
// create and edit. It returns the resolved group id and stored image
// name; any failure lands in the form's error map.
func (h *Handler) processPostForm(c *gin.Context, form *forms.PostForm) (*uint, string) {
	form.Validate()

	var groupID *uint
	if form.GroupID != "" {
		id, err := strconv.ParseUint(form.GroupID, 10, 32)
		if err != nil {
			form.AddError("group", "Select a valid group.")
		} else {
			gid := uint(id)
			groupID = &gid
		}
	}

	image := ""
	fh, err := c.FormFile("image")
	if err == nil && fh != nil {
		name, err := h.mediaStore.SaveImage(fh)
		if err != nil {
			if errors.Is(err, media.ErrNotImage) {
				form.AddError("image", "Upload a valid image.")
			} else {
				pkglog.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to store uploaded image")
				form.AddError("image", "Could not store the uploaded file.")
			}
		} else {
			image = name
		}
	}

	return groupID, image
}

func (h *Handler) renderPostForm(c *gin.Context, form *forms.PostForm, isEdit bool, postID uint) {
	groups, err := h.blog.Groups(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	h.render(c, http.StatusOK, "create_post", gin.H{
		"Form":   form,
		"Groups": groups,
		"IsEdit": isEdit,
		"PostID": postID,
	})
}

// lookupPost fetches the post named in the :id param, rendering a 404 and
// returning ok=false when it does not exist.
func (h *Handler) lookupPost(c *gin.Context) (*domain.Post, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		h.notFound(c)
		return nil, false
	}

	post, err := h.blog.PostByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			h.notFound(c)
		} else {
			h.serverError(c, err)
		}
		return nil, false
	}

	return post, true
}

func (h *Handler) serverError(c *gin.Context, err error) {
	pkglog.Ctx(c.Request.Context()).Error().Err(err).Msg("handler failure")
	c.String(http.StatusInternalServerError, "internal server error")
	c.Abort()
}
