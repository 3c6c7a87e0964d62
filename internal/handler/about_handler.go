package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AboutAuthor renders the static page about the site's author.
func (h *Handler) AboutAuthor(c *gin.Context) {
	h.render(c, http.StatusOK, "about_author", nil)
}

// AboutTech renders the static page about the technology stack.
func (h *Handler) AboutTech(c *gin.Context) {
	h.render(c, http.StatusOK, "about_tech", nil)
}
