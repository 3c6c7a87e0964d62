package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/teamofroman/hw05-final/internal/forms"
	"github.com/teamofroman/hw05-final/internal/service"
)

// Signup registers a new account and sends it to the login page.
func (h *Handler) Signup(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		h.render(c, http.StatusOK, "signup", gin.H{"Form": &forms.SignupForm{}})
		return
	}

	form := &forms.SignupForm{
		Username:    c.PostForm("username"),
		DisplayName: c.PostForm("display_name"),
		Email:       c.PostForm("email"),
		Password:    c.PostForm("password"),
		Confirm:     c.PostForm("confirm"),
	}
	if !form.Validate() {
		h.render(c, http.StatusOK, "signup", gin.H{"Form": form})
		return
	}

	_, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Username:    form.Username,
		DisplayName: form.DisplayName,
		Email:       form.Email,
		Password:    form.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			form.AddError("username", "This username is already taken.")
		case errors.Is(err, service.ErrEmailTaken):
			form.AddError("email", "This email is already registered.")
		default:
			h.serverError(c, err)
			return
		}
		h.render(c, http.StatusOK, "signup", gin.H{"Form": form})
		return
	}

	c.Redirect(http.StatusFound, loginPath)
}

// Login authenticates by username and password, sets the session cookie
// and honors a same-site ?next= target.
func (h *Handler) Login(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		h.render(c, http.StatusOK, "login", gin.H{
			"Form": &forms.LoginForm{},
			"Next": c.Query("next"),
		})
		return
	}

	next := c.PostForm("next")
	form := &forms.LoginForm{
		Username: c.PostForm("username"),
		Password: c.PostForm("password"),
	}
	if !form.Validate() {
		h.render(c, http.StatusOK, "login", gin.H{"Form": form, "Next": next})
		return
	}

	session, err := h.auth.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			form.AddError("password", "Invalid username or password.")
			h.render(c, http.StatusOK, "login", gin.H{"Form": form, "Next": next})
			return
		}
		h.serverError(c, err)
		return
	}

	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.SetCookie(h.cookieName, session.ID, maxAge, "/", "", false, true)

	c.Redirect(http.StatusFound, safeNext(next))
}

// Logout revokes the session and clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	if sid, err := c.Cookie(h.cookieName); err == nil && sid != "" {
		if err := h.auth.Logout(c.Request.Context(), sid); err != nil {
			h.serverError(c, err)
			return
		}
		c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	}
	c.Redirect(http.StatusFound, "/")
}

// PasswordChange lets an authenticated user rotate their password after
// confirming the current one.
func (h *Handler) PasswordChange(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		h.render(c, http.StatusOK, "password_change", gin.H{"Form": &forms.PasswordChangeForm{}})
		return
	}

	form := &forms.PasswordChangeForm{
		Current: c.PostForm("current"),
		New:     c.PostForm("new"),
		Confirm: c.PostForm("confirm"),
	}
	if !form.Validate() {
		h.render(c, http.StatusOK, "password_change", gin.H{"Form": form})
		return
	}

	user := currentUser(c)
	if err := h.auth.ChangePassword(c.Request.Context(), user.ID, form.Current, form.New); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			form.AddError("current", "Current password is incorrect.")
			h.render(c, http.StatusOK, "password_change", gin.H{"Form": form})
			return
		}
		h.serverError(c, err)
		return
	}

	h.render(c, http.StatusOK, "password_change_done", nil)
}

// PasswordReset asks for an email and always reports success, so the
// form cannot be used to probe which emails have accounts.
func (h *Handler) PasswordReset(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		h.render(c, http.StatusOK, "password_reset", gin.H{"Form": &forms.PasswordResetForm{}})
		return
	}

	form := &forms.PasswordResetForm{Email: c.PostForm("email")}
	if !form.Validate() {
		h.render(c, http.StatusOK, "password_reset", gin.H{"Form": form})
		return
	}

	if err := h.auth.RequestPasswordReset(c.Request.Context(), form.Email); err != nil {
		h.serverError(c, err)
		return
	}

	h.render(c, http.StatusOK, "password_reset_done", nil)
}

// PasswordResetConfirm consumes a reset token and sets the new password.
func (h *Handler) PasswordResetConfirm(c *gin.Context) {
	token := c.Param("token")

	if c.Request.Method == http.MethodGet {
		h.render(c, http.StatusOK, "password_reset_confirm", gin.H{
			"Form":  &forms.NewPasswordForm{},
			"Token": token,
		})
		return
	}

	form := &forms.NewPasswordForm{
		Password: c.PostForm("password"),
		Confirm:  c.PostForm("confirm"),
	}
	if !form.Validate() {
		h.render(c, http.StatusOK, "password_reset_confirm", gin.H{"Form": form, "Token": token})
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), token, form.Password); err != nil {
		if errors.Is(err, service.ErrTokenInvalid) {
			h.render(c, http.StatusOK, "password_reset_confirm", gin.H{
				"Form":    form,
				"Token":   token,
				"Invalid": true,
			})
			return
		}
		h.serverError(c, err)
		return
	}

	c.Redirect(http.StatusFound, loginPath)
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/"
}
