// Package service holds the application logic between the HTTP handlers
// and the repositories.
package service

import (
	"context"
	"errors"

	"github.com/teamofroman/hw05-final/internal/domain"
	"github.com/teamofroman/hw05-final/internal/pagination"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionInvalid     = errors.New("session invalid")
	ErrTokenInvalid       = errors.New("reset token invalid")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")

	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following")
	ErrNotFollowing     = errors.New("not following")

	ErrGroupUnknown = errors.New("group does not exist")
)

// PostPage is one page of a post listing plus its pagination metadata.
type PostPage struct {
	Posts []domain.Post
	Page  pagination.Page
}

// RegisterInput carries a validated signup submission.
type RegisterInput struct {
	Username    string
	DisplayName string
	Email       string
	Password    string
}

// AuthService manages accounts and login sessions.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.Session, error)
	Logout(ctx context.Context, sessionID string) error
	UserFromSession(ctx context.Context, sessionID string) (*domain.User, error)
	ChangePassword(ctx context.Context, userID uint, current, updated string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

// BlogService composes post, group and comment queries for the pages.
type BlogService interface {
	IndexPage(ctx context.Context, page int) (*PostPage, error)
	GroupPage(ctx context.Context, slug string, page int) (*domain.Group, *PostPage, error)
	AuthorPage(ctx context.Context, authorID uint, page int) (*PostPage, error)
	PostByID(ctx context.Context, id uint) (*domain.Post, error)
	CommentsFor(ctx context.Context, postID uint) ([]domain.Comment, error)
	Groups(ctx context.Context) ([]domain.Group, error)
	GroupByID(ctx context.Context, id uint) (*domain.Group, error)

	CreatePost(ctx context.Context, authorID uint, text string, groupID *uint, image string) (*domain.Post, error)
	UpdatePost(ctx context.Context, post *domain.Post, text string, groupID *uint, image string) error
	AddComment(ctx context.Context, postID, authorID uint, text string) (*domain.Comment, error)
}

// SocialService manages the follow graph and the personalized feed.
type SocialService interface {
	Follow(ctx context.Context, userID, authorID uint) error
	Unfollow(ctx context.Context, userID, authorID uint) error
	IsFollowing(ctx context.Context, userID, authorID uint) (bool, error)
	FeedPage(ctx context.Context, userID uint, page int) (*PostPage, error)
}
