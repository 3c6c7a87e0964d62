// Package repository defines the persistence interfaces and their GORM
// implementations. Handlers and services only ever see these interfaces.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/teamofroman/hw05-final/internal/domain"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameExists   = errors.New("username already exists")
	ErrEmailExists      = errors.New("email already exists")
	ErrGroupNotFound    = errors.New("group not found")
	ErrPostNotFound     = errors.New("post not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrTokenNotFound    = errors.New("token not found")
	ErrAlreadyFollowing = errors.New("already following")
	ErrFollowNotFound   = errors.New("follow not found")
)

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
}

// GroupRepository persists communities. Lifecycle is administrative, so
// there is no update/delete surface here.
type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) error
	GetBySlug(ctx context.Context, slug string) (*domain.Group, error)
	GetByID(ctx context.Context, id uint) (*domain.Group, error)
	List(ctx context.Context) ([]domain.Group, error)
}

// PostRepository persists publications. All listings come back newest
// first (pub_date desc, id desc as tiebreak).
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uint) (*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error

	CountAll(ctx context.Context) (int64, error)
	ListAll(ctx context.Context, offset, limit int) ([]domain.Post, error)
	CountByGroup(ctx context.Context, groupID uint) (int64, error)
	ListByGroup(ctx context.Context, groupID uint, offset, limit int) ([]domain.Post, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	ListByAuthor(ctx context.Context, authorID uint, offset, limit int) ([]domain.Post, error)
	CountByAuthors(ctx context.Context, authorIDs []uint) (int64, error)
	ListByAuthors(ctx context.Context, authorIDs []uint, offset, limit int) ([]domain.Post, error)
}

// CommentRepository persists replies. Comments are immutable and are
// removed with their post by the FK cascade.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByPost(ctx context.Context, postID uint) ([]domain.Comment, error)
}

// FollowRepository persists the user→author graph.
type FollowRepository interface {
	Follow(ctx context.Context, userID, authorID uint) error
	Unfollow(ctx context.Context, userID, authorID uint) error
	IsFollowing(ctx context.Context, userID, authorID uint) (bool, error)
	FollowedAuthorIDs(ctx context.Context, userID uint) ([]uint, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

// SessionRepository persists login sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Revoke(ctx context.Context, id string, at time.Time) error
}

// ResetTokenRepository persists single-use password reset tokens.
type ResetTokenRepository interface {
	Create(ctx context.Context, token *domain.PasswordResetToken) error
	Get(ctx context.Context, token string) (*domain.PasswordResetToken, error)
	MarkUsed(ctx context.Context, token string, at time.Time) error
}
