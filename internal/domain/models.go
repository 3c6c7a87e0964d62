package domain

import (
	"time"
)

// previewLength bounds the post/comment preview used in logs and titles.
const previewLength = 15

// User is an authenticated account. Posts, comments and follows all hang
// off of it.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"type:varchar(150);uniqueIndex;not null"`
	DisplayName  string    `gorm:"type:varchar(150)"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (User) TableName() string { return "users" }

// Name returns the display name, falling back to the username.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Group is a named community that posts may optionally belong to.
// Group lifecycle is administrative only.
type Group struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"type:varchar(200);not null"`
	Slug        string `gorm:"type:varchar(200);uniqueIndex;not null"`
	Description string `gorm:"type:text"`
}

func (Group) TableName() string { return "groups" }

// Post is a single authored text publication, optionally grouped and
// illustrated. PubDate is set once at creation and never updated.
type Post struct {
	ID       uint      `gorm:"primaryKey"`
	Text     string    `gorm:"type:text;not null"`
	PubDate  time.Time `gorm:"autoCreateTime;index"`
	AuthorID uint      `gorm:"not null;index"`
	Author   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	GroupID  *uint     `gorm:"index"`
	Group    *Group    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Image    string    `gorm:"type:varchar(255)"` // stored media filename, optional
}

func (Post) TableName() string { return "posts" }

// Preview returns a shortened form of the post text.
func (p *Post) Preview() string {
	return preview(p.Text)
}

// Comment is a text reply attached to exactly one post and one author.
// Comments are immutable after creation and die with their post.
type Comment struct {
	ID       uint      `gorm:"primaryKey"`
	Text     string    `gorm:"type:text;not null"`
	Created  time.Time `gorm:"autoCreateTime"`
	PostID   uint      `gorm:"not null;index"`
	Post     Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	AuthorID uint      `gorm:"not null"`
	Author   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Comment) TableName() string { return "comments" }

// Follow is a directed user→author relationship. The composite unique
// index keeps one row per pair; self-follows are rejected above this
// layer, not by the schema.
type Follow struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;uniqueIndex:idx_follow_user_author;not null"`
	AuthorID  uint      `gorm:"index;uniqueIndex:idx_follow_user_author;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Follow) TableName() string { return "follows" }

// Session is a server-side login session referenced by the cookie value.
type Session struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	UserID    uint   `gorm:"not null;index"`
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Session) TableName() string { return "sessions" }

// PasswordResetToken is a single-use token mailed to a user who asked for
// a password reset.
type PasswordResetToken struct {
	Token     string `gorm:"type:varchar(36);primaryKey"`
	UserID    uint   `gorm:"not null;index"`
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (PasswordResetToken) TableName() string { return "password_reset_tokens" }

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength]) + "..."
}
