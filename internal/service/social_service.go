package service

import (
	"context"
	"errors"

	"github.com/teamofroman/hw05-final/internal/pagination"
	"github.com/teamofroman/hw05-final/internal/repository"
	pkglog "github.com/teamofroman/hw05-final/pkg/log"
)

// socialService implements SocialService.
type socialService struct {
	follows  repository.FollowRepository
	posts    repository.PostRepository
	pageSize int
}

func NewSocialService(
	follows repository.FollowRepository,
	posts repository.PostRepository,
	pageSize int,
) SocialService {
	return &socialService{
		follows:  follows,
		posts:    posts,
		pageSize: pageSize,
	}
}

// Follow creates a follow relationship from userID to authorID.
// Self-follow and duplicate follow come back as typed errors; the
// handlers treat both as silent no-ops.
func (s *socialService) Follow(ctx context.Context, userID, authorID uint) error {
	if userID == authorID {
		return ErrSelfFollow
	}

	if err := s.follows.Follow(ctx, userID, authorID); err != nil {
		if errors.Is(err, repository.ErrAlreadyFollowing) {
			return ErrAlreadyFollowing
		}
		pkglog.Ctx(ctx).Error().Err(err).
			Uint("user_id", userID).
			Uint("author_id", authorID).
			Msg("failed to follow author")
		return err
	}

	return nil
}

// Unfollow removes the follow relationship from userID to authorID.
func (s *socialService) Unfollow(ctx context.Context, userID, authorID uint) error {
	if err := s.follows.Unfollow(ctx, userID, authorID); err != nil {
		if errors.Is(err, repository.ErrFollowNotFound) {
			return ErrNotFollowing
		}
		pkglog.Ctx(ctx).Error().Err(err).
			Uint("user_id", userID).
			Uint("author_id", authorID).
			Msg("failed to unfollow author")
		return err
	}

	return nil
}

func (s *socialService) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	return s.follows.IsFollowing(ctx, userID, authorID)
}

// FeedPage aggregates posts from every author userID follows, newest
// first. Each post has exactly one author so no deduplication is needed.
func (s *socialService) FeedPage(ctx context.Context, userID uint, page int) (*PostPage, error) {
	authorIDs, err := s.follows.FollowedAuthorIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	total, err := s.posts.CountByAuthors(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	p := pagination.New(int(total), page, s.pageSize)
	posts, err := s.posts.ListByAuthors(ctx, authorIDs, p.Offset, p.Limit)
	if err != nil {
		return nil, err
	}

	return &PostPage{Posts: posts, Page: p}, nil
}

var _ SocialService = (*socialService)(nil)
