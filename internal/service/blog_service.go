package service

import (
	"context"
	"errors"

	"github.com/teamofroman/hw05-final/internal/domain"
	"github.com/teamofroman/hw05-final/internal/pagination"
	"github.com/teamofroman/hw05-final/internal/repository"
	pkglog "github.com/teamofroman/hw05-final/pkg/log"
)

// blogService implements BlogService.
type blogService struct {
	posts    repository.PostRepository
	groups   repository.GroupRepository
	comments repository.CommentRepository
	pageSize int
}

func NewBlogService(
	posts repository.PostRepository,
	groups repository.GroupRepository,
	comments repository.CommentRepository,
	pageSize int,
) BlogService {
	return &blogService{
		posts:    posts,
		groups:   groups,
		comments: comments,
		pageSize: pageSize,
	}
}

func (s *blogService) IndexPage(ctx context.Context, page int) (*PostPage, error) {
	total, err := s.posts.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	p := pagination.New(int(total), page, s.pageSize)
	posts, err := s.posts.ListAll(ctx, p.Offset, p.Limit)
	if err != nil {
		return nil, err
	}

	return &PostPage{Posts: posts, Page: p}, nil
}

func (s *blogService) GroupPage(ctx context.Context, slug string, page int) (*domain.Group, *PostPage, error) {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}

	total, err := s.posts.CountByGroup(ctx, group.ID)
	if err != nil {
		return nil, nil, err
	}

	p := pagination.New(int(total), page, s.pageSize)
	posts, err := s.posts.ListByGroup(ctx, group.ID, p.Offset, p.Limit)
	if err != nil {
		return nil, nil, err
	}

	return group, &PostPage{Posts: posts, Page: p}, nil
}

func (s *blogService) AuthorPage(ctx context.Context, authorID uint, page int) (*PostPage, error) {
	total, err := s.posts.CountByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	p := pagination.New(int(total), page, s.pageSize)
	posts, err := s.posts.ListByAuthor(ctx, authorID, p.Offset, p.Limit)
	if err != nil {
		return nil, err
	}

	return &PostPage{Posts: posts, Page: p}, nil
}

func (s *blogService) PostByID(ctx context.Context, id uint) (*domain.Post, error) {
	return s.posts.GetByID(ctx, id)
}

func (s *blogService) CommentsFor(ctx context.Context, postID uint) ([]domain.Comment, error) {
	return s.comments.ListByPost(ctx, postID)
}

func (s *blogService) Groups(ctx context.Context) ([]domain.Group, error) {
	return s.groups.List(ctx)
}

func (s *blogService) GroupByID(ctx context.Context, id uint) (*domain.Group, error) {
	return s.groups.GetByID(ctx, id)
}

// CreatePost persists a new post for authorID. The group reference, when
// present, must exist; the publication timestamp is assigned by the store
// at insert and never touched again.
func (s *blogService) CreatePost(ctx context.Context, authorID uint, text string, groupID *uint, image string) (*domain.Post, error) {
	if err := s.checkGroup(ctx, groupID); err != nil {
		return nil, err
	}

	post := &domain.Post{
		Text:     text,
		AuthorID: authorID,
		GroupID:  groupID,
		Image:    image,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	pkglog.Ctx(ctx).Info().
		Uint("post_id", post.ID).
		Uint("author_id", authorID).
		Str("preview", post.Preview()).
		Msg("post created")

	return post, nil
}

// UpdatePost rewrites the submitted fields of an existing post in place.
// Author and publication date are untouchable. An empty image keeps the
// existing one.
func (s *blogService) UpdatePost(ctx context.Context, post *domain.Post, text string, groupID *uint, image string) error {
	if err := s.checkGroup(ctx, groupID); err != nil {
		return err
	}

	post.Text = text
	post.GroupID = groupID
	if image != "" {
		post.Image = image
	}

	return s.posts.Update(ctx, post)
}

func (s *blogService) AddComment(ctx context.Context, postID, authorID uint, text string) (*domain.Comment, error) {
	comment := &domain.Comment{
		Text:     text,
		PostID:   postID,
		AuthorID: authorID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *blogService) checkGroup(ctx context.Context, groupID *uint) error {
	if groupID == nil {
		return nil
	}
	if _, err := s.groups.GetByID(ctx, *groupID); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return ErrGroupUnknown
		}
		return err
	}
	return nil
}

var _ BlogService = (*blogService)(nil)
