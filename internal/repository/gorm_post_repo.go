package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/teamofroman/hw05-final/internal/domain"
)

// postOrder is the default listing order everywhere posts appear.
const postOrder = "pub_date DESC, id DESC"

// GormPostRepository implements PostRepository using GORM.
type GormPostRepository struct {
	db *gorm.DB
}

func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

func (r *GormPostRepository) Create(ctx context.Context, post *domain.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *GormPostRepository) GetByID(ctx context.Context, id uint) (*domain.Post, error) {
	var post domain.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Update persists the mutable fields of an existing post. PubDate, author
// and id never change after creation. Select covers zero values so a
// cleared group or image is written through.
func (r *GormPostRepository) Update(ctx context.Context, post *domain.Post) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Post{}).
		Where("id = ?", post.ID).
		Select("text", "group_id", "image").
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *GormPostRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Post{}).Count(&count).Error
	return count, err
}

func (r *GormPostRepository) ListAll(ctx context.Context, offset, limit int) ([]domain.Post, error) {
	return r.list(ctx, r.db.WithContext(ctx), offset, limit)
}

func (r *GormPostRepository) CountByGroup(ctx context.Context, groupID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Post{}).
		Where("group_id = ?", groupID).
		Count(&count).Error
	return count, err
}

func (r *GormPostRepository) ListByGroup(ctx context.Context, groupID uint, offset, limit int) ([]domain.Post, error) {
	tx := r.db.WithContext(ctx).Where("group_id = ?", groupID)
	return r.list(ctx, tx, offset, limit)
}

func (r *GormPostRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Post{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

func (r *GormPostRepository) ListByAuthor(ctx context.Context, authorID uint, offset, limit int) ([]domain.Post, error) {
	tx := r.db.WithContext(ctx).Where("author_id = ?", authorID)
	return r.list(ctx, tx, offset, limit)
}

func (r *GormPostRepository) CountByAuthors(ctx context.Context, authorIDs []uint) (int64, error) {
	if len(authorIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Post{}).
		Where("author_id IN ?", authorIDs).
		Count(&count).Error
	return count, err
}

func (r *GormPostRepository) ListByAuthors(ctx context.Context, authorIDs []uint, offset, limit int) ([]domain.Post, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Where("author_id IN ?", authorIDs)
	return r.list(ctx, tx, offset, limit)
}

func (r *GormPostRepository) list(_ context.Context, tx *gorm.DB, offset, limit int) ([]domain.Post, error) {
	var posts []domain.Post
	err := tx.
		Preload("Author").
		Preload("Group").
		Order(postOrder).
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

var _ PostRepository = (*GormPostRepository)(nil)
