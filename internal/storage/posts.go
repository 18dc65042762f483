package storage

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"yatube/internal/model"
)

// PostQuery is an ordered, not yet executed collection of posts, newest
// first. Count and Fetch let a paginator read one page at a time.
type PostQuery struct {
	db *gorm.DB
}

func (q PostQuery) scope() *gorm.DB {
	return q.db.Session(&gorm.Session{}).Model(&model.Post{})
}

// Count returns the size of the whole collection.
func (q PostQuery) Count() (int64, error) {
	var n int64
	err := q.scope().Count(&n).Error
	return n, errors.Wrap(err, "failed to count posts")
}

// Fetch returns up to limit posts starting at offset, with author and group
// loaded.
func (q PostQuery) Fetch(offset, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := q.scope().
		Preload("Author").
		Preload("Group").
		Order("pub_date DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, errors.Wrap(err, "failed to fetch posts")
}

// AllPosts is the site-wide collection shown on the index page.
func (s *Storage) AllPosts(ctx context.Context) PostQuery {
	return PostQuery{db: s.db.WithContext(ctx)}
}

func (s *Storage) GroupPosts(ctx context.Context, groupID uint) PostQuery {
	return PostQuery{db: s.db.WithContext(ctx).Where("group_id = ?", groupID)}
}

func (s *Storage) AuthorPosts(ctx context.Context, authorID uint) PostQuery {
	return PostQuery{db: s.db.WithContext(ctx).Where("author_id = ?", authorID)}
}

// FollowFeed holds the posts of every author the user follows.
func (s *Storage) FollowFeed(ctx context.Context, userID uint) PostQuery {
	followed := s.db.Model(&model.Follow{}).Select("author_id").Where("user_id = ?", userID)
	return PostQuery{db: s.db.WithContext(ctx).Where("author_id IN (?)", followed)}
}

// CreatePost inserts the post; PubDate is assigned by the store.
func (s *Storage) CreatePost(ctx context.Context, post *model.Post) error {
	err := s.db.WithContext(ctx).Omit("Author", "Group", "Comments").Create(post).Error
	return errors.Wrap(err, "failed to create post")
}

// UpdatePost writes the editable fields (text, group, image) of an existing
// post. Author and publication date never change.
func (s *Storage) UpdatePost(ctx context.Context, post *model.Post) error {
	res := s.db.WithContext(ctx).
		Model(&model.Post{ID: post.ID}).
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to update post")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// PostByAuthor looks a post up by id and checks it was written by username.
func (s *Storage) PostByAuthor(ctx context.Context, username string, id uint) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		Joins("JOIN users ON users.id = posts.author_id").
		Where("posts.id = ? AND users.username = ?", id, username).
		First(&post).Error
	if err != nil {
		return nil, notFound(err, "failed to fetch post")
	}
	return &post, nil
}

func (s *Storage) DeletePost(ctx context.Context, id uint) error {
	return errors.Wrap(s.db.WithContext(ctx).Delete(&model.Post{}, id).Error, "failed to delete post")
}

// CountPosts returns the number of posts in the whole store.
func (s *Storage) CountPosts(ctx context.Context) (int64, error) {
	return s.AllPosts(ctx).Count()
}
