package storage

import (
	"context"

	"github.com/pkg/errors"

	"yatube/internal/model"
)

func (s *Storage) CreateComment(ctx context.Context, comment *model.Comment) error {
	err := s.db.WithContext(ctx).Omit("Author").Create(comment).Error
	return errors.Wrap(err, "failed to create comment")
}

// Comments lists the comments of a post in the order they were written.
func (s *Storage) Comments(ctx context.Context, postID uint) ([]model.Comment, error) {
	var comments []model.Comment
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created ASC").
		Order("id ASC").
		Find(&comments).Error
	return comments, errors.Wrap(err, "failed to fetch comments")
}

func (s *Storage) CountComments(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Comment{}).Count(&n).Error
	return n, errors.Wrap(err, "failed to count comments")
}
