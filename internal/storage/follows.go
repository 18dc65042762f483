package storage

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"yatube/internal/model"
)

func (s *Storage) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&n).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check follow")
	}
	return n > 0, nil
}

// Follow creates the user→author edge and reports whether a row was
// inserted. An existing edge, found up front or rejected by the unique index
// when two requests race, is not an error.
func (s *Storage) Follow(ctx context.Context, userID, authorID uint) (bool, error) {
	exists, err := s.IsFollowing(ctx, userID, authorID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	err = s.db.WithContext(ctx).Omit("User", "Author").Create(&model.Follow{UserID: userID, AuthorID: authorID}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "failed to create follow")
	}
	return true, nil
}

// Unfollow removes the user→author edge and reports whether one existed.
func (s *Storage) Unfollow(ctx context.Context, userID, authorID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&model.Follow{})
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "failed to delete follow")
	}
	return res.RowsAffected > 0, nil
}

// FollowerCount is the number of users following authorID.
func (s *Storage) FollowerCount(ctx context.Context, authorID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Follow{}).Where("author_id = ?", authorID).Count(&n).Error
	return n, errors.Wrap(err, "failed to count followers")
}

// FollowingCount is the number of authors userID follows.
func (s *Storage) FollowingCount(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Follow{}).Where("user_id = ?", userID).Count(&n).Error
	return n, errors.Wrap(err, "failed to count following")
}

func (s *Storage) CountFollows(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Follow{}).Count(&n).Error
	return n, errors.Wrap(err, "failed to count follows")
}
