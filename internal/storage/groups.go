package storage

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"yatube/internal/model"
)

// CreateGroup inserts a group. A taken slug yields ErrAlreadyExists.
func (s *Storage) CreateGroup(ctx context.Context, group *model.Group) error {
	err := s.db.WithContext(ctx).Create(group).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	return errors.Wrap(err, "failed to create group")
}

func (s *Storage) GroupBySlug(ctx context.Context, slug string) (*model.Group, error) {
	var group model.Group
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error
	if err != nil {
		return nil, notFound(err, "failed to fetch group")
	}
	return &group, nil
}

func (s *Storage) GroupByID(ctx context.Context, id uint) (*model.Group, error) {
	var group model.Group
	err := s.db.WithContext(ctx).First(&group, id).Error
	if err != nil {
		return nil, notFound(err, "failed to fetch group")
	}
	return &group, nil
}

// Groups lists up to limit groups ordered by title, last first.
func (s *Storage) Groups(ctx context.Context, limit int) ([]model.Group, error) {
	var groups []model.Group
	err := s.db.WithContext(ctx).Order("title DESC").Limit(limit).Find(&groups).Error
	return groups, errors.Wrap(err, "failed to list groups")
}

// DeleteGroup removes the group. Its posts stay, without a group.
func (s *Storage) DeleteGroup(ctx context.Context, slug string) error {
	res := s.db.WithContext(ctx).Where("slug = ?", slug).Delete(&model.Group{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to delete group")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
