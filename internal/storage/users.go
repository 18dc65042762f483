package storage

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"yatube/internal/model"
)

// CreateUser inserts a new account. A taken username yields ErrAlreadyExists.
func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	err := s.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	return errors.Wrap(err, "failed to create user")
}

func (s *Storage) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, notFound(err, "failed to fetch user")
	}
	return &user, nil
}

func (s *Storage) UserByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, notFound(err, "failed to fetch user")
	}
	return &user, nil
}

// DeleteUser removes the account together with its posts, comments and
// follow edges.
func (s *Storage) DeleteUser(ctx context.Context, id uint) error {
	return errors.Wrap(s.db.WithContext(ctx).Delete(&model.User{}, id).Error, "failed to delete user")
}
