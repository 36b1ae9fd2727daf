package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kalasetu/artist-tracker/internal/common"
	"github.com/kalasetu/artist-tracker/internal/entity"
)

// UserRepository is the interface the auth handlers depend on.
type UserRepository interface {
	CreateUser(ctx context.Context, u *entity.User) error
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	GetUserByUsernameOrEmail(ctx context.Context, identifier string) (*entity.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

func (s *Store) CreateUser(ctx context.Context, u *entity.User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return common.NewAppError("USER_EXISTS", "username or email already registered", common.ErrConflict)
		}
		return common.NewAppError("DB_ERROR", "create user", err)
	}
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	var u entity.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewAppError("USER_NOT_FOUND", "user not found", common.ErrNotFound)
		}
		return nil, common.NewAppError("DB_ERROR", "get user", err)
	}
	return &u, nil
}

func (s *Store) GetUserByUsernameOrEmail(ctx context.Context, identifier string) (*entity.User, error) {
	var u entity.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewAppError("USER_NOT_FOUND", "user not found", common.ErrNotFound)
		}
		return nil, common.NewAppError("DB_ERROR", "get user", err)
	}
	return &u, nil
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entity.User{}).
		Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entity.User{}).
		Where("email = ?", email).Count(&count).Error
	return count > 0, err
}
