package localstore

import (
	"context"
	"fmt"

	"civiclink/pkg/api/repository"
	"civiclink/pkg/models"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("error creating user, %w", storeError(err))
	}
	return nil
}

func (s *Store) User(ctx context.Context, id string) (*models.User, error) {
	return first[models.User](ctx, s.db, "id = ?", id)
}

func (s *Store) UsersByID(ctx context.Context, ids []string) ([]*models.User, error) {
	users := make([]*models.User, 0)
	ids = repository.UniqueIDs(ids)
	if len(ids) == 0 {
		return users, nil
	}

	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("error getting users, %w", err)
	}
	return users, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return first[models.User](ctx, s.db, "email = ?", models.NormalizeEmail(email))
}

func (s *Store) UpdateUser(ctx context.Context, id string, mutate func(*models.User) error) (*models.User, error) {
	return transact(ctx, s, id, mutate)
}
