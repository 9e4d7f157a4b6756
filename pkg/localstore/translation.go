package localstore

import (
	"context"
	"fmt"

	"civiclink/pkg/api/repository"
	"civiclink/pkg/models"

	"gorm.io/gorm"
)

const translationOrder = "usage_count DESC, created_at DESC"

func (s *Store) CreateTranslation(ctx context.Context, translation *models.Translation) error {
	if err := s.db.WithContext(ctx).Create(translation).Error; err != nil {
		return fmt.Errorf("error creating translation, %w", storeError(err))
	}
	return nil
}

func (s *Store) Translation(ctx context.Context, id string) (*models.Translation, error) {
	return first[models.Translation](ctx, s.db, "id = ?", id)
}

func (s *Store) TranslationsByID(ctx context.Context, ids []string) ([]*models.Translation, error) {
	translations := make([]*models.Translation, 0)
	ids = repository.UniqueIDs(ids)
	if len(ids) == 0 {
		return translations, nil
	}

	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&translations).Error; err != nil {
		return nil, fmt.Errorf("error getting translations, %w", err)
	}
	return translations, nil
}

func (s *Store) QueryTranslations(ctx context.Context, filter repository.TranslationFilter, page repository.Page) ([]*models.Translation, int, error) {
	translations, total, err := search(s, s.translationQuery(ctx, filter), translationOrder, filter.Search, page, func(t *models.Translation) []string {
		return []string{t.English, t.Translated, t.Explanation}
	}, "english", "translated", "explanation")
	if err != nil {
		return nil, 0, fmt.Errorf("error querying translations, %w", err)
	}

	return translations, total, nil
}

func (s *Store) AllTranslations(ctx context.Context) ([]*models.Translation, error) {
	translations := make([]*models.Translation, 0)
	if err := s.db.WithContext(ctx).Order(translationOrder).Find(&translations).Error; err != nil {
		return nil, fmt.Errorf("error listing translations, %w", err)
	}
	return translations, nil
}

func (s *Store) UpdateTranslation(ctx context.Context, id string, mutate func(*models.Translation) error) (*models.Translation, error) {
	return transact(ctx, s, id, mutate)
}

func (s *Store) IncrementTranslationUsage(ctx context.Context, id string) error {
	return increment[models.Translation](ctx, s.db, id, "usage_count")
}

func (s *Store) translationQuery(ctx context.Context, filter repository.TranslationFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Translation{})
	if len(filter.Language) > 0 {
		q = q.Where("language = ?", string(filter.Language))
	}
	if len(filter.Category) > 0 {
		q = q.Where("category = ?", string(filter.Category))
	}
	if filter.Verified != nil {
		q = q.Where("verified = ?", *filter.Verified)
	}
	return q.Session(&gorm.Session{})
}
