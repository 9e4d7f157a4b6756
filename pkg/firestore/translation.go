package firestore

import (
	"context"
	"fmt"

	"civiclink/pkg/api/repository"
	"civiclink/pkg/models"

	"cloud.google.com/go/firestore"
)

func translationPath(id string) string {
	return fmt.Sprintf("%s/%s", pathTranslations, id)
}

func (fs *Firestore) CreateTranslation(ctx context.Context, translation *models.Translation) error {
	return create(ctx, fs.client, translationPath(translation.ID), translation)
}

func (fs *Firestore) Translation(ctx context.Context, id string) (*models.Translation, error) {
	return get[models.Translation](ctx, fs.client, translationPath(id))
}

func (fs *Firestore) TranslationsByID(ctx context.Context, ids []string) ([]*models.Translation, error) {
	return getAll[models.Translation](ctx, fs.client, pathTranslations, repository.UniqueIDs(ids))
}

func (fs *Firestore) QueryTranslations(ctx context.Context, filter repository.TranslationFilter, page repository.Page) ([]*models.Translation, int, error) {
	criteria := translationCriteria(filter)

	if len(repository.SearchTerms(filter.Search)) > 0 {
		translations, err := query[models.Translation](ctx, fs.client, criteria)
		if err != nil {
			return nil, 0, err
		}

		matched := make([]*models.Translation, 0)
		for _, t := range translations {
			if repository.MatchesSearch(filter.Search, t.English, t.Translated, t.Explanation) {
				matched = append(matched, t)
			}
		}

		return repository.Paginate(matched, page), len(matched), nil
	}

	total, err := count(ctx, fs.client, criteria)
	if err != nil {
		return nil, 0, err
	}

	criteria.Offset = page.Offset
	criteria.Limit = page.Limit

	translations, err := query[models.Translation](ctx, fs.client, criteria)
	if err != nil {
		return nil, 0, err
	}

	return translations, total, nil
}

func (fs *Firestore) AllTranslations(ctx context.Context) ([]*models.Translation, error) {
	return query[models.Translation](ctx, fs.client, translationCriteria(repository.TranslationFilter{}))
}

func (fs *Firestore) UpdateTranslation(ctx context.Context, id string, mutate func(*models.Translation) error) (*models.Translation, error) {
	return transact(ctx, fs.client, translationPath(id), mutate)
}

func (fs *Firestore) IncrementTranslationUsage(ctx context.Context, id string) error {
	return update(ctx, fs.client, translationPath(id), map[string]any{
		fieldUsageCount: firestore.Increment(1),
		fieldUpdatedAt:  firestore.ServerTimestamp,
	})
}

func translationCriteria(filter repository.TranslationFilter) QueryCriteria {
	filters := make([]firestore.EntityFilter, 0)
	if len(filter.Language) > 0 {
		filters = append(filters, createPropertyFilter("language", Equal, string(filter.Language)))
	}
	if len(filter.Category) > 0 {
		filters = append(filters, createPropertyFilter("category", Equal, string(filter.Category)))
	}
	if filter.Verified != nil {
		filters = append(filters, createPropertyFilter("verified", Equal, *filter.Verified))
	}

	return QueryCriteria{
		Path:   pathTranslations,
		Filter: andFilter(filters),
		OrderBy: []OrderBy{
			{
				Field:     fieldUsageCount,
				Direction: firestore.Desc,
			},
			{
				Field:     fieldCreatedAt,
				Direction: firestore.Desc,
			},
		},
	}
}
