package localstore

import (
	"context"
	"fmt"

	"civiclink/pkg/api/repository"
	"civiclink/pkg/models"

	"gorm.io/gorm"
)

const claimOrder = "created_at DESC"

func (s *Store) CreateClaim(ctx context.Context, claim *models.Claim) error {
	if err := s.db.WithContext(ctx).Create(claim).Error; err != nil {
		return fmt.Errorf("error creating claim, %w", storeError(err))
	}
	return nil
}

func (s *Store) Claim(ctx context.Context, id string) (*models.Claim, error) {
	return first[models.Claim](ctx, s.db, "id = ?", id)
}

func (s *Store) QueryClaims(ctx context.Context, filter repository.ClaimFilter, page repository.Page) ([]*models.Claim, int, error) {
	claims, total, err := search(s, s.claimQuery(ctx, filter), claimOrder, filter.Search, page, func(c *models.Claim) []string {
		return []string{c.Text, c.Explanation}
	}, "claim", "explanation")
	if err != nil {
		return nil, 0, fmt.Errorf("error querying claims, %w", err)
	}

	return claims, total, nil
}

func (s *Store) ClaimsWithStatus(ctx context.Context, status models.ClaimStatus) ([]*models.Claim, error) {
	claims := make([]*models.Claim, 0)
	err := s.claimQuery(ctx, repository.ClaimFilter{Status: status}).Order(claimOrder).Find(&claims).Error
	if err != nil {
		return nil, fmt.Errorf("error querying claims, %w", err)
	}
	return claims, nil
}

func (s *Store) UpdateClaim(ctx context.Context, id string, mutate func(*models.Claim) error) (*models.Claim, error) {
	return transact(ctx, s, id, mutate)
}

func (s *Store) IncrementClaim(ctx context.Context, id string, counter repository.ClaimCounter) error {
	return increment[models.Claim](ctx, s.db, id, string(counter))
}

func (s *Store) claimQuery(ctx context.Context, filter repository.ClaimFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Claim{})
	if len(filter.Status) > 0 {
		q = q.Where("status = ?", string(filter.Status))
	}
	if len(filter.Verdict) > 0 {
		q = q.Where("verdict = ?", string(filter.Verdict))
	}
	if len(filter.Language) > 0 {
		q = q.Where("language = ?", string(filter.Language))
	}
	if len(filter.Community) > 0 {
		q = q.Where("community = ?", filter.Community)
	}
	return q.Session(&gorm.Session{})
}
