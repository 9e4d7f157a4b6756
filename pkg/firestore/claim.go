package firestore

import (
	"context"
	"fmt"

	"civiclink/pkg/api/repository"
	"civiclink/pkg/models"

	"cloud.google.com/go/firestore"
)

func claimPath(id string) string {
	return fmt.Sprintf("%s/%s", pathClaims, id)
}

func (fs *Firestore) CreateClaim(ctx context.Context, claim *models.Claim) error {
	return create(ctx, fs.client, claimPath(claim.ID), claim)
}

func (fs *Firestore) Claim(ctx context.Context, id string) (*models.Claim, error) {
	return get[models.Claim](ctx, fs.client, claimPath(id))
}

func (fs *Firestore) QueryClaims(ctx context.Context, filter repository.ClaimFilter, page repository.Page) ([]*models.Claim, int, error) {
	criteria := claimCriteria(filter)

	// firestore has no text index, so searches are matched and paged in process
	if len(repository.SearchTerms(filter.Search)) > 0 {
		claims, err := query[models.Claim](ctx, fs.client, criteria)
		if err != nil {
			return nil, 0, err
		}

		matched := make([]*models.Claim, 0)
		for _, c := range claims {
			if repository.MatchesSearch(filter.Search, c.Text, c.Explanation) {
				matched = append(matched, c)
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

	claims, err := query[models.Claim](ctx, fs.client, criteria)
	if err != nil {
		return nil, 0, err
	}

	return claims, total, nil
}

func (fs *Firestore) ClaimsWithStatus(ctx context.Context, status models.ClaimStatus) ([]*models.Claim, error) {
	return query[models.Claim](ctx, fs.client, claimCriteria(repository.ClaimFilter{Status: status}))
}

func (fs *Firestore) UpdateClaim(ctx context.Context, id string, mutate func(*models.Claim) error) (*models.Claim, error) {
	return transact(ctx, fs.client, claimPath(id), mutate)
}

func (fs *Firestore) IncrementClaim(ctx context.Context, id string, counter repository.ClaimCounter) error {
	return update(ctx, fs.client, claimPath(id), map[string]any{
		string(counter): firestore.Increment(1),
		fieldUpdatedAt:  firestore.ServerTimestamp,
	})
}

func claimCriteria(filter repository.ClaimFilter) QueryCriteria {
	filters := make([]firestore.EntityFilter, 0)
	if len(filter.Status) > 0 {
		filters = append(filters, createPropertyFilter("status", Equal, string(filter.Status)))
	}
	if len(filter.Verdict) > 0 {
		filters = append(filters, createPropertyFilter("verdict", Equal, string(filter.Verdict)))
	}
	if len(filter.Language) > 0 {
		filters = append(filters, createPropertyFilter("language", Equal, string(filter.Language)))
	}
	if len(filter.Community) > 0 {
		filters = append(filters, createPropertyFilter("community", Equal, filter.Community))
	}

	return QueryCriteria{
		Path:   pathClaims,
		Filter: andFilter(filters),
		OrderBy: []OrderBy{
			{
				Field:     fieldCreatedAt,
				Direction: firestore.Desc,
			},
		},
	}
}
