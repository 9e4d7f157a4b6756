package repository

import (
	"context"
	"errors"

	"civiclink/pkg/models"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("document already exists")
)

type Page struct {
	Offset int
	Limit  int
}

type ClaimFilter struct {
	Status    models.ClaimStatus
	Verdict   models.Verdict
	Language  models.Language
	Community string
	Search    string
}

type TranslationFilter struct {
	Language models.Language
	Category models.Category
	Verified *bool
	Search   string
}

type ClaimCounter string

const (
	ClaimViews  ClaimCounter = "view_count"
	ClaimShares ClaimCounter = "share_count"
)

// Claims stores claim documents. Queries return claims newest first.
type Claims interface {
	CreateClaim(ctx context.Context, claim *models.Claim) error
	Claim(ctx context.Context, id string) (*models.Claim, error)
	QueryClaims(ctx context.Context, filter ClaimFilter, page Page) ([]*models.Claim, int, error)
	ClaimsWithStatus(ctx context.Context, status models.ClaimStatus) ([]*models.Claim, error)
	// UpdateClaim applies mutate to the current document and writes it back as one atomic unit.
	// An error returned by mutate aborts the write and is returned unchanged.
	UpdateClaim(ctx context.Context, id string, mutate func(*models.Claim) error) (*models.Claim, error)
	IncrementClaim(ctx context.Context, id string, counter ClaimCounter) error
}

// Translations stores translation documents. Queries return translations by usage descending,
// then newest first.
type Translations interface {
	CreateTranslation(ctx context.Context, translation *models.Translation) error
	Translation(ctx context.Context, id string) (*models.Translation, error)
	TranslationsByID(ctx context.Context, ids []string) ([]*models.Translation, error)
	QueryTranslations(ctx context.Context, filter TranslationFilter, page Page) ([]*models.Translation, int, error)
	AllTranslations(ctx context.Context) ([]*models.Translation, error)
	UpdateTranslation(ctx context.Context, id string, mutate func(*models.Translation) error) (*models.Translation, error)
	IncrementTranslationUsage(ctx context.Context, id string) error
}

// Users stores accounts. Emails are unique; CreateUser returns ErrDuplicate for a taken email.
type Users interface {
	CreateUser(ctx context.Context, user *models.User) error
	User(ctx context.Context, id string) (*models.User, error)
	UsersByID(ctx context.Context, ids []string) ([]*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, mutate func(*models.User) error) (*models.User, error)
}

type Repository interface {
	Claims
	Translations
	Users
	Close() error
}
