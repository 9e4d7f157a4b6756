// Package service implements the claim review, translation verification and account workflows
// on top of a document repository.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"civiclink/pkg/api/repository"
	"civiclink/pkg/apperr"
	"civiclink/pkg/log"
)

const (
	maxPageLimit            = 100
	defaultClaimLimit       = 10
	defaultTranslationLimit = 20
)

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces the wall clock used to stamp documents
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []Option) options {
	o := options{
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// UserSummary is the public identity of a referenced user
type UserSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
}

func (u *UserSummary) withoutEmail() *UserSummary {
	if u == nil {
		return nil
	}
	c := *u
	c.Email = ""
	return &c
}

// Directory resolves user references held by claims and translations
type Directory interface {
	Summaries(ctx context.Context, ids []string) (map[string]*UserSummary, error)
}

type userDirectory struct {
	users repository.Users
}

func NewDirectory(users repository.Users) Directory {
	return &userDirectory{users: users}
}

func (d *userDirectory) Summaries(ctx context.Context, ids []string) (map[string]*UserSummary, error) {
	summaries := make(map[string]*UserSummary)

	ids = repository.UniqueIDs(ids)
	if len(ids) == 0 {
		return summaries, nil
	}

	users, err := d.users.UsersByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error resolving users, %w", err)
	}

	for _, u := range users {
		summaries[u.ID] = &UserSummary{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
		}
	}

	return summaries, nil
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func newPagination(page, limit, total int) Pagination {
	return Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

// PageRequest carries the raw page and limit query values; empty values take defaults
type PageRequest struct {
	Page  string `query:"page"`
	Limit string `query:"limit"`
}

func (r PageRequest) resolve(fields *apperr.Fields, defaultLimit int) (page, limit int) {
	page, limit = 1, defaultLimit

	if len(r.Page) > 0 {
		p, err := strconv.Atoi(r.Page)
		if err != nil || p < 1 {
			fields.Add("page", "Page must be a positive integer", r.Page)
		} else {
			page = p
		}
	}

	if len(r.Limit) > 0 {
		l, err := strconv.Atoi(r.Limit)
		if err != nil || l < 1 || l > maxPageLimit {
			fields.Add("limit", fmt.Sprintf("Limit must be an integer between 1 and %d", maxPageLimit), r.Limit)
		} else {
			limit = l
		}
	}

	return page, limit
}

func offset(page, limit int) repository.Page {
	return repository.Page{Offset: (page - 1) * limit, Limit: limit}
}

// storeFailure converts repository errors into the service taxonomy
func storeFailure(err error, notFound, operation string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(notFound)
	}

	var e *apperr.Error
	if errors.As(err, &e) {
		return err
	}

	log.Logger().Errorf(nil, "%s, %s", operation, err)
	return apperr.Internal(operation, err)
}
