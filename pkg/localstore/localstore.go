// Package localstore keeps CivicLink documents in a SQL database through GORM. It backs local
// development and tests with sqlite, and small deployments with mysql.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"civiclink/pkg/api/repository"
	"civiclink/pkg/config"
	"civiclink/pkg/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type Store struct {
	db     *gorm.DB
	driver string
}

var _ repository.Repository = (*Store)(nil)

func Open(cfg config.StorageConfig) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.StorageSQLite:
		dialector = sqlite.Open(cfg.DSN)
	case config.StorageMySQL:
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported local storage driver, %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening %s database, %w", cfg.Driver, err)
	}

	if cfg.Driver == config.StorageSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("error accessing sqlite handle, %w", err)
		}
		// sqlite allows one writer; a single connection serializes transactions and keeps
		// in-memory databases alive
		sqlDB.SetMaxOpenConns(1)
	}

	if err = db.AutoMigrate(&models.User{}, &models.Claim{}, &models.Translation{}); err != nil {
		return nil, fmt.Errorf("error migrating %s database, %w", cfg.Driver, err)
	}

	return &Store{db: db, driver: cfg.Driver}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repository.ErrDuplicate
	}
	return err
}

func first[T any](ctx context.Context, db *gorm.DB, query string, args ...any) (*T, error) {
	t := new(T)
	if err := db.WithContext(ctx).Where(query, args...).First(t).Error; err != nil {
		return nil, fmt.Errorf("error getting document, %w", storeError(err))
	}
	return t, nil
}

// transact locks the row, applies mutate and saves the result in one transaction
func transact[T any](ctx context.Context, s *Store, id string, mutate func(*T) error) (*T, error) {
	var result *T
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		read := tx
		if s.driver != config.StorageSQLite {
			read = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		t := new(T)
		if err := read.Where("id = ?", id).First(t).Error; err != nil {
			return fmt.Errorf("error getting document, %w", storeError(err))
		}

		if err := mutate(t); err != nil {
			return err
		}

		if err := tx.Save(t).Error; err != nil {
			return fmt.Errorf("error saving document, %w", storeError(err))
		}

		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func increment[T any](ctx context.Context, db *gorm.DB, id, column string) error {
	res := db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(map[string]any{
		column:       gorm.Expr(column + " + 1"),
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return fmt.Errorf("error updating document, %w", storeError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("error updating document, %w", repository.ErrNotFound)
	}
	return nil
}

// likeEscape marks LIKE wildcards in search terms as literals
var likeEscape = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// searchClause builds an OR of LIKE conditions across columns for every search term
func searchClause(db *gorm.DB, terms []string, columns ...string) *gorm.DB {
	condition := db.Session(&gorm.Session{NewDB: true})
	for _, term := range terms {
		pattern := "%" + likeEscape.Replace(term) + "%"
		for _, column := range columns {
			condition = condition.Or(fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '!'", column), pattern)
		}
	}

	return db.Where(condition)
}

// search counts and fetches one page of q, keeping rows where any term occurs in any of the
// columns. sqlite's LOWER only folds ASCII, so on sqlite the terms are matched in process against
// text(t), the same way the firestore store matches them.
func search[T any](s *Store, q *gorm.DB, order, terms string, page repository.Page, text func(*T) []string, columns ...string) ([]*T, int, error) {
	items := make([]*T, 0)

	if s.driver == config.StorageSQLite && len(repository.SearchTerms(terms)) > 0 {
		if err := q.Order(order).Find(&items).Error; err != nil {
			return nil, 0, err
		}

		matched := make([]*T, 0)
		for _, t := range items {
			if repository.MatchesSearch(terms, text(t)...) {
				matched = append(matched, t)
			}
		}

		return repository.Paginate(matched, page), len(matched), nil
	}

	if split := repository.SearchTerms(terms); len(split) > 0 {
		// a fresh session lets the same chain be counted and then fetched
		q = searchClause(q, split, columns...).Session(&gorm.Session{})
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := paged(q.Order(order), page).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, int(total), nil
}

func paged(db *gorm.DB, page repository.Page) *gorm.DB {
	if page.Offset > 0 {
		db = db.Offset(page.Offset)
	}
	if page.Limit > 0 {
		db = db.Limit(page.Limit)
	}
	return db
}
