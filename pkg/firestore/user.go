package firestore

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"civiclink/pkg/api/repository"
	"civiclink/pkg/models"

	"cloud.google.com/go/firestore"
)

func userPath(id string) string {
	return fmt.Sprintf("%s/%s", pathUsers, id)
}

// userEmailPath escapes the address so a slash in its local part stays inside one document id
func userEmailPath(email string) string {
	return fmt.Sprintf("%s/%s", pathUserEmails, url.PathEscape(models.NormalizeEmail(email)))
}

// userEmail reserves an email address for a single account
type userEmail struct {
	UserID string `firestore:"user_id"`
}

// CreateUser writes the account and its email reservation together, so a taken email fails the
// whole transaction.
func (fs *Firestore) CreateUser(ctx context.Context, user *models.User) error {
	err := fs.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(fs.client.Doc(userEmailPath(user.Email)), &userEmail{UserID: user.ID}); err != nil {
			return err
		}
		return tx.Create(fs.client.Doc(userPath(user.ID)), user)
	})
	if err != nil {
		return fmt.Errorf("error creating user, %w", storeError(err))
	}

	return nil
}

func (fs *Firestore) User(ctx context.Context, id string) (*models.User, error) {
	return get[models.User](ctx, fs.client, userPath(id))
}

func (fs *Firestore) UsersByID(ctx context.Context, ids []string) ([]*models.User, error) {
	return getAll[models.User](ctx, fs.client, pathUsers, repository.UniqueIDs(ids))
}

func (fs *Firestore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	reservation, err := get[userEmail](ctx, fs.client, userEmailPath(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return fs.User(ctx, reservation.UserID)
}

func (fs *Firestore) UpdateUser(ctx context.Context, id string, mutate func(*models.User) error) (*models.User, error) {
	return transact(ctx, fs.client, userPath(id), mutate)
}
