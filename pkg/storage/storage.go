// Package storage opens the configured document store.
package storage

import (
	"context"
	"fmt"

	"civiclink/pkg/api/repository"
	"civiclink/pkg/config"
	"civiclink/pkg/firestore"
	"civiclink/pkg/localstore"
)

func Open(ctx context.Context, cfg *config.Config) (repository.Repository, error) {
	switch cfg.Storage.Driver {
	case config.StorageFirestore:
		fs, err := firestore.Initialize(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case config.StorageSQLite, config.StorageMySQL:
		store, err := localstore.Open(cfg.Storage)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown storage driver, %s", cfg.Storage.Driver)
}
