package firestore

import (
	"context"
	"fmt"

	"civiclink/pkg/api/repository"
	"civiclink/pkg/config"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

var instance *Firestore

// Firestore is the production document store
type Firestore struct {
	cfg    *config.Config
	client *firestore.Client
}

var _ repository.Repository = (*Firestore)(nil)

func Initialize(ctx context.Context, cfg *config.Config) (*Firestore, error) {
	if instance != nil {
		return instance, nil
	}

	opts := make([]option.ClientOption, 0)
	if len(cfg.GoogleCloud.ServiceAccountFilename) > 0 {
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleCloud.ServiceAccountFilename))
	}

	client, err := firestore.NewClient(ctx, cfg.GoogleCloud.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating firestore client, %w", err)
	}

	instance = &Firestore{
		cfg:    cfg,
		client: client,
	}

	return instance, nil
}

func (fs *Firestore) Close() error {
	return fs.client.Close()
}
