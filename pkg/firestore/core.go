package firestore

import (
	"context"
	"errors"
	"fmt"

	"civiclink/pkg/api/repository"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// storeError translates firestore status codes into repository errors
func storeError(err error) error {
	if err == nil {
		return nil
	}

	switch status.Code(err) {
	case codes.NotFound:
		return repository.ErrNotFound
	case codes.AlreadyExists:
		return repository.ErrDuplicate
	}

	return err
}

func create[T any](ctx context.Context, client *firestore.Client, documentPath string, t *T) error {
	dr := client.Doc(documentPath)
	if dr == nil {
		return fmt.Errorf("invalid document path, %s", documentPath)
	}

	if _, err := dr.Create(ctx, t); err != nil {
		return fmt.Errorf("error creating document, %w", storeError(err))
	}

	return nil
}

func get[T any](ctx context.Context, client *firestore.Client, documentPath string) (*T, error) {
	dr := client.Doc(documentPath)
	if dr == nil {
		return nil, fmt.Errorf("invalid document path, %s", documentPath)
	}

	ds, err := dr.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting document, %w", storeError(err))
	}

	t := new(T)
	if err = ds.DataTo(t); err != nil {
		return nil, fmt.Errorf("error decoding document, %w", err)
	}

	return t, nil
}

// getAll reads documents in batches, skipping ids that do not resolve
func getAll[T any](ctx context.Context, client *firestore.Client, collectionPath string, ids []string) ([]*T, error) {
	documents := make([]*T, 0, len(ids))

	for start := 0; start < len(ids); start += maxGetAll {
		end := min(start+maxGetAll, len(ids))

		refs := make([]*firestore.DocumentRef, 0, end-start)
		for _, id := range ids[start:end] {
			refs = append(refs, client.Collection(collectionPath).Doc(id))
		}

		ds, err := client.GetAll(ctx, refs)
		if err != nil {
			return nil, fmt.Errorf("error getting documents, %w", storeError(err))
		}

		for _, d := range ds {
			if !d.Exists() {
				continue
			}
			t := new(T)
			if err = d.DataTo(t); err != nil {
				return nil, fmt.Errorf("error decoding document, %w", err)
			}
			documents = append(documents, t)
		}
	}

	return documents, nil
}

func update(ctx context.Context, client *firestore.Client, documentPath string, fields map[string]any) error {
	dr := client.Doc(documentPath)
	if dr == nil {
		return fmt.Errorf("invalid document path, %s", documentPath)
	}

	updates := make([]firestore.Update, 0)
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}

	if _, err := dr.Update(ctx, updates); err != nil {
		return fmt.Errorf("error updating document, %w", storeError(err))
	}

	return nil
}

// transact reads, mutates and writes back a document inside a transaction. Firestore may retry
// the transaction, so mutate must only depend on the document it is given.
func transact[T any](ctx context.Context, client *firestore.Client, documentPath string, mutate func(*T) error) (*T, error) {
	dr := client.Doc(documentPath)
	if dr == nil {
		return nil, fmt.Errorf("invalid document path, %s", documentPath)
	}

	var result *T
	err := client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ds, err := tx.Get(dr)
		if err != nil {
			return fmt.Errorf("error getting document, %w", storeError(err))
		}

		t := new(T)
		if err = ds.DataTo(t); err != nil {
			return fmt.Errorf("error decoding document, %w", err)
		}

		if err = mutate(t); err != nil {
			return err
		}

		result = t
		return tx.Set(dr, t)
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func query[T any](ctx context.Context, client *firestore.Client, criteria QueryCriteria) ([]*T, error) {
	q, err := criteria.query(client)
	if err != nil {
		return nil, err
	}

	if criteria.Offset > 0 {
		q = q.Offset(criteria.Offset)
	}

	if criteria.Limit > 0 {
		q = q.Limit(criteria.Limit)
	}

	ds, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("error querying documents, %w", storeError(err))
	}

	documents := make([]*T, 0)
	for _, d := range ds {
		t := new(T)
		if err = d.DataTo(t); err != nil {
			return nil, fmt.Errorf("error decoding document, %w", err)
		}
		documents = append(documents, t)
	}

	return documents, nil
}

// count runs a server side count aggregation, ignoring offset and limit
func count(ctx context.Context, client *firestore.Client, criteria QueryCriteria) (int, error) {
	q, err := criteria.query(client)
	if err != nil {
		return 0, err
	}

	const alias = "total"
	result, err := q.NewAggregationQuery().WithCount(alias).Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("error counting documents, %w", storeError(err))
	}

	v, ok := result[alias].(*firestorepb.Value)
	if !ok {
		return 0, errors.New("error counting documents, missing aggregation result")
	}

	return int(v.GetIntegerValue()), nil
}

type QueryCriteria struct {
	Path    string
	Filter  firestore.EntityFilter
	OrderBy []OrderBy
	Limit   int
	Offset  int
}

type OrderBy struct {
	Field     string
	Direction firestore.Direction
}

func (c QueryCriteria) query(client *firestore.Client) (firestore.Query, error) {
	cr := client.Collection(c.Path)
	if cr == nil {
		return firestore.Query{}, fmt.Errorf("invalid collection path, %s", c.Path)
	}

	q := cr.Query
	if c.Filter != nil {
		q = q.WhereEntity(c.Filter)
	}

	for _, o := range c.OrderBy {
		q = q.OrderBy(o.Field, o.Direction)
	}

	return q, nil
}

const (
	Equal = "=="
)

// andFilter combines equality filters, returning nil when there are none
func andFilter(filters []firestore.EntityFilter) firestore.EntityFilter {
	switch len(filters) {
	case 0:
		return nil
	case 1:
		return filters[0]
	}
	return firestore.AndFilter{Filters: filters}
}

func createPropertyFilter(path, operator string, value any) firestore.PropertyFilter {
	return firestore.PropertyFilter{
		Path:     path,
		Operator: operator,
		Value:    value,
	}
}
