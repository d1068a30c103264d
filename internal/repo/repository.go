package repo

import (
	"context"
	"errors"
)

// DefaultLimit bounds list queries that do not set their own limit.
const DefaultLimit = 100

var (
	ErrNotFound         = errors.New("record not found")
	ErrUniqueConstraint = errors.New("unique constraint violation")
	ErrCreateResource   = errors.New("failed to create record")
	ErrUpdateResource   = errors.New("failed to update record")
	ErrDeleteResource   = errors.New("failed to delete record")
	ErrGetResource      = errors.New("failed to read record")
	ErrTransaction      = errors.New("failed to commit transaction")
)

// Resource is a persisted govlink record: an account, an execution,
// an execution event or a cost report.
type Resource interface {
	TableName() string
}

// TransactionFunc runs against a Repo bound to one open transaction.
type TransactionFunc func(context.Context, Repo) error

// Repo is the storage seam shared by the inventory, the workflow engine and
// cost reporting.
//
// First loads the record matching the non-zero primary key of resource and the
// query. Patch writes the fields named by the query and reports false when the
// where clause matched no row; the engine relies on this to detect a lost
// version race. List returns the count of all matching rows, ignoring limit
// and offset.
type Repo interface {
	Create(ctx context.Context, resource Resource) error
	First(ctx context.Context, resource Resource, query Query) (bool, error)
	List(ctx context.Context, resource Resource, result any, query Query) (int, error)
	Patch(ctx context.Context, resource Resource, query Query) (bool, error)
	Delete(ctx context.Context, resource Resource, query Query) (bool, error)
	Transaction(ctx context.Context, txFunc TransactionFunc) error
}

// ProcessInBatch pages through every record matching query, batchSize at a
// time, and hands each non-empty page to fn. The first error from the store or
// from fn stops the walk. query itself is left untouched.
func ProcessInBatch[T Resource](
	ctx context.Context,
	r Repo,
	query *Query,
	batchSize int,
	fn func([]*T) error,
) error {
	if batchSize <= 0 {
		batchSize = DefaultLimit
	}

	page := *query

	for offset := 0; ; offset += batchSize {
		var items []*T

		total, err := r.List(ctx, *new(T), &items, *page.SetLimit(batchSize).SetOffset(offset))
		if err != nil {
			return err
		}

		if len(items) == 0 {
			return nil
		}

		err = fn(items)
		if err != nil {
			return err
		}

		if offset+batchSize >= total || len(items) < batchSize {
			return nil
		}
	}
}
