// Package sql is the gorm-backed repo.Repo used against postgres in
// production and sqlite in tests.
package sql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/govlink/govlink/internal/errs"
	"github.com/govlink/govlink/internal/log"
	"github.com/govlink/govlink/internal/repo"
)

var ErrUnsupportedOrderDirective = errors.New("unsupported order directive")

// ResourceRepository stores govlink records through gorm.
type ResourceRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

func (r *ResourceRepository) Create(ctx context.Context, resource repo.Resource) error {
	err := r.db.WithContext(ctx).Create(resource).Error
	if err == nil {
		return nil
	}

	if IsUniqueConstraint(err) {
		return errs.Wrap(repo.ErrUniqueConstraint, err)
	}

	log.Error(ctx, "Failed to create record", err)

	return errs.Wrap(repo.ErrCreateResource, err)
}

// First loads resource by its primary key, narrowed by query.
func (r *ResourceRepository) First(ctx context.Context, resource repo.Resource, query repo.Query) (bool, error) {
	db, err := where(r.db.WithContext(ctx).Model(resource), query)
	if err != nil {
		return false, err
	}

	res := db.First(resource)

	switch {
	case errors.Is(res.Error, gorm.ErrRecordNotFound):
		return false, errs.Wrap(repo.ErrNotFound, res.Error)
	case res.Error != nil:
		log.Error(ctx, "Failed to read record", res.Error)
		return false, errs.Wrap(repo.ErrGetResource, res.Error)
	}

	return res.RowsAffected > 0, nil
}

// List fills result with one page of matches and returns the unpaged count.
func (r *ResourceRepository) List(ctx context.Context, resource repo.Resource, result any, query repo.Query) (int, error) {
	db, err := where(r.db.WithContext(ctx).Model(resource), query)
	if err != nil {
		return 0, err
	}

	var total int64

	db = db.Count(&total)
	if db.Error != nil {
		return 0, errs.Wrap(repo.ErrGetResource, db.Error)
	}

	db, err = order(db, query.OrderFields)
	if err != nil {
		return 0, err
	}

	limit := query.Limit
	if limit <= 0 {
		limit = repo.DefaultLimit
	}

	err = db.Offset(query.Offset).Limit(limit).Find(result).Error
	if err != nil {
		return 0, errs.Wrap(repo.ErrGetResource, err)
	}

	return int(total), nil
}

// Patch updates resource, matched by primary key and query, and reports
// whether any row was written.
func (r *ResourceRepository) Patch(ctx context.Context, resource repo.Resource, query repo.Query) (bool, error) {
	db, err := where(r.db.WithContext(ctx).Model(resource), query)
	if err != nil {
		return false, err
	}

	switch {
	case query.UpdateFields.All:
		db = db.Select("*")
	case len(query.UpdateFields.Fields) > 0:
		db = db.Select(query.UpdateFields.Fields)
	}

	res := db.Updates(resource)
	if res.Error != nil {
		log.Error(ctx, "Failed to update record", res.Error)

		if IsUniqueConstraint(res.Error) {
			return false, errs.Wrap(repo.ErrUpdateResource, errs.Wrap(repo.ErrUniqueConstraint, res.Error))
		}

		return false, errs.Wrap(repo.ErrUpdateResource, res.Error)
	}

	return res.RowsAffected > 0, nil
}

// Delete removes the rows matching resource and query and reports whether
// any existed.
func (r *ResourceRepository) Delete(ctx context.Context, resource repo.Resource, query repo.Query) (bool, error) {
	db, err := where(r.db.WithContext(ctx), query)
	if err != nil {
		return false, err
	}

	res := db.Delete(resource)
	if res.Error != nil {
		log.Error(ctx, "Failed to delete record", res.Error)
		return false, errs.Wrap(repo.ErrDeleteResource, res.Error)
	}

	return res.RowsAffected > 0, nil
}

// Transaction commits when txFunc returns nil and rolls back otherwise.
// The Repo handed to txFunc must not be shared with other goroutines.
func (r *ResourceRepository) Transaction(ctx context.Context, txFunc repo.TransactionFunc) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := ctx.Err()
		if err != nil {
			return err
		}

		return txFunc(ctx, NewRepository(tx))
	})
	if err != nil {
		return errs.Wrap(repo.ErrTransaction, err)
	}

	return nil
}
