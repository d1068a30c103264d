package sql

import (
	"reflect"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/govlink/govlink/internal/repo"
)

// where translates the composite key groups of query into gorm conditions.
func where(db *gorm.DB, query repo.Query) (*gorm.DB, error) {
	if len(query.CompositeKeyGroup) == 0 {
		return db, nil
	}

	clause := db.Session(&gorm.Session{NewDB: true})

	for i, group := range query.CompositeKeyGroup {
		keyClause, err := compositeKey(db, group.CompositeKey)
		if err != nil {
			return nil, err
		}

		if i > 0 && !group.IsStrict {
			clause = clause.Or(keyClause)
		} else {
			clause = clause.Where(keyClause)
		}
	}

	return db.Where(clause), nil
}

func compositeKey(db *gorm.DB, key repo.CompositeKey) (*gorm.DB, error) {
	tx := db.Session(&gorm.Session{NewDB: true})

	for _, cond := range key.Conds {
		if cond.Value.Err != nil {
			return nil, cond.Value.Err
		}

		expr, args := condition(cond.Field, cond.Value.Key)

		if key.IsStrict {
			tx = tx.Where(expr, args...)
		} else {
			tx = tx.Or(expr, args...)
		}
	}

	return tx, nil
}

// condition renders one comparison. Empty and NotEmpty treat NULL and ""
// alike; slices other than a uuid become IN lists.
func condition(field string, key repo.Key) (string, []any) {
	if key.Operation != repo.Equal && key.Operation != "" {
		return field + " " + string(key.Operation) + " ?", []any{key.Value}
	}

	switch key.Value {
	case repo.Empty:
		return "(" + field + " IS NULL OR " + field + " = ?)", []any{""}
	case repo.NotEmpty:
		return "(" + field + " IS NOT NULL AND " + field + " != ?)", []any{""}
	}

	v := reflect.ValueOf(key.Value)
	if (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) && v.Type() != reflect.TypeFor[uuid.UUID]() {
		return field + " IN (?)", []any{key.Value}
	}

	return field + " = ?", []any{key.Value}
}

func order(db *gorm.DB, fields []repo.OrderField) (*gorm.DB, error) {
	for _, f := range fields {
		switch f.Direction {
		case repo.Asc, repo.Desc:
			db = db.Order(f.Field + " " + string(f.Direction))
		default:
			return nil, ErrUnsupportedOrderDirective
		}
	}

	return db, nil
}
