package database

import (
	"fmt"

	"github.com/tooldex/tooldex/domain/registry"
	"gorm.io/gorm"
)

// ApplyOptions builds a registry.Query from the given options and applies
// the whole of it (conditions, ordering, limit, offset) to a GORM session.
func ApplyOptions(db *gorm.DB, options ...registry.Option) *gorm.DB {
	q := registry.Build(options...)
	db = applyConditions(db, q)

	for _, ord := range q.Orders() {
		dir := "ASC"
		if !ord.Ascending() {
			dir = "DESC"
		}
		db = db.Order(fmt.Sprintf("%s %s", ord.Field(), dir))
	}

	if limit := q.LimitValue(); limit > 0 {
		db = db.Limit(limit)
	}
	if offset := q.OffsetValue(); offset > 0 {
		db = db.Offset(offset)
	}
	return db
}

// ApplyConditions applies only the WHERE conditions. COUNT and DELETE
// queries use this; ordering and pagination would be meaningless there.
func ApplyConditions(db *gorm.DB, options ...registry.Option) *gorm.DB {
	return applyConditions(db, registry.Build(options...))
}

func applyConditions(db *gorm.DB, q registry.Query) *gorm.DB {
	for _, cond := range q.Conditions() {
		op := "="
		if cond.In() {
			op = "IN"
		}
		db = db.Where(fmt.Sprintf("%s %s ?", cond.Field(), op), cond.Value())
	}
	return db
}
