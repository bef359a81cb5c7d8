package database

import (
	"gorm.io/gorm"

	"github.com/wooglin/roster-api/internal/utils"
)

// Paginate applies pagination to a GORM query. A zero limit leaves the
// query unbounded.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params.Limit <= 0 {
			return db
		}
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// DateBetween keeps shifts whose date falls in [from, to]. Dates are
// YYYY-MM-DD strings, so lexical comparison is chronological.
func DateBetween(from, to string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("date >= ? AND date <= ?", from, to)
	}
}
