package persistence

import (
	"errors"
	"strings"

	"github.com/erp/manufacturing/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// translateError maps driver errors onto domain errors.
// Requires gorm.Config.TranslateError so dialect errors arrive as gorm sentinels.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrConcurrencyConflict
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.ErrReferenceViolation
	}

	// Dialect translation only sees the driver's own error type; wrapped errors
	// fall through to the message.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "FOREIGN KEY constraint failed"),
		strings.Contains(msg, "violates foreign key constraint"):
		return shared.ErrReferenceViolation
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "duplicate key value violates unique constraint"):
		return shared.ErrConcurrencyConflict
	}
	return err
}

func optimisticLockError(entity string) error {
	return shared.NewDomainError(shared.CodeOptimisticLockFailed, entity+" was modified by another transaction")
}

// forUpdate adds SELECT ... FOR UPDATE. SQLite has no row locks; its writer lock
// already serializes transactions.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// likePattern builds a case-insensitive LIKE pattern for a search term
func likePattern(search string) string {
	return "%" + escapeLike(search) + "%"
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

// paginate applies ordering, offset and limit of a filter
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	return query.Order(field + " " + dir).Offset(filter.Offset()).Limit(filter.Limit())
}
