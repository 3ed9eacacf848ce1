// Package repository provides the data access layer over gorm.
package repository

import (
	"errors"  // Error matching
	"fmt"     // Error wrapping
	"strings" // LIKE escaping

	"store_rating/internal/domain" // Domain errors

	"gorm.io/gorm" // ORM
)

// likeEscape is the LIKE escape character; backslash is unusable because
// MySQL treats it as a string escape inside the ESCAPE literal.
const likeEscape = "!"

var likeReplacer = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// containsPattern returns a lower-cased LIKE pattern matching s as a substring
func containsPattern(s string) string {
	return "%" + likeReplacer.Replace(strings.ToLower(s)) + "%"
}

// whereContains adds a case-insensitive substring filter on column when value is non-empty
func whereContains(q *gorm.DB, column, value string) *gorm.DB {
	value = strings.TrimSpace(value)
	if value == "" {
		return q
	}
	return q.Where("LOWER("+column+") LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(value))
}

// translate maps gorm sentinel errors onto domain error kinds
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
