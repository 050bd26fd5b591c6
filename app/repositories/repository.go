// Package repositories holds the gorm queries behind the b2zi services. Every
// repository is bound to a *gorm.DB; WithTx rebinds it to a transaction so a
// service can compose several repositories atomically.
package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = gorm.ErrRecordNotFound

// IsNotFound reports whether err means "no such row".
func IsNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

// IsDuplicate reports whether err is a unique-constraint violation.
func IsDuplicate(err error) bool { return errors.Is(err, gorm.ErrDuplicatedKey) }

// likeEscape is portable across the sqlite, postgres, mysql and sqlserver
// dialects; a backslash is not.
const likeEscape = "!"

// containsPattern builds a case-insensitive LIKE pattern for a substring
// search. Callers compare it against LOWER(column).
func containsPattern(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_", "[", "![")
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

// lowerLike returns "LOWER(col) LIKE ? ESCAPE '!'".
func lowerLike(col string) string {
	return "LOWER(" + col + ") LIKE ? ESCAPE '" + likeEscape + "'"
}
