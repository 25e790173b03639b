package persistence

import (
	"errors"

	"github.com/procurement/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps GORM errors onto domain errors. Duplicate keys are only
// recognised when the connection was opened with TranslateError enabled.
func translateError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewDomainError(shared.CodeAlreadyExists, resource+" already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.NewConflictError(resource + " is referenced by other records")
	}
	return err
}

// likePattern builds a case-insensitive LIKE pattern for search terms
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
