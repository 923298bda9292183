package repository

import (
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/orris-inc/satsgate/internal/shared/errors"
)

// isDuplicate recognises unique-key violations from mysql and sqlite, and from
// gorm when TranslateError is enabled.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || apperrors.IsDuplicateError(err)
}
