package service

import (
	"errors"
	"fmt"

	"github.com/clikenova/storefront/internal/core/domain"
)

// joinPersistence tags a storage failure with domain.ErrPersistence unless it
// is already a known domain error.
func joinPersistence(err error) error {
	if errors.Is(err, domain.ErrPersistence) ||
		errors.Is(err, domain.ErrNotificationNotFound) ||
		errors.Is(err, domain.ErrForbidden) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
}
