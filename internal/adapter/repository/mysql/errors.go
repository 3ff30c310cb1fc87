package mysql

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// notFound keeps gorm.ErrRecordNotFound in the chain and adds the domain sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return err
}

// duplicate maps a unique-key violation onto the domain sentinel.
func duplicate(err, sentinel error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return err
}
