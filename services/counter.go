package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resto-pos/models"
)

// nextSequence hands out the next value of a named counter. The row is read
// with SELECT ... FOR UPDATE inside tx, so the lock is held until the caller
// commits and concurrent writers can never compute the same value.
func nextSequence(tx *gorm.DB, name string) (int, error) {
	query := tx
	// SQLite has no FOR UPDATE; its single-writer lock already serializes
	// the allocation.
	if tx.Dialector.Name() != "sqlite" {
		query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var counter models.Counter
	err := query.Where("name = ?", name).First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		counter = models.Counter{Name: name, Value: 0}
		if err := tx.Create(&counter).Error; err != nil {
			return 0, fmt.Errorf("%w: create counter %s: %v", ErrTransaction, name, err)
		}
	} else if err != nil {
		return 0, fmt.Errorf("%w: read counter %s: %v", ErrTransaction, name, err)
	}

	counter.Value++
	if err := tx.Model(&models.Counter{}).
		Where("name = ?", name).
		Update("value", counter.Value).Error; err != nil {
		return 0, fmt.Errorf("%w: bump counter %s: %v", ErrTransaction, name, err)
	}

	return counter.Value, nil
}
