// Package repository implements the data access layer for the application.
package repository

import (
	"errors"

	"folio/internal/models"

	"gorm.io/gorm"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// mapError converts a gorm error into an AppError. Missing rows become
// NOT_FOUND for resource/id; everything else is internal.
func mapError(err error, resource string, id any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return models.NewInternalError(err)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
