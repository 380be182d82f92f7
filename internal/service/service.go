package service

import (
	"errors"

	"servicehub/internal/domain"

	"gorm.io/gorm"
)

const defaultPageSize = 20

// lookupErr turns a missing row into NotFound(msg) and anything else into Unexpected.
func lookupErr(err error, msg, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound(msg)
	}
	return domain.Unexpected(op, err)
}

func pageLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	return limit
}
