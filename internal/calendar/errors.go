package calendar

import "errors"

var (
	// ErrYearOutOfRange is returned for years before the Gregorian reform.
	ErrYearOutOfRange = errors.New("year out of range")

	// ErrInvalidRange is returned for inverted date or year ranges and for
	// out-of-bounds ordinal arguments.
	ErrInvalidRange = errors.New("invalid range")
)
