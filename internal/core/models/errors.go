package models

import (
	"errors"
	"math"
)

// Input validation errors. Unknown enum values are rejected rather than
// silently mapped onto a neighbouring category.
var (
	ErrUnknownCategory   = errors.New("unknown memory category")
	ErrUnknownImportance = errors.New("unknown memory importance")
	ErrUnknownTrait      = errors.New("unknown virtue trait")
	ErrUnknownValue      = errors.New("unknown player value")
	ErrNonFinite         = errors.New("non-finite numeric input")
)

// Finite reports whether v is neither NaN nor an infinity.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
