package errmap

import (
	"errors"
	"fmt"
)

var (
	// ErrBadTrainingData marks NaN/out-of-range values beyond the tolerance.
	ErrBadTrainingData = errors.New("errmap: bad training values")

	// ErrIncompleteGrid indicates the triples do not cover every (day, lambda) cell exactly once.
	ErrIncompleteGrid = errors.New("errmap: triples do not form a complete grid")

	// ErrUnknownMap indicates a query for a map that was never loaded.
	ErrUnknownMap = errors.New("errmap: unknown map")

	// ErrDuplicateMap indicates the same map id was loaded twice.
	ErrDuplicateMap = errors.New("errmap: map already loaded")

	// ErrBadMapID indicates a malformed map id (surface index, kind or name).
	ErrBadMapID = errors.New("errmap: invalid map id")

	// ErrCapacity indicates the configured number of maps or cells was exceeded.
	ErrCapacity = errors.New("errmap: capacity exceeded")
)

// BadValueError reports the bad-value accounting of a rejected map.
// It unwraps to ErrBadTrainingData.
type BadValueError struct {
	ID        MapID
	NaN       int
	Crazy     int
	Tolerance int
	Valid     [2]float64
}

func (e *BadValueError) Error() string {
	return fmt.Sprintf("errmap: %s has %d NaN and %d crazy values (valid range [%g, %g], tolerance %d)",
		e.ID, e.NaN, e.Crazy, e.Valid[0], e.Valid[1], e.Tolerance)
}

func (e *BadValueError) Unwrap() error { return ErrBadTrainingData }
