// SPDX-License-Identifier: MIT

package model

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/snsed/calib"
	"github.com/katalvlaran/snsed/colorlaw"
	"github.com/katalvlaran/snsed/errmap"
	"github.com/katalvlaran/snsed/filter"
	"github.com/katalvlaran/snsed/grid"
	"github.com/katalvlaran/snsed/sed"
)

// Error kinds. Every error returned by this package matches exactly one of
// these with errors.Is, and also the leaf error from the package that raised it.
var (
	// ErrConfig marks malformed parameters, shift entries or capacity overflow.
	ErrConfig = errors.New("model: configuration error")

	// ErrBadTrainingData marks NaN or out-of-range training values beyond tolerance.
	ErrBadTrainingData = errors.New("model: bad training data")

	// ErrOutOfRange marks a query outside the model's coverage under the abort policy.
	ErrOutOfRange = errors.New("model: query out of range")

	// ErrIllConditioned marks a covariance matrix that is not positive semi-definite.
	ErrIllConditioned = errors.New("model: covariance not positive semi-definite")
)

// Query-time caller errors.
var (
	// ErrUnknownFilter indicates a filter name that was not registered.
	ErrUnknownFilter = errors.New("model: unknown filter")

	// ErrInvalidQuery indicates non-finite or unphysical query parameters.
	ErrInvalidQuery = errors.New("model: invalid query parameters")
)

// kindOf maps a leaf error to its error kind; nil when the error is already
// kinded or unknown.
func kindOf(err error) error {
	switch {
	case errors.Is(err, ErrConfig), errors.Is(err, ErrBadTrainingData),
		errors.Is(err, ErrOutOfRange), errors.Is(err, ErrIllConditioned):
		return nil
	case errors.Is(err, errmap.ErrBadTrainingData),
		errors.Is(err, sed.ErrNaNInf),
		errors.Is(err, sed.ErrIncomplete),
		errors.Is(err, errmap.ErrIncompleteGrid),
		errors.Is(err, grid.ErrNaNInf), errors.Is(err, grid.ErrSingular):
		return ErrBadTrainingData
	case errors.Is(err, grid.ErrOutOfRange):
		return ErrOutOfRange
	case errors.Is(err, colorlaw.ErrConfig), errors.Is(err, colorlaw.ErrVersion),
		errors.Is(err, calib.ErrConfig), errors.Is(err, calib.ErrCapacity),
		errors.Is(err, errmap.ErrCapacity), errors.Is(err, errmap.ErrBadMapID),
		errors.Is(err, errmap.ErrDuplicateMap),
		errors.Is(err, sed.ErrNoSurfaces), errors.Is(err, sed.ErrTooManySurfaces),
		errors.Is(err, sed.ErrBadExtinction),
		errors.Is(err, grid.ErrTooLarge), errors.Is(err, grid.ErrShape),
		errors.Is(err, grid.ErrEmptyAxis), errors.Is(err, grid.ErrNonIncreasing),
		errors.Is(err, grid.ErrBadMode),
		errors.Is(err, filter.ErrTooFewPoints), errors.Is(err, filter.ErrNonIncreasing),
		errors.Is(err, filter.ErrBadTransmission), errors.Is(err, filter.ErrLengthMismatch),
		errors.Is(err, filter.ErrZeroThroughput):
		return ErrConfig
	}
	return nil
}

// wrap annotates err with op and joins it to its kind.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if k := kindOf(err); k != nil {
		return fmt.Errorf("%w: %s: %w", k, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
