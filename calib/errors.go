package calib

import "errors"

var (
	// ErrConfig indicates a malformed entry or line.
	ErrConfig = errors.New("calib: malformed calibration shift")

	// ErrCapacity indicates more than MaxEntries entries.
	ErrCapacity = errors.New("calib: too many calibration shifts")
)
