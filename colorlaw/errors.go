// SPDX-License-Identifier: MIT

package colorlaw

import "errors"

var (
	// ErrConfig marks a malformed color-law parameter vector.
	ErrConfig = errors.New("colorlaw: malformed color-law parameters")

	// ErrVersion marks an unknown color-law version.
	ErrVersion = errors.New("colorlaw: unknown color-law version")
)
