// Package calib is the survey/filter-keyed table of post-hoc calibration
// shifts: magnitude offsets (MAGSHIFT) and filter wavelength offsets
// (WAVESHIFT) found during model training.
//
// An entry names a comma-separated survey list and a filter pattern:
//
//	MAGSHIFT:  CFA3,CFA3S  SDSS-r  0.01
//	WAVESHIFT: *           B       -8.5
//
// A survey matches by membership in the list. A filter matches when the
// pattern is a substring of the filter identity. "*" matches anything.
//
// At most one entry applies to a (survey, filter, kind) triple. When several
// match, the entry with more non-wildcard patterns wins; among equally
// specific entries the one loaded first wins.
package calib
