package calib

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxEntries bounds the table size.
const MaxEntries = 500

// Wildcard matches any survey or filter.
const Wildcard = "*"

// Kind selects what an entry shifts.
type Kind int

const (
	// MagShift is an additive magnitude offset.
	MagShift Kind = iota + 1
	// WaveShift is an additive filter wavelength offset (Å).
	WaveShift
)

// String returns the line key for k.
func (k Kind) String() string {
	switch k {
	case MagShift:
		return "MAGSHIFT"
	case WaveShift:
		return "WAVESHIFT"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind reads "MAGSHIFT" or "WAVESHIFT" (case-insensitive).
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MAGSHIFT":
		return MagShift, nil
	case "WAVESHIFT":
		return WaveShift, nil
	}
	return 0, fmt.Errorf("ParseKind(%q): %w", s, ErrConfig)
}

// Entry is one calibration shift.
type Entry struct {
	Kind    Kind     `yaml:"kind"`
	Surveys []string `yaml:"surveys"`
	Filter  string   `yaml:"filter"`
	Shift   float64  `yaml:"shift"`
}

// Validate rejects empty or blank patterns, unknown kinds and non-finite shifts.
func (e Entry) Validate() error {
	if e.Kind != MagShift && e.Kind != WaveShift {
		return fmt.Errorf("entry kind %d: %w", int(e.Kind), ErrConfig)
	}
	if len(e.Surveys) == 0 {
		return fmt.Errorf("entry %s: empty survey list: %w", e.Kind, ErrConfig)
	}
	for _, s := range e.Surveys {
		if s == "" || strings.ContainsAny(s, " \t,") {
			return fmt.Errorf("entry %s: survey %q: %w", e.Kind, s, ErrConfig)
		}
	}
	if e.Filter == "" || strings.ContainsAny(e.Filter, " \t") {
		return fmt.Errorf("entry %s: filter %q: %w", e.Kind, e.Filter, ErrConfig)
	}
	if math.IsNaN(e.Shift) || math.IsInf(e.Shift, 0) {
		return fmt.Errorf("entry %s: shift %g: %w", e.Kind, e.Shift, ErrConfig)
	}
	return nil
}

// specificity counts non-wildcard patterns.
func (e Entry) specificity() int {
	n := 0
	if !(len(e.Surveys) == 1 && e.Surveys[0] == Wildcard) {
		n++
	}
	if e.Filter != Wildcard {
		n++
	}
	return n
}

func (e Entry) matches(survey, filter string) bool {
	if !(len(e.Surveys) == 1 && e.Surveys[0] == Wildcard) {
		found := false
		for _, s := range e.Surveys {
			if s == survey {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return e.Filter == Wildcard || strings.Contains(filter, e.Filter)
}

// String renders e in ParseLine format.
func (e Entry) String() string {
	return fmt.Sprintf("%s: %s %s %g", e.Kind, strings.Join(e.Surveys, ","), e.Filter, e.Shift)
}

// ParseLine reads "KIND: SURVEYS FILTER SHIFT".
func ParseLine(line string) (Entry, error) {
	key, rest, ok := strings.Cut(line, ":")
	if !ok {
		return Entry{}, fmt.Errorf("ParseLine(%q): missing key: %w", line, ErrConfig)
	}
	kind, err := ParseKind(key)
	if err != nil {
		return Entry{}, fmt.Errorf("ParseLine(%q): %w", line, err)
	}
	f := strings.Fields(rest)
	if len(f) != 3 {
		return Entry{}, fmt.Errorf("ParseLine(%q): want 3 fields, got %d: %w", line, len(f), ErrConfig)
	}
	shift, err := strconv.ParseFloat(f[2], 64)
	if err != nil {
		return Entry{}, fmt.Errorf("ParseLine(%q): shift: %v: %w", line, err, ErrConfig)
	}
	e := Entry{Kind: kind, Surveys: strings.Split(f[0], ","), Filter: f[1], Shift: shift}
	if err := e.Validate(); err != nil {
		return Entry{}, fmt.Errorf("ParseLine(%q): %w", line, err)
	}
	return e, nil
}

// Table is an immutable, ordered set of entries.
type Table struct {
	entries []Entry
}

// NewTable validates entries and keeps their order.
func NewTable(entries []Entry) (*Table, error) {
	if len(entries) > MaxEntries {
		return nil, fmt.Errorf("NewTable: %d entries > %d: %w", len(entries), MaxEntries, ErrCapacity)
	}
	t := &Table{entries: make([]Entry, 0, len(entries))}
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("NewTable: entry %d: %w", i, err)
		}
		e.Surveys = append([]string(nil), e.Surveys...)
		t.entries = append(t.entries, e)
	}
	return t, nil
}

// ParseLines parses one entry per non-blank line; '#' starts a comment.
func ParseLines(lines []string) (*Table, error) {
	var entries []Entry
	for _, ln := range lines {
		if i := strings.IndexByte(ln, '#'); i >= 0 {
			ln = ln[:i]
		}
		if strings.TrimSpace(ln) == "" {
			continue
		}
		e, err := ParseLine(ln)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return NewTable(entries)
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of the entries in load order.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	return append([]Entry(nil), t.entries...)
}

// Lookup returns the shift of the winning entry for (survey, filter, kind).
// A nil table never matches.
func (t *Table) Lookup(survey, filter string, kind Kind) (float64, bool) {
	e, ok := t.Match(survey, filter, kind)
	if !ok {
		return 0, false
	}
	return e.Shift, true
}

// Match returns the winning entry itself.
// Complexity: O(n).
func (t *Table) Match(survey, filter string, kind Kind) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	best, bestSpec := -1, -1
	for i, e := range t.entries {
		if e.Kind != kind || !e.matches(survey, filter) {
			continue
		}
		if s := e.specificity(); s > bestSpec {
			best, bestSpec = i, s
		}
	}
	if best < 0 {
		return Entry{}, false
	}
	return t.entries[best], true
}
