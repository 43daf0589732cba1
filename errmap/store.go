package errmap

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/snsed/grid"
)

// Map is one validated error surface.
type Map struct {
	id         MapID
	days, lams grid.Axis
	cells      []TaggedValue // day-major, parallel to the grids below
	decoded    *grid.Grid2D  // linear lookup
	logMag     *grid.Grid2D  // spline lookup in log10 space; nil in linear mode
	diag       Diagnostics
}

// ID returns the map id.
func (m *Map) ID() MapID { return m.id }

// Days returns the phase axis.
func (m *Map) Days() grid.Axis { return m.days }

// Lams returns the wavelength axis.
func (m *Map) Lams() grid.Axis { return m.lams }

// Cell returns the stored tagged value at node (iday, ilam).
func (m *Map) Cell(iday, ilam int) TaggedValue { return m.cells[iday*m.lams.Len()+ilam] }

// Diagnostics returns the load-time accounting.
func (m *Map) Diagnostics() Diagnostics { return m.diag }

// Query interpolates the map at (day, lam).
func (m *Map) Query(day, lam float64) (float64, error) {
	if m.logMag == nil {
		return m.decoded.Eval(day, lam)
	}
	lv, err := m.logMag.Eval(day, lam)
	if err != nil {
		return 0, err
	}
	near := m.Cell(m.days.Nearest(day), m.lams.Nearest(lam))

	return TaggedValue{LogMag: lv, Negative: near.Negative}.Value(), nil
}

// Store is the fixed-size collection of error maps of one model.
// Loading happens once during model initialization; afterwards the store is
// read-only and safe for concurrent queries.
type Store struct {
	opts Options
	maps map[MapID]*Map
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &Store{opts: o, maps: make(map[MapID]*Map)}
}

// Load builds map id from training triples.
// Stage 1 (Validate): id, capacity, grid completeness.
// Stage 2 (Classify): count NaN and crazy values; record the found range.
// Stage 3 (Decide): abort with *BadValueError when bad > tolerance and abort
// is enabled; otherwise clamp offending cells into the valid range.
// Stage 4 (Finalize): encode tagged values and build lookup grids.
func (s *Store) Load(id MapID, points []Point) error {
	if err := id.Validate(); err != nil {
		return err
	}
	if _, dup := s.maps[id]; dup {
		return fmt.Errorf("Load(%s): %w", id, ErrDuplicateMap)
	}
	if len(s.maps) >= s.opts.maxMaps {
		return fmt.Errorf("Load(%s): %d maps: %w", id, s.opts.maxMaps, ErrCapacity)
	}
	if len(points) > s.opts.maxCells {
		return fmt.Errorf("Load(%s): %d cells > %d: %w", id, len(points), s.opts.maxCells, ErrCapacity)
	}

	days, lams, raw, err := layout(points)
	if err != nil {
		return fmt.Errorf("Load(%s): %w", id, err)
	}

	valid := s.opts.valid[id.Kind]
	diag := Diagnostics{ID: id, NDay: days.Len(), NLam: lams.Len(), Valid: valid}
	finite := make([]float64, 0, len(raw))
	for i, v := range raw {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			diag.NaN++
			raw[i] = clamp(0, valid)
		case v < valid[0] || v > valid[1]:
			diag.Crazy++
			finite = append(finite, v)
			raw[i] = clamp(v, valid)
		default:
			finite = append(finite, v)
		}
	}
	if len(finite) > 0 {
		diag.Found = [2]float64{floats.Min(finite), floats.Max(finite)}
	}
	if s.opts.abortOnBad && diag.BadValues() > s.opts.tolerance {
		return &BadValueError{ID: id, NaN: diag.NaN, Crazy: diag.Crazy, Tolerance: s.opts.tolerance, Valid: valid}
	}

	m := &Map{id: id, days: days, lams: lams, cells: make([]TaggedValue, len(raw)), diag: diag}
	logs := make([]float64, len(raw))
	for i, v := range raw {
		m.cells[i] = Encode(v)
		logs[i] = m.cells[i].LogMag
	}
	gopts := grid.Options{Mode: grid.Linear, Edge: s.opts.edge, MaxNodes: s.opts.maxCells}
	if m.decoded, err = grid.NewGrid2D(days, lams, raw, gopts); err != nil {
		return fmt.Errorf("Load(%s): %w", id, err)
	}
	if s.opts.mode == grid.Spline {
		gopts.Mode = grid.Spline
		if m.logMag, err = grid.NewGrid2D(days, lams, logs, gopts); err != nil {
			return fmt.Errorf("Load(%s): %w", id, err)
		}
	}
	s.maps[id] = m

	return nil
}

// Query interpolates map id at (day, lam).
func (s *Store) Query(id MapID, day, lam float64) (float64, error) {
	m, ok := s.maps[id]
	if !ok {
		return 0, fmt.Errorf("Query(%s): %w", id, ErrUnknownMap)
	}
	return m.Query(day, lam)
}

// Map returns map id, if loaded.
func (s *Store) Map(id MapID) (*Map, bool) {
	m, ok := s.maps[id]
	return m, ok
}

// Has reports whether id is loaded.
func (s *Store) Has(id MapID) bool {
	_, ok := s.maps[id]
	return ok
}

// CovarianceID returns the map describing the (i, j) surface pair: the
// variance map when i == j, otherwise the covariance map. ok is false when
// that map was not loaded.
func (s *Store) CovarianceID(i, j int) (MapID, bool) {
	id := Covariance(i, j)
	if i == j {
		id = Variance(i)
	}
	return id, s.Has(id)
}

// IDs returns the loaded ids in a stable order (kind, I, J).
func (s *Store) IDs() []MapID {
	ids := make([]MapID, 0, len(s.maps))
	for id := range s.maps {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool {
		if ids[a].Kind != ids[b].Kind {
			return ids[a].Kind < ids[b].Kind
		}
		if ids[a].I != ids[b].I {
			return ids[a].I < ids[b].I
		}
		return ids[a].J < ids[b].J
	})
	return ids
}

// Summary returns the diagnostics of every loaded map in IDs order.
func (s *Store) Summary() []Diagnostics {
	ids := s.IDs()
	out := make([]Diagnostics, len(ids))
	for i, id := range ids {
		out[i] = s.maps[id].diag
	}
	return out
}

// BadValues returns the total bad-value count retained across maps.
func (s *Store) BadValues() int {
	n := 0
	for _, m := range s.maps {
		n += m.diag.BadValues()
	}
	return n
}

// layout sorts triples onto a day-major grid and verifies that every cell is
// present exactly once.
func layout(points []Point) (grid.Axis, grid.Axis, []float64, error) {
	if len(points) == 0 {
		return grid.Axis{}, grid.Axis{}, nil, fmt.Errorf("no points: %w", ErrIncompleteGrid)
	}
	dayVals := make([]float64, 0, len(points))
	lamVals := make([]float64, 0, len(points))
	for _, p := range points {
		dayVals = append(dayVals, p.Day)
		lamVals = append(lamVals, p.Lam)
	}
	days, err := grid.NewAxis(unique(dayVals))
	if err != nil {
		return grid.Axis{}, grid.Axis{}, nil, fmt.Errorf("day axis: %w", err)
	}
	lams, err := grid.NewAxis(unique(lamVals))
	if err != nil {
		return grid.Axis{}, grid.Axis{}, nil, fmt.Errorf("lambda axis: %w", err)
	}
	nd, nl := days.Len(), lams.Len()
	if nd*nl != len(points) {
		return grid.Axis{}, grid.Axis{}, nil,
			fmt.Errorf("%d points for %d×%d grid: %w", len(points), nd, nl, ErrIncompleteGrid)
	}

	dayIdx := index(days)
	lamIdx := index(lams)
	values := make([]float64, nd*nl)
	seen := make([]bool, nd*nl)
	for _, p := range points {
		k := dayIdx[p.Day]*nl + lamIdx[p.Lam]
		if seen[k] {
			return grid.Axis{}, grid.Axis{}, nil,
				fmt.Errorf("duplicate cell (%g, %g): %w", p.Day, p.Lam, ErrIncompleteGrid)
		}
		seen[k] = true
		values[k] = p.Value
	}

	return days, lams, values, nil
}

func unique(v []float64) []float64 {
	sort.Float64s(v)
	out := v[:0]
	for i, x := range v {
		if i == 0 || x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}

func index(a grid.Axis) map[float64]int {
	m := make(map[float64]int, a.Len())
	for i := 0; i < a.Len(); i++ {
		m[a.At(i)] = i
	}
	return m
}

func clamp(v float64, r [2]float64) float64 {
	return math.Min(math.Max(v, r[0]), r[1])
}
