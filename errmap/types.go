package errmap

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxSurfaces is the largest number of flux surfaces a model may carry.
const MaxSurfaces = 4

// Kind classifies an error map.
type Kind int

const (
	// KindVariance is the variance of one flux surface.
	KindVariance Kind = iota
	// KindCovariance is the covariance between two flux surfaces.
	KindCovariance
	// KindErrScale is the overall multiplicative error-scale map.
	KindErrScale
	// KindColorDisp is the color dispersion vs wavelength.
	KindColorDisp
)

func (k Kind) String() string {
	switch k {
	case KindVariance:
		return "VAR"
	case KindCovariance:
		return "COVAR"
	case KindErrScale:
		return "ERRSCALE"
	case KindColorDisp:
		return "COLORDISP"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// MapID names one error map. I and J are surface indices; J is only used by
// covariance maps and I < J always holds for them.
type MapID struct {
	Kind Kind
	I, J int
}

// Variance returns the id of the variance map of surface i.
func Variance(i int) MapID { return MapID{Kind: KindVariance, I: i} }

// Covariance returns the id of the covariance map between surfaces i and j,
// normalized so that I < J.
func Covariance(i, j int) MapID {
	if i > j {
		i, j = j, i
	}
	return MapID{Kind: KindCovariance, I: i, J: j}
}

// ErrScale returns the id of the error-scale map.
func ErrScale() MapID { return MapID{Kind: KindErrScale} }

// ColorDisp returns the id of the color-dispersion map.
func ColorDisp() MapID { return MapID{Kind: KindColorDisp} }

// String renders VAR0, COVAR01, ERRSCALE, COLORDISP.
func (id MapID) String() string {
	switch id.Kind {
	case KindVariance:
		return fmt.Sprintf("VAR%d", id.I)
	case KindCovariance:
		return fmt.Sprintf("COVAR%d%d", id.I, id.J)
	default:
		return id.Kind.String()
	}
}

// Validate checks surface indices against MaxSurfaces.
func (id MapID) Validate() error {
	switch id.Kind {
	case KindVariance:
		if id.I < 0 || id.I >= MaxSurfaces {
			return fmt.Errorf("%s: %w", id, ErrBadMapID)
		}
	case KindCovariance:
		if id.I < 0 || id.J >= MaxSurfaces || id.I >= id.J {
			return fmt.Errorf("%s: %w", id, ErrBadMapID)
		}
	case KindErrScale, KindColorDisp:
	default:
		return fmt.Errorf("%s: %w", id, ErrBadMapID)
	}
	return nil
}

// ParseMapID is the inverse of MapID.String.
func ParseMapID(s string) (MapID, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	var id MapID
	switch {
	case u == "ERRSCALE":
		id = ErrScale()
	case u == "COLORDISP":
		id = ColorDisp()
	case strings.HasPrefix(u, "COVAR") && len(u) == len("COVAR")+2:
		i, j := int(u[5]-'0'), int(u[6]-'0')
		id = MapID{Kind: KindCovariance, I: i, J: j}
	case strings.HasPrefix(u, "VAR") && len(u) == len("VAR")+1:
		id = Variance(int(u[3] - '0'))
	default:
		return MapID{}, fmt.Errorf("ParseMapID(%q): %w", s, ErrBadMapID)
	}
	if err := id.Validate(); err != nil {
		return MapID{}, fmt.Errorf("ParseMapID(%q): %w", s, err)
	}
	return id, nil
}

// Point is one (day, lambda, value) training triple.
type Point struct {
	Day, Lam, Value float64
}

// MinLogMag is the log10 magnitude assigned to an exact zero.
const MinLogMag = -30.0

// TaggedValue stores a value as log10 of its magnitude plus an explicit sign,
// so covariance maps (which may be negative) can be interpolated in log space.
type TaggedValue struct {
	LogMag   float64
	Negative bool
}

// Encode converts v into its tagged form.
func Encode(v float64) TaggedValue {
	if v == 0 {
		return TaggedValue{LogMag: MinLogMag}
	}
	return TaggedValue{LogMag: math.Max(math.Log10(math.Abs(v)), MinLogMag), Negative: v < 0}
}

// Value converts back: sign * 10^LogMag. MinLogMag decodes to exactly zero.
func (tv TaggedValue) Value() float64 {
	if tv.LogMag <= MinLogMag {
		return 0
	}
	v := math.Pow(10, tv.LogMag)
	if tv.Negative {
		return -v
	}
	return v
}

// Diagnostics is the load-time accounting of one map.
type Diagnostics struct {
	ID         MapID
	NDay, NLam int
	NaN, Crazy int
	Valid      [2]float64
	Found      [2]float64
}

// BadValues returns NaN + Crazy.
func (d Diagnostics) BadValues() int { return d.NaN + d.Crazy }
