package units

import "errors"

// Engine error kinds. Callers match with errors.Is; the transport layer maps
// them onto HTTP statuses. Bulk loading of builtin and additional definitions
// logs and skips instead of surfacing these (see Open).
var (
	ErrSystemNotFound    = errors.New("unit system not found")
	ErrUnitNotFound      = errors.New("unit not found")
	ErrDimensionNotFound = errors.New("dimension not found")

	// ErrParse covers malformed relation expressions: unknown tokens,
	// unbalanced parentheses or brackets, dangling operators.
	ErrParse = errors.New("malformed relation expression")

	// ErrUnitValue is raised when a unit relation cannot be reduced to a
	// number times known units.
	ErrUnitValue = errors.New("invalid unit relation")

	// ErrDimensionValue is raised when a dimension relation cannot be
	// reduced to a vector over registered dimensions.
	ErrDimensionValue = errors.New("invalid dimension relation")

	ErrUnitDuplicate      = errors.New("unit already defined")
	ErrDimensionDuplicate = errors.New("dimension already defined")

	// ErrUnitDimension marks a unit whose dimensionality cannot be resolved
	// or contradicts the dimension it was attached to.
	ErrUnitDimension = errors.New("incoherent unit dimensionality")

	// ErrDimensionDimension marks a dimension relation that registers but is
	// algebraically incoherent when re-checked against concrete units.
	ErrDimensionDimension = errors.New("incoherent dimension relation")
)
