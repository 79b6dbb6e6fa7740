package costbasis

import "fmt"

// CostBasisMethod defines the cost-flow assumption used to attribute a cost to
// disposed units.
type CostBasisMethod int

const (
	// FIFO (First-In, First-Out) assumes the first units acquired are the first ones disposed.
	FIFO CostBasisMethod = iota
	// AverageCost blends all open units into a single weighted-average unit cost.
	AverageCost
)

func (m CostBasisMethod) String() string {
	switch m {
	case AverageCost:
		return "average"
	case FIFO:
		return "fifo"
	default:
		return "unknown"
	}
}

// ParseCostBasisMethod parses a string into a CostBasisMethod.
func ParseCostBasisMethod(s string) (CostBasisMethod, error) {
	switch s {
	case "average", "weighted":
		return AverageCost, nil
	case "fifo":
		return FIFO, nil
	default:
		return 0, fmt.Errorf("unknown cost basis method: %q", s)
	}
}

func (m CostBasisMethod) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *CostBasisMethod) UnmarshalText(text []byte) (err error) {
	*m, err = ParseCostBasisMethod(string(text))
	return err
}

// ShortPolicy decides what happens when a disposal exceeds the open quantity.
type ShortPolicy int

const (
	// RejectShortfall fails the disposal with an *InsufficientLotsError.
	RejectShortfall ShortPolicy = iota
	// AllowShort opens a short position with the excess quantity.
	AllowShort
)

func (p ShortPolicy) String() string {
	switch p {
	case RejectShortfall:
		return "reject"
	case AllowShort:
		return "short"
	default:
		return "unknown"
	}
}
