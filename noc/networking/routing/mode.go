package routing

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Mode selects the routing algorithm used for packets that have not reached
// their destination router yet.
type Mode int

// The routing modes. The numeric values match the algorithm numbers accepted
// on the command line.
const (
	TableLookup Mode = iota
	DimensionOrder
	Custom
	HierarchicalTree
	HierarchicalTreeAdaptive
)

var modeNames = []string{
	TableLookup:              "table",
	DimensionOrder:           "xy",
	Custom:                   "custom",
	HierarchicalTree:         "fattree",
	HierarchicalTreeAdaptive: "fattree_adaptive",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}

	return modeNames[m]
}

// ParseMode accepts either the name or the number of a mode.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	for m, name := range modeNames {
		if s == name {
			return Mode(m), nil
		}
	}

	n, err := strconv.Atoi(s)
	if err == nil && n >= 0 && n < len(modeNames) {
		return Mode(n), nil
	}

	return TableLookup, errors.Errorf("unknown routing algorithm %q", s)
}
