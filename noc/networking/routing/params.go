package routing

import (
	"slices"

	"github.com/pkg/errors"
)

// Params holds the network-wide settings that the routing algorithms read.
// Params are resolved once before the simulation starts and never change.
type Params struct {
	Mode Mode

	// NumRows and NumCols describe a mesh. Router i sits at column
	// i % NumCols and row i / NumCols.
	NumRows int
	NumCols int

	// TreeDegree is the switch degree k of a fat-tree. NumPods is the number
	// of populated pods; zero means a full tree with TreeDegree pods.
	TreeDegree int
	NumPods    int

	// OrderedVnets lists the virtual networks that must deliver packets in
	// order.
	OrderedVnets []int

	// Seed seeds the tie-break generators of unordered virtual networks.
	Seed uint64
}

// IsVnetOrdered tells if packets of the vnet must keep their order.
func (p Params) IsVnetOrdered(vnet int) bool {
	return slices.Contains(p.OrderedVnets, vnet)
}

// Pods returns the number of populated fat-tree pods.
func (p Params) Pods() int {
	if p.NumPods == 0 {
		return p.TreeDegree
	}

	return p.NumPods
}

// Validate checks the settings that the selected mode depends on.
func (p Params) Validate() error {
	switch p.Mode {
	case TableLookup, Custom:
	case DimensionOrder:
		if p.NumRows <= 0 || p.NumCols <= 0 {
			return errors.Errorf(
				"mesh routing requires positive rows and columns, got %dx%d",
				p.NumRows, p.NumCols)
		}
	case HierarchicalTree, HierarchicalTreeAdaptive:
		if p.TreeDegree <= 0 || p.TreeDegree%2 != 0 {
			return errors.Errorf(
				"fat-tree routing requires an even positive degree, got %d",
				p.TreeDegree)
		}

		if p.NumPods < 0 || p.NumPods > p.TreeDegree {
			return errors.Errorf(
				"a degree-%d fat-tree cannot have %d pods",
				p.TreeDegree, p.NumPods)
		}
	default:
		return errors.Errorf("unknown routing mode %d", int(p.Mode))
	}

	for _, v := range p.OrderedVnets {
		if v < 0 {
			return errors.Errorf("ordered vnet %d is negative", v)
		}
	}

	return nil
}
