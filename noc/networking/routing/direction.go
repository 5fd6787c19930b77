package routing

import (
	"strconv"
	"strings"
)

// DirectionKind classifies a port direction.
type DirectionKind uint8

// The kinds of port directions.
const (
	KindUnknown DirectionKind = iota
	KindLocal
	KindNorth
	KindSouth
	KindEast
	KindWest
	KindAgg
	KindEdge
	KindCore
	KindNamed
)

var kindNames = map[DirectionKind]string{
	KindUnknown: "Unknown",
	KindLocal:   "Local",
	KindNorth:   "North",
	KindSouth:   "South",
	KindEast:    "East",
	KindWest:    "West",
	KindAgg:     "Agg",
	KindEdge:    "Edge",
	KindCore:    "Core",
}

// Direction is the parsed form of a symbolic port direction such as "North"
// or "Agg3". Directions are comparable and can be used as map keys.
type Direction struct {
	Kind  DirectionKind
	Index int
	name  string
}

// Frequently used directions.
var (
	Unknown = Direction{Kind: KindUnknown}
	Local   = Direction{Kind: KindLocal}
	North   = Direction{Kind: KindNorth}
	South   = Direction{Kind: KindSouth}
	East    = Direction{Kind: KindEast}
	West    = Direction{Kind: KindWest}
)

// AggPort returns the direction toward the aggregation switch at the given
// position.
func AggPort(i int) Direction {
	return Direction{Kind: KindAgg, Index: i}
}

// EdgePort returns the direction toward the edge switch at the given
// position.
func EdgePort(i int) Direction {
	return Direction{Kind: KindEdge, Index: i}
}

// CorePort returns the direction toward the core switch at the given
// position.
func CorePort(i int) Direction {
	return Direction{Kind: KindCore, Index: i}
}

// ParseDirection converts the string form used by topology descriptions into
// a Direction. Names that are not recognized become named directions that
// only compare equal to the same name. The Unknown sentinel is never parsed.
func ParseDirection(s string) Direction {
	for kind, name := range kindNames {
		switch kind {
		case KindUnknown:
			continue
		case KindAgg, KindEdge, KindCore:
			if idx, ok := indexedSuffix(s, name); ok {
				return Direction{Kind: kind, Index: idx}
			}
		default:
			if s == name {
				return Direction{Kind: kind}
			}
		}
	}

	return Direction{Kind: KindNamed, name: s}
}

func indexedSuffix(s, prefix string) (int, bool) {
	if !strings.HasPrefix(s, prefix) || len(s) == len(prefix) {
		return 0, false
	}

	suffix := s[len(prefix):]
	if len(suffix) > 1 && suffix[0] == '0' {
		return 0, false
	}

	for _, c := range suffix {
		if c < '0' || c > '9' {
			return 0, false
		}
	}

	idx, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}

	return idx, true
}

// String returns the protocol form of the direction.
func (d Direction) String() string {
	switch d.Kind {
	case KindAgg, KindEdge, KindCore:
		return kindNames[d.Kind] + strconv.Itoa(d.Index)
	case KindNamed:
		return d.name
	default:
		return kindNames[d.Kind]
	}
}
