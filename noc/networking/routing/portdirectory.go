package routing

// PortDirectory maps port directions to port indices and back. It is filled
// while the topology is built and is read-only afterward.
type PortDirectory struct {
	inByDirn  map[Direction]int
	inByIdx   []Direction
	outByDirn map[Direction]int
	outByIdx  []Direction
}

// NewPortDirectory creates an empty PortDirectory.
func NewPortDirectory() *PortDirectory {
	return &PortDirectory{
		inByDirn:  make(map[Direction]int),
		outByDirn: make(map[Direction]int),
	}
}

// AddInDirection registers an input port. Registering a direction again
// makes it refer to the newest index.
func (d *PortDirectory) AddInDirection(dirn Direction, idx int) {
	mustBeValidPortIndex(idx)

	d.inByDirn[dirn] = idx
	d.inByIdx = place(d.inByIdx, idx, dirn)
}

// AddOutDirection registers an output port. Several ports may share the
// Local direction; lookups by direction then return the newest index.
func (d *PortDirectory) AddOutDirection(dirn Direction, idx int) {
	mustBeValidPortIndex(idx)

	d.outByDirn[dirn] = idx
	d.outByIdx = place(d.outByIdx, idx, dirn)
}

func mustBeValidPortIndex(idx int) {
	if idx < 0 {
		panic("port index cannot be negative")
	}
}

func place(s []Direction, idx int, dirn Direction) []Direction {
	for len(s) <= idx {
		s = append(s, Unknown)
	}

	s[idx] = dirn

	return s
}

// Outport returns the output port registered for the direction.
func (d *PortDirectory) Outport(dirn Direction) (int, bool) {
	idx, ok := d.outByDirn[dirn]
	return idx, ok
}

// Inport returns the input port registered for the direction.
func (d *PortDirectory) Inport(dirn Direction) (int, bool) {
	idx, ok := d.inByDirn[dirn]
	return idx, ok
}

// OutDirection returns the direction of an output port, or Unknown.
func (d *PortDirectory) OutDirection(idx int) Direction {
	if idx < 0 || idx >= len(d.outByIdx) {
		return Unknown
	}

	return d.outByIdx[idx]
}

// InDirection returns the direction of an input port, or Unknown.
func (d *PortDirectory) InDirection(idx int) Direction {
	if idx < 0 || idx >= len(d.inByIdx) {
		return Unknown
	}

	return d.inByIdx[idx]
}

// HasOutport tells if an output port with the index has been registered.
func (d *PortDirectory) HasOutport(idx int) bool {
	return d.OutDirection(idx) != Unknown
}

// NumOutports returns one more than the largest registered output index.
func (d *PortDirectory) NumOutports() int {
	return len(d.outByIdx)
}

// NumInports returns one more than the largest registered input index.
func (d *PortDirectory) NumInports() int {
	return len(d.inByIdx)
}
