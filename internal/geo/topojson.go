package geo

// DecodeArc turns a delta encoded arc into absolute positions.
//
// Each delta is added to a cursor that starts at (0, 0) for every arc, and
// the running cursor is mapped through t. The result never aliases arc.
func DecodeArc(arc Arc, t Transform) Line {
	line := make(Line, len(arc))

	var x, y float64
	for i, delta := range arc {
		x += delta[0]
		y += delta[1]
		line[i] = t.Apply(x, y)
	}

	return line
}

// DecodeArcs decodes every arc of the topology in order.
func (t *Topology) DecodeArcs() []Line {
	lines := make([]Line, len(t.Arcs))
	for i, arc := range t.Arcs {
		lines[i] = DecodeArc(arc, t.Transform)
	}
	return lines
}
