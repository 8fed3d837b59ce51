package beamplan

// NeighbourCount is the size of the reuse cluster around a beam, excluding
// the beam itself.
const NeighbourCount = 18

// How far the template reaches from the centre. Grid padding must cover
// this so neighbour lookups never leave the array.
const (
	maxRowReach = 2
	maxColReach = 4
)

// neighbourOffsets is the fixed 18-point reuse template. It encodes the
// payload's frequency-reuse scheme and must not be altered: changing the
// layout changes the interference model. Order matches the original scheme
// definition.
var neighbourOffsets = [NeighbourCount][2]int{
	{-1, -1}, {-1, 1}, {-1, -3}, {-1, 3},
	{1, -1}, {1, 1}, {1, -3}, {1, 3},
	{0, -2}, {0, 2}, {0, -4}, {0, 4},
	{-2, -1}, {-2, 0}, {-2, 1},
	{2, -1}, {2, 0}, {2, 1},
}

// NeighbourCoords returns the 18 beams whose channel usage interferes with
// centre. Pure and deterministic; duplicate-free; never includes centre.
// Callers must only pass coordinates whose full cluster lies inside the
// padded grid, which PlanConfig.InRange guarantees for valid geometries.
func NeighbourCoords(centre BeamCoord) [NeighbourCount]BeamCoord {
	var coords [NeighbourCount]BeamCoord
	for i, off := range neighbourOffsets {
		coords[i] = BeamCoord{Row: centre.Row + off[0], Col: centre.Col + off[1]}
	}
	return coords
}

// AreNeighbours reports whether b is in the reuse cluster of a. The
// template is symmetric, so the relation is too.
func AreNeighbours(a, b BeamCoord) bool {
	for _, off := range neighbourOffsets {
		if a.Row+off[0] == b.Row && a.Col+off[1] == b.Col {
			return true
		}
	}
	return false
}
