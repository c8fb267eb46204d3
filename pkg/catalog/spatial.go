package catalog

// SpatialIndex maps grid cells to distribution indexes. It is sparse:
// unoccupied rows and columns have no entry.
type SpatialIndex struct {
	rows  map[int]map[int]int
	cells int
}

func newSpatialIndex() SpatialIndex {
	return SpatialIndex{rows: make(map[int]map[int]int)}
}

// Lookup returns the distribution index at (row, col).
func (s SpatialIndex) Lookup(row, col int) (int, bool) {
	cols, ok := s.rows[row]
	if !ok {
		return 0, false
	}
	i, ok := cols[col]
	return i, ok
}

// Cells returns the number of occupied cells.
func (s SpatialIndex) Cells() int { return s.cells }

// set places index at (row, col) and returns the previous occupant, if any.
// The new index always wins.
func (s *SpatialIndex) set(row, col, index int) (prev int, collided bool) {
	cols, ok := s.rows[row]
	if !ok {
		cols = make(map[int]int)
		s.rows[row] = cols
	}
	prev, collided = cols[col]
	if !collided {
		s.cells++
	}
	cols[col] = index
	return prev, collided
}

// bounds returns the largest occupied row and column, or -1 when empty.
func (s SpatialIndex) bounds() (maxRow, maxCol int) {
	maxRow, maxCol = -1, -1
	for row, cols := range s.rows {
		maxRow = max(maxRow, row)
		for col := range cols {
			maxCol = max(maxCol, col)
		}
	}
	return maxRow, maxCol
}
