package gridsheet

import (
	"fmt"
	"sort"
)

// default grid geometry. sizes are pixels; counts are what a fresh sheet
// reports before any explicit resize.
const (
	DefaultRowHeight = 24.0
	DefaultColWidth  = 100.0
	DefaultRowCount  = 1000
	DefaultColCount  = 26
)

// SortConfig is the persisted sort order for a sheet. sorting itself is
// driven by an external manager; the engine only stores and round-trips
// the configuration.
type SortConfig struct {
	Column    int  `json:"column"`
	Ascending bool `json:"ascending"`
	Applied   bool `json:"applied"`
}

// FilterConfig is the persisted filter for one column.
type FilterConfig struct {
	Column int      `json:"column"`
	Values []string `json:"values"` // visible values; empty means no filter
}

// Sheet is one tab: a sparse (row,col) -> cell mapping plus dimension
// overrides, hidden sets, freeze counts, and sort/filter config. all
// mutations route through the owning Workbook so history recording stays
// reliable; Sheet methods never record history themselves.
type Sheet struct {
	ID   uint32
	Name string

	cells map[CellKey]*Cell

	// sparse overrides over the sheet-wide defaults
	rowHeights map[int]float64
	colWidths  map[int]float64

	hiddenRows map[int]struct{}
	hiddenCols map[int]struct{}

	frozenRows int
	frozenCols int

	rows int
	cols int

	SortOrder SortConfig
	Filters   map[int]FilterConfig
}

// NewSheet creates an empty sheet with default dimensions.
func NewSheet(id uint32, name string) *Sheet {
	return &Sheet{
		ID:         id,
		Name:       name,
		cells:      make(map[CellKey]*Cell),
		rowHeights: make(map[int]float64),
		colWidths:  make(map[int]float64),
		hiddenRows: make(map[int]struct{}),
		hiddenCols: make(map[int]struct{}),
		rows:       DefaultRowCount,
		cols:       DefaultColCount,
		Filters:    make(map[int]FilterConfig),
	}
}

// Rows returns the total row count.
func (s *Sheet) Rows() int { return s.rows }

// Cols returns the total column count.
func (s *Sheet) Cols() int { return s.cols }

// SetDimensions resizes the grid. counts below the frozen counts are
// rejected because frozen counts must stay strictly less than totals.
func (s *Sheet) SetDimensions(rows, cols int) error {
	if rows < 1 || cols < 1 {
		return NewAppError(InvalidArgument, "sheet dimensions must be positive")
	}
	if rows <= s.frozenRows || cols <= s.frozenCols {
		return NewAppError(FailedPrecondition, "dimensions cannot shrink below frozen counts")
	}
	s.rows = rows
	s.cols = cols
	return nil
}

// GetCell retrieves a cell by (row, col). returns nil when no record exists.
func (s *Sheet) GetCell(row, col int) *Cell {
	return s.cells[Key(row, col)]
}

// SetCell merges the supplied patch into any existing record rather than
// replacing it wholesale. a record is created on first write.
func (s *Sheet) SetCell(row, col int, patch CellPatch) *Cell {
	key := Key(row, col)
	cell, exists := s.cells[key]
	if !exists {
		cell = &Cell{}
		s.cells[key] = cell
	}
	patch.apply(cell)
	return cell
}

// DeleteCell removes the mapping entry entirely (not tombstoned).
func (s *Sheet) DeleteCell(row, col int) {
	delete(s.cells, Key(row, col))
}

// CellCount returns the number of cell records.
func (s *Sheet) CellCount() int {
	return len(s.cells)
}

// Keys returns all occupied cell keys in row-major order.
func (s *Sheet) Keys() []CellKey {
	keys := make([]CellKey, 0, len(s.cells))
	for k := range s.cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// GetRange returns the cells of a rectangle in row-major order. absent
// cells yield nil entries.
func (s *Sheet) GetRange(startRow, startCol, endRow, endCol int) []*Cell {
	result := make([]*Cell, 0, (endRow-startRow+1)*(endCol-startCol+1))
	for row := startRow; row <= endRow; row++ {
		for col := startCol; col <= endCol; col++ {
			result = append(result, s.GetCell(row, col))
		}
	}
	return result
}

// SetRange merges the same patch into every cell of the rectangle in
// row-major order.
func (s *Sheet) SetRange(startRow, startCol, endRow, endCol int, patch CellPatch) {
	for row := startRow; row <= endRow; row++ {
		for col := startCol; col <= endCol; col++ {
			s.SetCell(row, col, patch)
		}
	}
}

// ClearRange removes every cell record inside the rectangle.
func (s *Sheet) ClearRange(startRow, startCol, endRow, endCol int) {
	for row := startRow; row <= endRow; row++ {
		for col := startCol; col <= endCol; col++ {
			s.DeleteCell(row, col)
		}
	}
}

// InsertRows shifts every cell with row >= at down by count. size overrides
// and hidden-row membership shift with the cells. O(affected cells) per
// call, a known scaling limit for very large sheets.
func (s *Sheet) InsertRows(at, count int) error {
	if at < 0 || count < 1 {
		return NewAppError(InvalidArgument, "invalid insert position or count")
	}

	moved := s.collectCells(func(k CellKey) bool { return k.Row() >= at })
	for _, kc := range moved {
		delete(s.cells, kc.key)
	}
	for _, kc := range moved {
		s.cells[Key(kc.key.Row()+count, kc.key.Col())] = kc.cell
	}

	s.rowHeights = shiftIndexMap(s.rowHeights, at, count)
	s.hiddenRows = shiftIndexSet(s.hiddenRows, at, count)
	s.rows += count
	if at < s.frozenRows {
		s.frozenRows += count
	}
	return nil
}

// DeleteRows first removes all cells with row in [at, at+count), then shifts
// every remaining cell with row >= at+count up by count.
func (s *Sheet) DeleteRows(at, count int) error {
	if at < 0 || count < 1 {
		return NewAppError(InvalidArgument, "invalid delete position or count")
	}
	if s.rows-count < 1 {
		return NewAppError(FailedPrecondition, "cannot delete all rows")
	}

	for _, kc := range s.collectCells(func(k CellKey) bool { return k.Row() >= at && k.Row() < at+count }) {
		delete(s.cells, kc.key)
	}

	moved := s.collectCells(func(k CellKey) bool { return k.Row() >= at+count })
	for _, kc := range moved {
		delete(s.cells, kc.key)
	}
	for _, kc := range moved {
		s.cells[Key(kc.key.Row()-count, kc.key.Col())] = kc.cell
	}

	s.rowHeights = unshiftIndexMap(s.rowHeights, at, count)
	s.hiddenRows = unshiftIndexSet(s.hiddenRows, at, count)
	s.rows -= count
	if s.frozenRows > at {
		s.frozenRows -= min(count, s.frozenRows-at)
	}
	if s.frozenRows >= s.rows {
		s.frozenRows = s.rows - 1
	}
	return nil
}

// InsertCols shifts every cell with col >= at right by count.
func (s *Sheet) InsertCols(at, count int) error {
	if at < 0 || count < 1 {
		return NewAppError(InvalidArgument, "invalid insert position or count")
	}

	moved := s.collectCells(func(k CellKey) bool { return k.Col() >= at })
	for _, kc := range moved {
		delete(s.cells, kc.key)
	}
	for _, kc := range moved {
		s.cells[Key(kc.key.Row(), kc.key.Col()+count)] = kc.cell
	}

	s.colWidths = shiftIndexMap(s.colWidths, at, count)
	s.hiddenCols = shiftIndexSet(s.hiddenCols, at, count)
	s.cols += count
	if at < s.frozenCols {
		s.frozenCols += count
	}
	return nil
}

// DeleteCols removes cells with col in [at, at+count) and shifts the rest
// left by count.
func (s *Sheet) DeleteCols(at, count int) error {
	if at < 0 || count < 1 {
		return NewAppError(InvalidArgument, "invalid delete position or count")
	}
	if s.cols-count < 1 {
		return NewAppError(FailedPrecondition, "cannot delete all columns")
	}

	for _, kc := range s.collectCells(func(k CellKey) bool { return k.Col() >= at && k.Col() < at+count }) {
		delete(s.cells, kc.key)
	}

	moved := s.collectCells(func(k CellKey) bool { return k.Col() >= at+count })
	for _, kc := range moved {
		delete(s.cells, kc.key)
	}
	for _, kc := range moved {
		s.cells[Key(kc.key.Row(), kc.key.Col()-count)] = kc.cell
	}

	s.colWidths = unshiftIndexMap(s.colWidths, at, count)
	s.hiddenCols = unshiftIndexSet(s.hiddenCols, at, count)
	s.cols -= count
	if s.frozenCols > at {
		s.frozenCols -= min(count, s.frozenCols-at)
	}
	if s.frozenCols >= s.cols {
		s.frozenCols = s.cols - 1
	}
	return nil
}

// keyedCell pairs a key with its record while a row/col shift is in flight.
type keyedCell struct {
	key  CellKey
	cell *Cell
}

// collectCells gathers records matching the predicate in key order, so
// shifts can delete and reinsert them without collisions.
func (s *Sheet) collectCells(match func(CellKey) bool) []keyedCell {
	var out []keyedCell
	for k, c := range s.cells {
		if match(k) {
			out = append(out, keyedCell{key: k, cell: c})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// RowHeight returns the override for a row or the sheet-wide default.
func (s *Sheet) RowHeight(row int) float64 {
	if h, ok := s.rowHeights[row]; ok {
		return h
	}
	return DefaultRowHeight
}

// ColWidth returns the override for a column or the sheet-wide default.
func (s *Sheet) ColWidth(col int) float64 {
	if w, ok := s.colWidths[col]; ok {
		return w
	}
	return DefaultColWidth
}

// SetRowHeight stores a size override for one row.
func (s *Sheet) SetRowHeight(row int, height float64) error {
	if row < 0 || height < 0 {
		return NewAppError(InvalidArgument, "row and height must be non-negative")
	}
	s.rowHeights[row] = height
	return nil
}

// SetColWidth stores a size override for one column.
func (s *Sheet) SetColWidth(col int, width float64) error {
	if col < 0 || width < 0 {
		return NewAppError(InvalidArgument, "col and width must be non-negative")
	}
	s.colWidths[col] = width
	return nil
}

// FrozenRows returns the frozen row count.
func (s *Sheet) FrozenRows() int { return s.frozenRows }

// FrozenCols returns the frozen column count.
func (s *Sheet) FrozenCols() int { return s.frozenCols }

// SetFrozenRows sets the frozen row count. the count must be non-negative
// and strictly less than the total row count.
func (s *Sheet) SetFrozenRows(count int) error {
	if count < 0 {
		return NewAppError(InvalidArgument, "frozen row count cannot be negative")
	}
	if count >= s.rows {
		return NewAppError(OutOfRange, fmt.Sprintf("frozen row count %d must be less than total rows %d", count, s.rows))
	}
	s.frozenRows = count
	return nil
}

// SetFrozenCols sets the frozen column count. the count must be
// non-negative and strictly less than the total column count.
func (s *Sheet) SetFrozenCols(count int) error {
	if count < 0 {
		return NewAppError(InvalidArgument, "frozen column count cannot be negative")
	}
	if count >= s.cols {
		return NewAppError(OutOfRange, fmt.Sprintf("frozen column count %d must be less than total columns %d", count, s.cols))
	}
	s.frozenCols = count
	return nil
}

// SetRowHidden adds or removes a row from the hidden set. idempotent.
func (s *Sheet) SetRowHidden(row int, hidden bool) {
	if hidden {
		s.hiddenRows[row] = struct{}{}
	} else {
		delete(s.hiddenRows, row)
	}
}

// SetColHidden adds or removes a column from the hidden set. idempotent.
func (s *Sheet) SetColHidden(col int, hidden bool) {
	if hidden {
		s.hiddenCols[col] = struct{}{}
	} else {
		delete(s.hiddenCols, col)
	}
}

// IsRowHidden reports hidden-row membership. rendering, hit-testing and
// total-size computation all consult this same predicate.
func (s *Sheet) IsRowHidden(row int) bool {
	_, hidden := s.hiddenRows[row]
	return hidden
}

// IsColHidden reports hidden-column membership.
func (s *Sheet) IsColHidden(col int) bool {
	_, hidden := s.hiddenCols[col]
	return hidden
}

// AdjacentHiddenRows walks outward from a row index until hitting visible
// neighbors, returning the contiguous hidden band [first, last] that
// contains or abuts the index. used to render the double-line hidden-band
// indicator. returns ok=false when no adjacent row is hidden.
func (s *Sheet) AdjacentHiddenRows(row int) (first, last int, ok bool) {
	return adjacentHidden(row, s.IsRowHidden)
}

// AdjacentHiddenCols is the column-axis analog of AdjacentHiddenRows.
func (s *Sheet) AdjacentHiddenCols(col int) (first, last int, ok bool) {
	return adjacentHidden(col, s.IsColHidden)
}

func adjacentHidden(idx int, hidden func(int) bool) (int, int, bool) {
	start := idx
	if !hidden(start) {
		// check the immediate neighbors so a visible boundary index still
		// reports the band it touches
		switch {
		case hidden(start + 1):
			start = start + 1
		case start > 0 && hidden(start-1):
			start = start - 1
		default:
			return 0, 0, false
		}
	}

	first, last := start, start
	for first > 0 && hidden(first-1) {
		first--
	}
	for hidden(last + 1) {
		last++
	}
	return first, last, true
}

// Clone returns a deep copy of the sheet.
func (s *Sheet) Clone() *Sheet {
	dup := NewSheet(s.ID, s.Name)
	dup.rows = s.rows
	dup.cols = s.cols
	dup.frozenRows = s.frozenRows
	dup.frozenCols = s.frozenCols
	dup.SortOrder = s.SortOrder
	for k, c := range s.cells {
		dup.cells[k] = c.Clone()
	}
	for i, v := range s.rowHeights {
		dup.rowHeights[i] = v
	}
	for i, v := range s.colWidths {
		dup.colWidths[i] = v
	}
	for i := range s.hiddenRows {
		dup.hiddenRows[i] = struct{}{}
	}
	for i := range s.hiddenCols {
		dup.hiddenCols[i] = struct{}{}
	}
	for i, f := range s.Filters {
		vals := make([]string, len(f.Values))
		copy(vals, f.Values)
		dup.Filters[i] = FilterConfig{Column: f.Column, Values: vals}
	}
	return dup
}

func shiftIndexMap(m map[int]float64, at, count int) map[int]float64 {
	out := make(map[int]float64, len(m))
	for i, v := range m {
		if i >= at {
			out[i+count] = v
		} else {
			out[i] = v
		}
	}
	return out
}

func unshiftIndexMap(m map[int]float64, at, count int) map[int]float64 {
	out := make(map[int]float64, len(m))
	for i, v := range m {
		switch {
		case i >= at+count:
			out[i-count] = v
		case i < at:
			out[i] = v
		}
	}
	return out
}

func shiftIndexSet(m map[int]struct{}, at, count int) map[int]struct{} {
	out := make(map[int]struct{}, len(m))
	for i := range m {
		if i >= at {
			out[i+count] = struct{}{}
		} else {
			out[i] = struct{}{}
		}
	}
	return out
}

func unshiftIndexSet(m map[int]struct{}, at, count int) map[int]struct{} {
	out := make(map[int]struct{}, len(m))
	for i := range m {
		switch {
		case i >= at+count:
			out[i-count] = struct{}{}
		case i < at:
			out[i] = struct{}{}
		}
	}
	return out
}
