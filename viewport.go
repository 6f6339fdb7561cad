package gridsheet

// Viewport is the visible window over a sheet: scroll offsets apply to the
// scrollable regions only, never to frozen rows/columns.
type Viewport struct {
	ScrollX float64
	ScrollY float64
	Width   float64
	Height  float64
}

// Region classifies a cell into one of the four freeze quadrants.
type Region int

const (
	RegionTopLeft Region = iota // both axes frozen
	RegionTop                   // rows frozen, columns scroll
	RegionLeft                  // columns frozen, rows scroll
	RegionMain                  // both axes scroll
)

// Axis identifies which header strip a hit landed in.
type Axis int

const (
	AxisRow Axis = iota
	AxisCol
)

// Rect is a pixel rectangle in viewport space.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Contains reports whether the point falls inside the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// HeaderHit is the result of hit-testing the header strips.
type HeaderHit struct {
	Axis           Axis
	Index          int
	OnResizeHandle bool
}

// layout defaults, pixels.
const (
	DefaultHeaderWidth     = 48.0
	DefaultHeaderHeight    = 24.0
	DefaultResizeTolerance = 4.0
	DefaultFillHandleSize  = 6.0
)

// Layout binds a sheet to the freeze-pane coordinate system. the same
// per-axis rule backs painting, pointer hit-testing, and selection/fill-
// handle bounds: a frozen index accumulates sizes from 0 with no scroll
// subtraction; a scrollable index accumulates from the frozen boundary and
// subtracts the axis scroll; hidden indices contribute zero size in every
// accumulation pass.
type Layout struct {
	Sheet *Sheet

	HeaderWidth     float64 // row-header strip on the left
	HeaderHeight    float64 // column-header strip on top
	ResizeTolerance float64
	FillHandleSize  float64
}

// NewLayout binds a layout to a sheet with default header metrics.
func NewLayout(sheet *Sheet) *Layout {
	return &Layout{
		Sheet:           sheet,
		HeaderWidth:     DefaultHeaderWidth,
		HeaderHeight:    DefaultHeaderHeight,
		ResizeTolerance: DefaultResizeTolerance,
		FillHandleSize:  DefaultFillHandleSize,
	}
}

// RegionOf classifies a cell by the sheet's frozen counts.
func (l *Layout) RegionOf(row, col int) Region {
	rowFrozen := row < l.Sheet.FrozenRows()
	colFrozen := col < l.Sheet.FrozenCols()
	switch {
	case rowFrozen && colFrozen:
		return RegionTopLeft
	case rowFrozen:
		return RegionTop
	case colFrozen:
		return RegionLeft
	default:
		return RegionMain
	}
}

// rowHeight and colWidth fold the hidden sets into the size lookup so every
// accumulation below consults hidden membership through one path.
func (l *Layout) rowHeight(row int) float64 {
	if l.Sheet.IsRowHidden(row) {
		return 0
	}
	return l.Sheet.RowHeight(row)
}

func (l *Layout) colWidth(col int) float64 {
	if l.Sheet.IsColHidden(col) {
		return 0
	}
	return l.Sheet.ColWidth(col)
}

// frozenHeight is the pixel size of the frozen row block.
func (l *Layout) frozenHeight() float64 {
	sum := 0.0
	for r := 0; r < l.Sheet.FrozenRows(); r++ {
		sum += l.rowHeight(r)
	}
	return sum
}

// frozenWidth is the pixel size of the frozen column block.
func (l *Layout) frozenWidth() float64 {
	sum := 0.0
	for c := 0; c < l.Sheet.FrozenCols(); c++ {
		sum += l.colWidth(c)
	}
	return sum
}

// rowTop is the per-axis coordinate rule for rows. linear scan from the
// region boundary to the target; prefix sums would cut this for very large
// sheets.
func (l *Layout) rowTop(vp Viewport, row int) float64 {
	pos := l.HeaderHeight
	frozen := l.Sheet.FrozenRows()
	if row < frozen {
		for r := 0; r < row; r++ {
			pos += l.rowHeight(r)
		}
		return pos
	}
	pos += l.frozenHeight() - vp.ScrollY
	for r := frozen; r < row; r++ {
		pos += l.rowHeight(r)
	}
	return pos
}

// colLeft is the column-axis analog of rowTop.
func (l *Layout) colLeft(vp Viewport, col int) float64 {
	pos := l.HeaderWidth
	frozen := l.Sheet.FrozenCols()
	if col < frozen {
		for c := 0; c < col; c++ {
			pos += l.colWidth(c)
		}
		return pos
	}
	pos += l.frozenWidth() - vp.ScrollX
	for c := frozen; c < col; c++ {
		pos += l.colWidth(c)
	}
	return pos
}

// CellBounds returns a cell's pixel rectangle under the viewport. a hidden
// cell reports ok=false with a zero-size rectangle at its collapsed
// position.
func (l *Layout) CellBounds(vp Viewport, row, col int) (Rect, bool) {
	rect := Rect{
		X: l.colLeft(vp, col),
		Y: l.rowTop(vp, row),
		W: l.colWidth(col),
		H: l.rowHeight(row),
	}
	if l.Sheet.IsRowHidden(row) || l.Sheet.IsColHidden(col) {
		return Rect{X: rect.X, Y: rect.Y}, false
	}
	return rect, true
}

// RangeBounds returns the pixel bounding box of a range. each axis
// independently clamps to its visible members; a range entirely inside
// hidden rows or columns reports ok=false with a zero-size rectangle.
func (l *Layout) RangeBounds(vp Viewport, r RangeRef) (Rect, bool) {
	r = r.Normalize()

	firstRow, lastRow := -1, -1
	for row := r.StartRow; row <= r.EndRow; row++ {
		if l.Sheet.IsRowHidden(row) {
			continue
		}
		if firstRow < 0 {
			firstRow = row
		}
		lastRow = row
	}
	firstCol, lastCol := -1, -1
	for col := r.StartCol; col <= r.EndCol; col++ {
		if l.Sheet.IsColHidden(col) {
			continue
		}
		if firstCol < 0 {
			firstCol = col
		}
		lastCol = col
	}
	if firstRow < 0 || firstCol < 0 {
		return Rect{}, false
	}

	x := l.colLeft(vp, firstCol)
	y := l.rowTop(vp, firstRow)
	return Rect{
		X: x,
		Y: y,
		W: l.colLeft(vp, lastCol) + l.colWidth(lastCol) - x,
		H: l.rowTop(vp, lastRow) + l.rowHeight(lastRow) - y,
	}, true
}

// CellAt maps a pixel point back to a (row, col). points inside the header
// strips or past the grid report ok=false. the point is classified per axis
// into the frozen block or the scrolled remainder, then walked with the
// same accumulation rule the forward mapping uses.
func (l *Layout) CellAt(vp Viewport, x, y float64) (row, col int, ok bool) {
	if x < l.HeaderWidth || y < l.HeaderHeight {
		return 0, 0, false
	}
	row, ok = l.rowAt(vp, y)
	if !ok {
		return 0, 0, false
	}
	col, ok = l.colAt(vp, x)
	if !ok {
		return 0, 0, false
	}
	return row, col, true
}

func (l *Layout) rowAt(vp Viewport, y float64) (int, bool) {
	offset := y - l.HeaderHeight
	frozen := l.Sheet.FrozenRows()
	frozenH := l.frozenHeight()

	if offset < frozenH {
		pos := 0.0
		for r := 0; r < frozen; r++ {
			h := l.rowHeight(r)
			if h > 0 && offset < pos+h {
				return r, true
			}
			pos += h
		}
		return 0, false
	}

	target := offset - frozenH + vp.ScrollY
	pos := 0.0
	for r := frozen; r < l.Sheet.Rows(); r++ {
		h := l.rowHeight(r)
		if h > 0 && target < pos+h {
			return r, true
		}
		pos += h
	}
	return 0, false
}

func (l *Layout) colAt(vp Viewport, x float64) (int, bool) {
	offset := x - l.HeaderWidth
	frozen := l.Sheet.FrozenCols()
	frozenW := l.frozenWidth()

	if offset < frozenW {
		pos := 0.0
		for c := 0; c < frozen; c++ {
			w := l.colWidth(c)
			if w > 0 && offset < pos+w {
				return c, true
			}
			pos += w
		}
		return 0, false
	}

	target := offset - frozenW + vp.ScrollX
	pos := 0.0
	for c := frozen; c < l.Sheet.Cols(); c++ {
		w := l.colWidth(c)
		if w > 0 && target < pos+w {
			return c, true
		}
		pos += w
	}
	return 0, false
}

// HeaderAt hit-tests the header strips. a boundary within the resize
// tolerance wins over the header cell that contains the point, so resize
// grabs work at the very edge of a header cell.
func (l *Layout) HeaderAt(vp Viewport, x, y float64) (HeaderHit, bool) {
	inColHeader := y < l.HeaderHeight && x >= l.HeaderWidth
	inRowHeader := x < l.HeaderWidth && y >= l.HeaderHeight

	switch {
	case inColHeader:
		if col, onEdge := l.resizeEdgeCol(vp, x); onEdge {
			return HeaderHit{Axis: AxisCol, Index: col, OnResizeHandle: true}, true
		}
		if col, ok := l.colAt(vp, x); ok {
			return HeaderHit{Axis: AxisCol, Index: col}, true
		}
	case inRowHeader:
		if row, onEdge := l.resizeEdgeRow(vp, y); onEdge {
			return HeaderHit{Axis: AxisRow, Index: row, OnResizeHandle: true}, true
		}
		if row, ok := l.rowAt(vp, y); ok {
			return HeaderHit{Axis: AxisRow, Index: row}, true
		}
	}
	return HeaderHit{}, false
}

// resizeEdgeCol finds a visible column whose right edge lies within the
// resize tolerance of x. a scrollable column whose edge has scrolled under
// the frozen block is occluded and never matches.
func (l *Layout) resizeEdgeCol(vp Viewport, x float64) (int, bool) {
	frozenEnd := l.HeaderWidth + l.frozenWidth()
	for c := 0; c < l.Sheet.Cols(); c++ {
		w := l.colWidth(c)
		if w == 0 {
			continue
		}
		edge := l.colLeft(vp, c) + w
		if c >= l.Sheet.FrozenCols() && edge < frozenEnd {
			continue
		}
		if edge > vp.Width {
			break
		}
		if x >= edge-l.ResizeTolerance && x <= edge+l.ResizeTolerance {
			return c, true
		}
	}
	return 0, false
}

// resizeEdgeRow finds a visible row whose bottom edge lies within the
// resize tolerance of y.
func (l *Layout) resizeEdgeRow(vp Viewport, y float64) (int, bool) {
	frozenEnd := l.HeaderHeight + l.frozenHeight()
	for r := 0; r < l.Sheet.Rows(); r++ {
		h := l.rowHeight(r)
		if h == 0 {
			continue
		}
		edge := l.rowTop(vp, r) + h
		if r >= l.Sheet.FrozenRows() && edge < frozenEnd {
			continue
		}
		if edge > vp.Height {
			break
		}
		if y >= edge-l.ResizeTolerance && y <= edge+l.ResizeTolerance {
			return r, true
		}
	}
	return 0, false
}

// FillHandleBounds is the small square anchored at the bottom-right corner
// of the selection's last range (or the active cell when no range exists).
func (l *Layout) FillHandleBounds(vp Viewport, sel Selection) (Rect, bool) {
	var bounds Rect
	var ok bool
	if len(sel.Ranges) > 0 {
		bounds, ok = l.RangeBounds(vp, sel.Ranges[len(sel.Ranges)-1])
	} else {
		row, col := sel.Active.Key.RowCol()
		bounds, ok = l.CellBounds(vp, row, col)
	}
	if !ok {
		return Rect{}, false
	}
	half := l.FillHandleSize / 2
	return Rect{
		X: bounds.X + bounds.W - half,
		Y: bounds.Y + bounds.H - half,
		W: l.FillHandleSize,
		H: l.FillHandleSize,
	}, true
}

// FillHandleAt reports whether a pixel point lands on the fill handle.
func (l *Layout) FillHandleAt(vp Viewport, sel Selection, x, y float64) bool {
	handle, ok := l.FillHandleBounds(vp, sel)
	return ok && handle.Contains(x, y)
}

// TotalWidth is the header strip plus the visible width of every column.
func (l *Layout) TotalWidth() float64 {
	sum := l.HeaderWidth
	for c := 0; c < l.Sheet.Cols(); c++ {
		sum += l.colWidth(c)
	}
	return sum
}

// TotalHeight is the header strip plus the visible height of every row.
func (l *Layout) TotalHeight() float64 {
	sum := l.HeaderHeight
	for r := 0; r < l.Sheet.Rows(); r++ {
		sum += l.rowHeight(r)
	}
	return sum
}
