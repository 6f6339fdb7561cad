package gridsheet

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frozenLayout builds the geometry most tests share: two frozen rows, one
// frozen column, row 3 and column 2 hidden.
func frozenLayout(t *testing.T) *Layout {
	t.Helper()
	s := NewSheet(1, "Sheet1")
	require.NoError(t, s.SetFrozenRows(2))
	require.NoError(t, s.SetFrozenCols(1))
	s.SetRowHidden(3, true)
	s.SetColHidden(2, true)
	return NewLayout(s)
}

func TestHitTestRoundTrip(t *testing.T) {
	l := frozenLayout(t)

	viewports := []Viewport{
		{Width: 800, Height: 600},
		{ScrollX: 120, ScrollY: 48, Width: 800, Height: 600},
		{ScrollX: 250, ScrollY: 100, Width: 800, Height: 600},
	}
	cells := [][2]int{
		{0, 0}, // top-left region
		{1, 0},
		{0, 5}, // top region
		{5, 0}, // left region
		{5, 4}, // main region
		{10, 6},
	}

	for _, vp := range viewports {
		for _, cell := range cells {
			row, col := cell[0], cell[1]
			name := fmt.Sprintf("scroll(%v,%v) cell(%d,%d)", vp.ScrollX, vp.ScrollY, row, col)

			bounds, visible := l.CellBounds(vp, row, col)
			require.True(t, visible, name)
			cx := bounds.X + bounds.W/2
			cy := bounds.Y + bounds.H/2

			// points scrolled under the frozen block or the headers are
			// occluded and legitimately hit the cell covering them instead
			if cx < l.HeaderWidth+l.frozenWidth() && col >= l.Sheet.FrozenCols() {
				continue
			}
			if cy < l.HeaderHeight+l.frozenHeight() && row >= l.Sheet.FrozenRows() {
				continue
			}

			gotRow, gotCol, ok := l.CellAt(vp, cx, cy)
			require.True(t, ok, name)
			assert.Equal(t, row, gotRow, name)
			assert.Equal(t, col, gotCol, name)
		}
	}
}

func TestFrozenCellsIgnoreScroll(t *testing.T) {
	l := frozenLayout(t)

	still := Viewport{Width: 800, Height: 600}
	scrolled := Viewport{ScrollX: 300, ScrollY: 200, Width: 800, Height: 600}

	frozenBefore, _ := l.CellBounds(still, 1, 0)
	frozenAfter, _ := l.CellBounds(scrolled, 1, 0)
	assert.Equal(t, frozenBefore, frozenAfter, "frozen cell position is scroll-invariant")

	mainBefore, _ := l.CellBounds(still, 5, 5)
	mainAfter, _ := l.CellBounds(scrolled, 5, 5)
	assert.NotEqual(t, mainBefore.X, mainAfter.X)
	assert.NotEqual(t, mainBefore.Y, mainAfter.Y)
}

func TestHiddenContributeZero(t *testing.T) {
	l := frozenLayout(t)
	vp := Viewport{Width: 800, Height: 600}

	// row 3 hidden: row 4 sits where row 3 would have
	top4 := l.rowTop(vp, 4)
	top3 := l.rowTop(vp, 3)
	assert.Equal(t, top3, top4)

	_, visible := l.CellBounds(vp, 3, 0)
	assert.False(t, visible)

	// hit-testing never returns a hidden index
	for y := l.HeaderHeight; y < 300; y += 7 {
		if row, _, ok := l.CellAt(vp, 100, y); ok {
			assert.NotEqual(t, 3, row, "hidden row must not be hit at y=%v", y)
		}
	}
}

func TestRangeBounds(t *testing.T) {
	s := NewSheet(1, "Sheet1")
	l := NewLayout(s)
	vp := Viewport{Width: 800, Height: 600}

	t.Run("plain rectangle", func(t *testing.T) {
		bounds, ok := l.RangeBounds(vp, RangeRef{SheetID: 1, StartRow: 0, StartCol: 0, EndRow: 1, EndCol: 1})
		require.True(t, ok)
		assert.Equal(t, Rect{X: l.HeaderWidth, Y: l.HeaderHeight, W: 200, H: 48}, bounds)
	})

	t.Run("fully hidden range has no bounds", func(t *testing.T) {
		s.SetRowHidden(10, true)
		s.SetRowHidden(11, true)
		_, ok := l.RangeBounds(vp, RangeRef{SheetID: 1, StartRow: 10, StartCol: 0, EndRow: 11, EndCol: 3})
		assert.False(t, ok)
	})

	t.Run("single visible member yields that member's bounds", func(t *testing.T) {
		s.SetRowHidden(20, true)
		s.SetRowHidden(22, true)
		bounds, ok := l.RangeBounds(vp, RangeRef{SheetID: 1, StartRow: 20, StartCol: 0, EndRow: 22, EndCol: 0})
		require.True(t, ok)
		cell, _ := l.CellBounds(vp, 21, 0)
		assert.Equal(t, cell, bounds)
	})
}

func TestHeaderHitTesting(t *testing.T) {
	s := NewSheet(1, "Sheet1")
	l := NewLayout(s)
	vp := Viewport{Width: 800, Height: 600}

	t.Run("column header", func(t *testing.T) {
		hit, ok := l.HeaderAt(vp, l.HeaderWidth+50, 10)
		require.True(t, ok)
		assert.Equal(t, AxisCol, hit.Axis)
		assert.Equal(t, 0, hit.Index)
		assert.False(t, hit.OnResizeHandle)
	})

	t.Run("column resize edge", func(t *testing.T) {
		edge := l.HeaderWidth + DefaultColWidth
		hit, ok := l.HeaderAt(vp, edge-2, 10)
		require.True(t, ok)
		assert.Equal(t, AxisCol, hit.Axis)
		assert.Equal(t, 0, hit.Index)
		assert.True(t, hit.OnResizeHandle)

		// outside the tolerance the hit is a plain header cell
		hit, ok = l.HeaderAt(vp, edge-DefaultResizeTolerance-2, 10)
		require.True(t, ok)
		assert.False(t, hit.OnResizeHandle)
	})

	t.Run("row header and resize edge", func(t *testing.T) {
		hit, ok := l.HeaderAt(vp, 10, l.HeaderHeight+10)
		require.True(t, ok)
		assert.Equal(t, AxisRow, hit.Axis)
		assert.Equal(t, 0, hit.Index)

		edge := l.HeaderHeight + DefaultRowHeight
		hit, ok = l.HeaderAt(vp, 10, edge+1)
		require.True(t, ok)
		assert.True(t, hit.OnResizeHandle)
		assert.Equal(t, 0, hit.Index)
	})

	t.Run("corner is no hit", func(t *testing.T) {
		_, ok := l.HeaderAt(vp, 10, 10)
		assert.False(t, ok)
	})
}

func TestFillHandle(t *testing.T) {
	s := NewSheet(1, "Sheet1")
	l := NewLayout(s)
	vp := Viewport{Width: 800, Height: 600}

	sel := Selection{
		Ranges: []RangeRef{{SheetID: 1, StartRow: 0, StartCol: 0, EndRow: 1, EndCol: 1}},
		Active: CellRef{SheetID: 1, Key: Key(0, 0)},
	}

	bounds, ok := l.RangeBounds(vp, sel.Ranges[0])
	require.True(t, ok)
	corner := [2]float64{bounds.X + bounds.W, bounds.Y + bounds.H}

	assert.True(t, l.FillHandleAt(vp, sel, corner[0], corner[1]))
	assert.True(t, l.FillHandleAt(vp, sel, corner[0]-2, corner[1]-2))
	assert.False(t, l.FillHandleAt(vp, sel, corner[0]+20, corner[1]))
	assert.False(t, l.FillHandleAt(vp, sel, bounds.X, bounds.Y))
}

func TestTotalSize(t *testing.T) {
	s := NewSheet(1, "Sheet1")
	l := NewLayout(s)

	baseW := l.HeaderWidth + float64(s.Cols())*DefaultColWidth
	baseH := l.HeaderHeight + float64(s.Rows())*DefaultRowHeight
	assert.Equal(t, baseW, l.TotalWidth())
	assert.Equal(t, baseH, l.TotalHeight())

	s.SetColHidden(2, true)
	require.NoError(t, s.SetRowHeight(0, 100))
	assert.Equal(t, baseW-DefaultColWidth, l.TotalWidth())
	assert.Equal(t, baseH-DefaultRowHeight+100, l.TotalHeight())
}

func TestRegionOf(t *testing.T) {
	l := frozenLayout(t)

	assert.Equal(t, RegionTopLeft, l.RegionOf(0, 0))
	assert.Equal(t, RegionTop, l.RegionOf(1, 5))
	assert.Equal(t, RegionLeft, l.RegionOf(5, 0))
	assert.Equal(t, RegionMain, l.RegionOf(5, 5))
}

func TestResizeEdgeOccludedByFrozenBlock(t *testing.T) {
	t.Run("columns", func(t *testing.T) {
		s := NewSheet(1, "Sheet1")
		require.NoError(t, s.SetFrozenCols(1))
		l := NewLayout(s)
		vp := Viewport{ScrollX: 150, Width: 800, Height: 600}

		// column 1's right edge (98) has scrolled under the frozen block
		hit, ok := l.HeaderAt(vp, 98, l.HeaderHeight/2)
		require.True(t, ok)
		assert.False(t, hit.OnResizeHandle, "occluded edge must not expose a resize handle")
		assert.Equal(t, AxisCol, hit.Axis)
		assert.Equal(t, 0, hit.Index)

		// the frozen column's own edge still resizes
		hit, ok = l.HeaderAt(vp, l.HeaderWidth+DefaultColWidth, l.HeaderHeight/2)
		require.True(t, ok)
		assert.True(t, hit.OnResizeHandle)
		assert.Equal(t, 0, hit.Index)
	})

	t.Run("rows", func(t *testing.T) {
		s := NewSheet(1, "Sheet1")
		require.NoError(t, s.SetFrozenRows(2))
		l := NewLayout(s)
		vp := Viewport{ScrollY: 30, Width: 800, Height: 600}

		// row 2's bottom edge (66) has scrolled under the frozen block
		hit, ok := l.HeaderAt(vp, l.HeaderWidth/2, 66)
		require.True(t, ok)
		assert.False(t, hit.OnResizeHandle)
		assert.Equal(t, AxisRow, hit.Axis)
		assert.Equal(t, 1, hit.Index)

		// the frozen block's boundary edge still resizes row 1
		hit, ok = l.HeaderAt(vp, l.HeaderWidth/2, l.HeaderHeight+2*DefaultRowHeight)
		require.True(t, ok)
		assert.True(t, hit.OnResizeHandle)
		assert.Equal(t, 1, hit.Index)
	})
}
