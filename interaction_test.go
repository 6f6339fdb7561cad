package gridsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cellCenter returns the pointer position at the middle of a cell on the
// default unscrolled layout.
func cellCenter(l *Layout, row, col int) (float64, float64) {
	x := l.HeaderWidth + float64(col)*DefaultColWidth + DefaultColWidth/2
	y := l.HeaderHeight + float64(row)*DefaultRowHeight + DefaultRowHeight/2
	return x, y
}

func newInteractionFixture(t *testing.T) (*Workbook, *Layout, *Interaction) {
	t.Helper()
	wb := NewWorkbook()
	layout := NewLayout(wb.ActiveSheet())
	it := NewInteraction(wb, layout)
	it.SetViewport(Viewport{Width: 800, Height: 600})
	return wb, layout, it
}

func TestSelectionDrag(t *testing.T) {
	wb, layout, it := newInteractionFixture(t)
	sheetID := layout.Sheet.ID

	x, y := cellCenter(layout, 1, 1)
	it.PointerDown(x, y)
	assert.Equal(t, ModeSelecting, it.Mode())

	sel := wb.Selection()
	require.Len(t, sel.Ranges, 1)
	assert.Equal(t, RangeRef{SheetID: sheetID, StartRow: 1, StartCol: 1, EndRow: 1, EndCol: 1}, sel.Ranges[0])
	assert.Equal(t, CellRef{SheetID: sheetID, Key: Key(1, 1)}, sel.Active)

	x, y = cellCenter(layout, 3, 2)
	it.PointerMove(x, y)
	sel = wb.Selection()
	assert.Equal(t, RangeRef{SheetID: sheetID, StartRow: 1, StartCol: 1, EndRow: 3, EndCol: 2}, sel.Ranges[0])
	assert.Equal(t, Key(1, 1), sel.Active.Key, "the anchor stays active while dragging")

	// dragging above and left of the anchor keeps the range normalized
	x, y = cellCenter(layout, 0, 0)
	it.PointerMove(x, y)
	sel = wb.Selection()
	assert.Equal(t, RangeRef{SheetID: sheetID, StartRow: 0, StartCol: 0, EndRow: 1, EndCol: 1}, sel.Ranges[0])

	require.NoError(t, it.PointerUp(x, y))
	assert.Equal(t, ModeIdle, it.Mode())
	assert.False(t, wb.CanUndo(), "selection changes do not enter history")
}

func TestResizeGesture(t *testing.T) {
	wb, layout, it := newInteractionFixture(t)

	// right edge of column 0 inside the column-header strip
	edgeX := layout.HeaderWidth + DefaultColWidth
	it.PointerDown(edgeX, layout.HeaderHeight/2)
	require.Equal(t, ModeResizing, it.Mode())

	// sizes are written on every move, not just on release
	it.PointerMove(edgeX+40, layout.HeaderHeight/2)
	assert.InDelta(t, DefaultColWidth+40, layout.Sheet.ColWidth(0), 1e-10)

	it.PointerMove(edgeX-20, layout.HeaderHeight/2)
	assert.InDelta(t, DefaultColWidth-20, layout.Sheet.ColWidth(0), 1e-10)

	require.NoError(t, it.PointerUp(edgeX-20, layout.HeaderHeight/2))
	assert.Equal(t, ModeIdle, it.Mode())
	assert.InDelta(t, DefaultColWidth-20, layout.Sheet.ColWidth(0), 1e-10)

	// the whole gesture is one history entry. undo rebuilds the sheet, so
	// read back through the workbook rather than the bound layout.
	assert.Len(t, wb.undoStack, 1)
	require.True(t, wb.Undo())
	assert.InDelta(t, DefaultColWidth, wb.ActiveSheet().ColWidth(0), 1e-10)
	assert.False(t, wb.CanUndo())
}

func TestResizeClampsToZero(t *testing.T) {
	_, layout, it := newInteractionFixture(t)

	edgeY := layout.HeaderHeight + DefaultRowHeight
	it.PointerDown(layout.HeaderWidth/2, edgeY)
	require.Equal(t, ModeResizing, it.Mode())

	it.PointerMove(layout.HeaderWidth/2, edgeY-200)
	assert.Zero(t, layout.Sheet.RowHeight(0))
}

func TestFillGesture(t *testing.T) {
	wb, layout, it := newInteractionFixture(t)

	require.NoError(t, wb.Set("A1", 2.0))
	wb.undoStack = nil

	x, y := cellCenter(layout, 0, 0)
	it.PointerDown(x, y)
	require.NoError(t, it.PointerUp(x, y))

	// the fill handle sits on the bottom-right corner of the active cell
	cornerX := layout.HeaderWidth + DefaultColWidth
	cornerY := layout.HeaderHeight + DefaultRowHeight
	it.PointerDown(cornerX-1, cornerY-1)
	require.Equal(t, ModeFilling, it.Mode())

	x, y = cellCenter(layout, 2, 0)
	it.PointerMove(x, y)
	require.NoError(t, it.PointerUp(x, y))
	assert.Equal(t, ModeIdle, it.Mode())

	v, err := wb.Get("A2")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, v, 1e-10)
	v, err = wb.Get("A3")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, v, 1e-10)

	// the fill is one batched history entry
	assert.Len(t, wb.undoStack, 1)
	require.True(t, wb.Undo())
	v, err = wb.Get("A2")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestFillReleasedOnSourceIsNoop(t *testing.T) {
	wb, layout, it := newInteractionFixture(t)

	require.NoError(t, wb.Set("A1", 2.0))
	wb.undoStack = nil

	x, y := cellCenter(layout, 0, 0)
	it.PointerDown(x, y)
	require.NoError(t, it.PointerUp(x, y))

	cornerX := layout.HeaderWidth + DefaultColWidth
	cornerY := layout.HeaderHeight + DefaultRowHeight
	it.PointerDown(cornerX-1, cornerY-1)
	require.Equal(t, ModeFilling, it.Mode())

	require.NoError(t, it.PointerUp(cornerX-2, cornerY-2))
	assert.False(t, wb.CanUndo())
}

func TestFormulaReferencePicking(t *testing.T) {
	wb, layout, it := newInteractionFixture(t)
	sheetID := layout.Sheet.ID

	before := wb.Selection()

	it.StartFormulaReference()
	x, y := cellCenter(layout, 1, 1)
	it.PointerDown(x, y)
	assert.Equal(t, ModeSelectingFormulaRef, it.Mode())

	x, y = cellCenter(layout, 2, 2)
	it.PointerMove(x, y)
	require.NoError(t, it.PointerUp(x, y))

	ref, ok := it.FormulaReference()
	require.True(t, ok)
	assert.Equal(t, RangeRef{SheetID: sheetID, StartRow: 1, StartCol: 1, EndRow: 2, EndCol: 2}, ref)

	// picking a reference never moves the selection
	assert.Equal(t, before, wb.Selection())

	// the mode disarms after one pick
	x, y = cellCenter(layout, 4, 0)
	it.PointerDown(x, y)
	assert.Equal(t, ModeSelecting, it.Mode())
	require.NoError(t, it.PointerUp(x, y))
}

func TestDragResizeSetters(t *testing.T) {
	wb := NewWorkbook()
	sheetID := wb.ActiveSheet().ID

	// mid-gesture writes go through the workbook but never record history
	require.NoError(t, wb.dragColWidth(sheetID, 0, 150))
	assert.InDelta(t, 150.0, wb.ActiveSheet().ColWidth(0), 1e-10)
	require.NoError(t, wb.dragRowHeight(sheetID, 2, 36))
	assert.InDelta(t, 36.0, wb.ActiveSheet().RowHeight(2), 1e-10)
	assert.False(t, wb.CanUndo())

	var appErr *AppError
	require.ErrorAs(t, wb.dragColWidth(sheetID, -1, 50), &appErr)
	assert.Equal(t, InvalidArgument, appErr.Code)
	require.ErrorAs(t, wb.dragRowHeight(99, 0, 50), &appErr)
	assert.Equal(t, NotFound, appErr.Code)
}
