package gridsheet

// InteractionMode is the pointer state machine's current mode. modes are
// mutually exclusive; every transition goes through PointerDown/Up.
type InteractionMode int

const (
	ModeIdle InteractionMode = iota
	ModeResizing
	ModeFilling
	ModeSelecting
	ModeSelectingFormulaRef
)

// Interaction drives the workbook and layout from pointer events. the UI
// collaborator owns the event loop; this type owns the mode transitions and
// what each gesture writes back.
type Interaction struct {
	wb     *Workbook
	layout *Layout
	vp     Viewport

	mode InteractionMode

	// resizing state
	resizeAxis      Axis
	resizeIndex     int
	resizeStartPos  float64
	resizeStartSize float64
	resizeErr       error // first write failure, surfaced by PointerUp

	// selecting/filling state
	anchorRow  int
	anchorCol  int
	fillSource CellRef
	fillTarget RangeRef

	// armed by StartFormulaReference; the next drag reports a range instead
	// of moving the selection
	formulaRefArmed bool
	formulaRef      RangeRef
	formulaRefSet   bool
}

// NewInteraction binds the state machine to a workbook and a layout.
func NewInteraction(wb *Workbook, layout *Layout) *Interaction {
	return &Interaction{wb: wb, layout: layout}
}

// Mode returns the current interaction mode.
func (i *Interaction) Mode() InteractionMode { return i.mode }

// SetViewport updates the viewport used for hit-testing.
func (i *Interaction) SetViewport(vp Viewport) { i.vp = vp }

// StartFormulaReference arms formula-reference picking: the next drag
// selects a range for insertion into a formula rather than moving the
// selection.
func (i *Interaction) StartFormulaReference() {
	i.formulaRefArmed = true
	i.formulaRefSet = false
}

// FormulaReference returns the range picked by the last formula-reference
// drag.
func (i *Interaction) FormulaReference() (RangeRef, bool) {
	return i.formulaRef, i.formulaRefSet
}

// PointerDown classifies the hit and enters the matching mode: a resize
// edge wins over the header cell under it, the fill handle wins over the
// cell under it, and a plain cell hit starts a selection drag.
func (i *Interaction) PointerDown(x, y float64) {
	if i.mode != ModeIdle {
		return
	}

	if hit, ok := i.layout.HeaderAt(i.vp, x, y); ok && hit.OnResizeHandle {
		i.mode = ModeResizing
		i.resizeAxis = hit.Axis
		i.resizeIndex = hit.Index
		if hit.Axis == AxisCol {
			i.resizeStartPos = x
			i.resizeStartSize = i.layout.Sheet.ColWidth(hit.Index)
		} else {
			i.resizeStartPos = y
			i.resizeStartSize = i.layout.Sheet.RowHeight(hit.Index)
		}
		// one history entry covers the whole gesture even though sizes are
		// written on every move
		i.wb.recordHistory()
		return
	}

	sel := i.wb.Selection()
	if i.layout.FillHandleAt(i.vp, sel, x, y) {
		i.mode = ModeFilling
		i.fillSource = sel.Active
		srcRow, srcCol := sel.Active.Key.RowCol()
		i.fillTarget = RangeRef{
			SheetID:  sel.Active.SheetID,
			StartRow: srcRow, StartCol: srcCol,
			EndRow: srcRow, EndCol: srcCol,
		}
		return
	}

	row, col, ok := i.layout.CellAt(i.vp, x, y)
	if !ok {
		return
	}

	if i.formulaRefArmed {
		i.mode = ModeSelectingFormulaRef
		i.anchorRow, i.anchorCol = row, col
		i.formulaRef = RangeRef{
			SheetID:  i.layout.Sheet.ID,
			StartRow: row, StartCol: col, EndRow: row, EndCol: col,
		}
		i.formulaRefSet = true
		return
	}

	i.mode = ModeSelecting
	i.anchorRow, i.anchorCol = row, col
	i.wb.SetSelection(Selection{
		Ranges: []RangeRef{{
			SheetID:  i.layout.Sheet.ID,
			StartRow: row, StartCol: col, EndRow: row, EndCol: col,
		}},
		Active: CellRef{SheetID: i.layout.Sheet.ID, Key: Key(row, col)},
	})
}

// PointerMove advances the active gesture. resizing writes the new size
// immediately on every move; selecting and filling extend their rectangles
// to the cell under the pointer.
func (i *Interaction) PointerMove(x, y float64) {
	switch i.mode {
	case ModeResizing:
		var size float64
		if i.resizeAxis == AxisCol {
			size = i.resizeStartSize + (x - i.resizeStartPos)
		} else {
			size = i.resizeStartSize + (y - i.resizeStartPos)
		}
		if size < 0 {
			size = 0
		}
		var err error
		if i.resizeAxis == AxisCol {
			err = i.wb.dragColWidth(i.layout.Sheet.ID, i.resizeIndex, size)
		} else {
			err = i.wb.dragRowHeight(i.layout.Sheet.ID, i.resizeIndex, size)
		}
		if err != nil && i.resizeErr == nil {
			i.resizeErr = err
		}

	case ModeSelecting:
		row, col, ok := i.layout.CellAt(i.vp, x, y)
		if !ok {
			return
		}
		i.wb.SetSelection(Selection{
			Ranges: []RangeRef{RangeRef{
				SheetID:  i.layout.Sheet.ID,
				StartRow: i.anchorRow, StartCol: i.anchorCol,
				EndRow: row, EndCol: col,
			}.Normalize()},
			Active: CellRef{SheetID: i.layout.Sheet.ID, Key: Key(i.anchorRow, i.anchorCol)},
		})

	case ModeSelectingFormulaRef:
		row, col, ok := i.layout.CellAt(i.vp, x, y)
		if !ok {
			return
		}
		i.formulaRef = RangeRef{
			SheetID:  i.layout.Sheet.ID,
			StartRow: i.anchorRow, StartCol: i.anchorCol,
			EndRow: row, EndCol: col,
		}.Normalize()

	case ModeFilling:
		row, col, ok := i.layout.CellAt(i.vp, x, y)
		if !ok {
			return
		}
		srcRow, srcCol := i.fillSource.Key.RowCol()
		i.fillTarget = RangeRef{
			SheetID:  i.fillSource.SheetID,
			StartRow: srcRow, StartCol: srcCol,
			EndRow: row, EndCol: col,
		}.Normalize()
	}
}

// PointerUp completes the gesture. a fill commits the source cell across
// the target rectangle as one batched history entry.
func (i *Interaction) PointerUp(x, y float64) error {
	i.PointerMove(x, y)
	mode := i.mode
	i.mode = ModeIdle

	switch mode {
	case ModeResizing:
		err := i.resizeErr
		i.resizeErr = nil
		i.wb.Events().Emit(EventWorkbookChanged, map[string]any{"sheet": i.layout.Sheet.ID})
		return err

	case ModeFilling:
		srcRow, srcCol := i.fillSource.Key.RowCol()
		single := i.fillTarget.StartRow == srcRow && i.fillTarget.EndRow == srcRow &&
			i.fillTarget.StartCol == srcCol && i.fillTarget.EndCol == srcCol
		if single {
			return nil
		}
		return i.wb.Fill(i.fillSource, i.fillTarget)

	case ModeSelectingFormulaRef:
		i.formulaRefArmed = false
		return nil
	}
	return nil
}
