package gridsheet

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultHistoryLimit caps the undo/redo snapshot stacks. oldest entries
// are discarded once the cap is exceeded.
const DefaultHistoryLimit = 100

// Workbook owns all sheets, the active-sheet pointer, the selection, the
// undo/redo snapshot stacks, and drives evaluation and invalidation. shared
// mutable state (the cell store, the formula graph, the history stacks) is
// owned exclusively by the Workbook: all mutation paths route through its
// methods, which is what makes history recording and event emission
// reliable.
type Workbook struct {
	sheets      []*Sheet
	nextSheetID uint32
	activeID    uint32

	selection Selection

	styles  *Pool[Style]
	formats *Pool[Format]

	graph *FormulaGraph
	guard *evalGuard
	asts  map[NodeRef]astNode

	emitter *Emitter

	undoStack    []*WorkbookSnapshot
	redoStack    []*WorkbookSnapshot
	historyLimit int
	replaying    bool
	batchDepth   int

	// per-cell evaluation counters, for diagnostics and tests
	evalCounts map[NodeRef]int
}

// NewWorkbook creates a workbook with a single empty sheet named "Sheet1".
func NewWorkbook() *Workbook {
	wb := &Workbook{
		nextSheetID:  1,
		styles:       NewPool[Style](),
		formats:      NewPool[Format](),
		graph:        NewFormulaGraph(),
		guard:        newEvalGuard(),
		asts:         make(map[NodeRef]astNode),
		emitter:      NewEmitter(),
		historyLimit: DefaultHistoryLimit,
		evalCounts:   make(map[NodeRef]int),
	}
	sheet := NewSheet(wb.nextSheetID, "Sheet1")
	wb.nextSheetID++
	wb.sheets = append(wb.sheets, sheet)
	wb.activeID = sheet.ID
	wb.selection = Selection{Active: CellRef{SheetID: sheet.ID}}
	return wb
}

// Events returns the workbook's event emitter.
func (wb *Workbook) Events() *Emitter {
	return wb.emitter
}

// Styles returns the pooled style table.
func (wb *Workbook) Styles() *Pool[Style] {
	return wb.styles
}

// Formats returns the pooled number format table.
func (wb *Workbook) Formats() *Pool[Format] {
	return wb.formats
}

// Sheets returns the sheets in tab order.
func (wb *Workbook) Sheets() []*Sheet {
	return wb.sheets
}

// SheetByID returns the sheet with the given id, or nil.
func (wb *Workbook) SheetByID(id uint32) *Sheet {
	for _, s := range wb.sheets {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// SheetByName returns the sheet with the given name, or nil.
func (wb *Workbook) SheetByName(name string) *Sheet {
	for _, s := range wb.sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// ActiveSheet returns the currently active sheet.
func (wb *Workbook) ActiveSheet() *Sheet {
	return wb.SheetByID(wb.activeID)
}

// SwitchSheet changes the active-sheet pointer.
func (wb *Workbook) SwitchSheet(id uint32) error {
	if wb.SheetByID(id) == nil {
		return NewAppError(NotFound, fmt.Sprintf("sheet %d not found", id))
	}
	wb.activeID = id
	wb.emitter.Emit(EventSheetSwitched, map[string]any{"sheet": id})
	return nil
}

// AddSheet creates a new sheet at the end of the tab order.
func (wb *Workbook) AddSheet(name string) (*Sheet, error) {
	if wb.SheetByName(name) != nil {
		return nil, NewAppError(AlreadyExists, "sheet already exists: "+name)
	}
	wb.recordHistory()

	sheet := NewSheet(wb.nextSheetID, name)
	wb.nextSheetID++
	wb.sheets = append(wb.sheets, sheet)

	// formulas may reference this sheet by name; rebind and recalculate
	wb.rebuildGraph()

	wb.emitter.Emit(EventSheetAdded, map[string]any{"sheet": sheet.ID, "name": name})
	return sheet, nil
}

// DeleteSheet removes a sheet. at least one sheet must remain.
func (wb *Workbook) DeleteSheet(id uint32) error {
	if len(wb.sheets) < 2 {
		return NewAppError(FailedPrecondition, "cannot delete the last sheet")
	}
	idx := -1
	for i, s := range wb.sheets {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return NewAppError(NotFound, fmt.Sprintf("sheet %d not found", id))
	}
	wb.recordHistory()

	wb.sheets = append(wb.sheets[:idx:idx], wb.sheets[idx+1:]...)
	if wb.activeID == id {
		wb.activeID = wb.sheets[0].ID
	}
	wb.rebuildGraph()

	wb.emitter.Emit(EventSheetDeleted, map[string]any{"sheet": id})
	return nil
}

// RenameSheet renames a sheet. formulas referencing the old name resolve to
// unresolved-reference errors on the next evaluation.
func (wb *Workbook) RenameSheet(id uint32, newName string) error {
	sheet := wb.SheetByID(id)
	if sheet == nil {
		return NewAppError(NotFound, fmt.Sprintf("sheet %d not found", id))
	}
	if other := wb.SheetByName(newName); other != nil && other.ID != id {
		return NewAppError(AlreadyExists, "sheet already exists: "+newName)
	}
	wb.recordHistory()

	oldName := sheet.Name
	sheet.Name = newName
	wb.rebuildGraph()

	wb.emitter.Emit(EventSheetRenamed, map[string]any{"sheet": id, "from": oldName, "to": newName})
	return nil
}

// Selection returns the current selection.
func (wb *Workbook) Selection() Selection {
	return wb.selection
}

// SetSelection replaces the selection wholesale. selection changes are not
// history entries of their own, but the current selection rides along in
// every snapshot.
func (wb *Workbook) SetSelection(sel Selection) {
	wb.selection = sel.Clone()
	wb.emitter.Emit(EventSelectionChanged, map[string]any{"active": sel.Active})
}

// Set writes a value to an address like "A1" or "Sheet2!B3" on top of the
// active sheet. a string beginning with '=' is stored as a formula.
func (wb *Workbook) Set(address string, value Value) error {
	sheetID, row, col, err := wb.resolveAddress(address)
	if err != nil {
		return err
	}
	if s, isStr := value.(string); isStr && strings.HasPrefix(s, "=") {
		return wb.SetCell(sheetID, row, col, CellPatch{Formula: &s})
	}
	empty := ""
	return wb.SetCell(sheetID, row, col, CellPatch{Value: &value, Formula: &empty})
}

// Get returns the computed value at an address like "A1" or "Sheet2!B3".
func (wb *Workbook) Get(address string) (Value, error) {
	sheetID, row, col, err := wb.resolveAddress(address)
	if err != nil {
		return nil, err
	}
	return wb.computedValue(NodeRef{SheetID: sheetID, Key: Key(row, col)})
}

// resolveAddress parses "A1" / "Sheet!A1" / "'My Sheet'!A1" into sheet id
// and zero-based coordinates.
func (wb *Workbook) resolveAddress(address string) (uint32, int, int, error) {
	sheetName, rest := splitSheetPrefix(address)

	m := cellRefPattern.FindStringSubmatch(rest)
	if m == nil {
		return 0, 0, 0, NewAppError(InvalidArgument, "invalid address: "+address)
	}
	col := ColIndex(m[2])
	row, err := strconv.Atoi(m[4])
	if err != nil || col < 0 || row < 1 {
		return 0, 0, 0, NewAppError(InvalidArgument, "invalid address: "+address)
	}

	sheet := wb.ActiveSheet()
	if sheetName != "" {
		sheet = wb.SheetByName(sheetName)
		if sheet == nil {
			return 0, 0, 0, NewAppError(NotFound, "unknown sheet: "+sheetName)
		}
	}
	return sheet.ID, row - 1, col, nil
}

// SetCell merges a patch into a cell, records history, updates the formula
// graph, and eagerly recalculates every transitive dependent.
func (wb *Workbook) SetCell(sheetID uint32, row, col int, patch CellPatch) error {
	sheet := wb.SheetByID(sheetID)
	if sheet == nil {
		return NewAppError(NotFound, fmt.Sprintf("sheet %d not found", sheetID))
	}
	wb.recordHistory()

	ref := NodeRef{SheetID: sheetID, Key: Key(row, col)}
	cell := sheet.SetCell(row, col, patch)

	if patch.Formula != nil {
		if cell.Formula != "" {
			wb.registerFormula(ref, cell)
			// invalidate the cell and its transitive dependents before the
			// eager evaluation, so a cycle closed by this edit recurses into
			// the guard instead of reading a stale clean cache
			wb.graph.Invalidate(ref)
			for _, dep := range wb.graph.AllDependents(ref) {
				wb.graph.Invalidate(dep)
			}
			wb.evaluateFormulaCell(ref)
		} else {
			wb.graph.RemoveFormula(ref)
			delete(wb.asts, ref)
		}
	}

	wb.propagate(ref)
	wb.emitter.Emit(EventCellChanged, map[string]any{"sheet": sheetID, "row": row, "col": col})
	return nil
}

// DeleteCell removes a cell record entirely and recalculates dependents.
func (wb *Workbook) DeleteCell(sheetID uint32, row, col int) error {
	sheet := wb.SheetByID(sheetID)
	if sheet == nil {
		return NewAppError(NotFound, fmt.Sprintf("sheet %d not found", sheetID))
	}
	wb.recordHistory()

	ref := NodeRef{SheetID: sheetID, Key: Key(row, col)}
	wb.graph.RemoveFormula(ref)
	delete(wb.asts, ref)
	sheet.DeleteCell(row, col)

	wb.propagate(ref)
	wb.emitter.Emit(EventCellChanged, map[string]any{"sheet": sheetID, "row": row, "col": col})
	return nil
}

// ClearRange removes all cell records in a rectangle as one history entry.
func (wb *Workbook) ClearRange(r RangeRef) error {
	sheet := wb.SheetByID(r.SheetID)
	if sheet == nil {
		return NewAppError(NotFound, fmt.Sprintf("sheet %d not found", r.SheetID))
	}
	r = r.Normalize()
	return wb.Batch(func() error {
		for row := r.StartRow; row <= r.EndRow; row++ {
			for col := r.StartCol; col <= r.EndCol; col++ {
				if err := wb.DeleteCell(r.SheetID, row, col); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// registerFormula parses a formula cell and rewrites its graph edges. parse
// failures are stored as the cell's value, never thrown.
func (wb *Workbook) registerFormula(ref NodeRef, cell *Cell) {
	row, col := ref.Key.RowCol()
	ast, err := ParseFormula(cell.Formula, row, col)
	if err != nil {
		cell.Value = err.(*CellError)
		wb.graph.RemoveFormula(ref)
		delete(wb.asts, ref)
		return
	}

	deps := ExtractDependencies(ast, ref.SheetID, row, col, func(name string) (uint32, bool) {
		if s := wb.SheetByName(name); s != nil {
			return s.ID, true
		}
		return 0, false
	})
	wb.graph.AddFormula(ref, cell.Formula, deps)
	wb.asts[ref] = ast
}

// computedValue reads a cell's computed value. a clean formula cell returns
// its cached value; a dirty one evaluates first.
func (wb *Workbook) computedValue(ref NodeRef) (Value, error) {
	sheet := wb.SheetByID(ref.SheetID)
	if sheet == nil {
		return NewCellError(ErrorCodeRef, "unknown sheet"), nil
	}
	cell := sheet.GetCell(ref.Key.RowCol())
	if cell == nil {
		return nil, nil
	}
	if cell.Formula == "" {
		return cell.Value, nil
	}
	if !wb.graph.IsDirty(ref) {
		if v, ok := wb.graph.CachedValue(ref); ok {
			return v, nil
		}
	}
	return wb.evaluateFormulaCell(ref), nil
}

// evaluateFormulaCell evaluates one formula cell under the reentrancy
// guard. the guard entry is removed on every exit path, including panics,
// so an exception during evaluation cannot leak a stuck entry.
func (wb *Workbook) evaluateFormulaCell(ref NodeRef) Value {
	if wb.guard.active(ref) {
		// already evaluating: the formula has recursed into itself,
		// possibly through another sheet
		return NewCellError(ErrorCodeCircular, "")
	}

	sheet := wb.SheetByID(ref.SheetID)
	if sheet == nil {
		return NewCellError(ErrorCodeRef, "unknown sheet")
	}
	row, col := ref.Key.RowCol()
	cell := sheet.GetCell(row, col)
	if cell == nil || cell.Formula == "" {
		return nil
	}

	wb.guard.enter(ref)
	defer wb.guard.exit(ref)

	wb.evalCounts[ref]++

	ast, cached := wb.asts[ref]
	if !cached {
		var err error
		ast, err = ParseFormula(cell.Formula, row, col)
		if err != nil {
			result := err.(*CellError)
			cell.Value = result
			wb.graph.MarkClean(ref, result)
			return result
		}
		wb.asts[ref] = ast
	}

	result := wb.safeEval(ast, &evalContext{wb: wb, sheetID: ref.SheetID, row: row, col: col})
	result = applyNumericPolicy(result)
	if _, isRange := result.([]Value); isRange {
		result = NewCellError(ErrorCodeEval, "formula result is a range")
	}

	// the value field updates while the formula text is preserved
	cell.Value = result
	wb.graph.MarkClean(ref, result)
	return result
}

// safeEval runs the AST and converts both returned errors and panics into
// in-cell error values.
func (wb *Workbook) safeEval(ast astNode, ctx *evalContext) (result Value) {
	defer func() {
		if r := recover(); r != nil {
			result = NewCellError(ErrorCodeEval, fmt.Sprintf("evaluation failed: %v", r))
		}
	}()

	v, err := ast.eval(ctx)
	if err != nil {
		if cerr, isCellErr := err.(*CellError); isCellErr {
			return cerr
		}
		return NewCellError(ErrorCodeEval, err.Error())
	}
	return v
}

// propagate invalidates every transitive dependent of ref and re-evaluates
// each in turn: eager push-based propagation, so reads stay cheap and
// writes pay the recalculation cost. evaluation of a dependent recursively
// reads its own dependencies, so each cell computes at most once per sweep.
func (wb *Workbook) propagate(ref NodeRef) {
	dependents := wb.graph.AllDependents(ref)
	for _, dep := range dependents {
		wb.graph.Invalidate(dep)
	}
	for _, dep := range dependents {
		if wb.graph.IsDirty(dep) {
			wb.evaluateFormulaCell(dep)
		}
		wb.emitCellChanged(dep)
	}
}

func (wb *Workbook) emitCellChanged(ref NodeRef) {
	row, col := ref.Key.RowCol()
	wb.emitter.Emit(EventCellChanged, map[string]any{"sheet": ref.SheetID, "row": row, "col": col})
}

// Recalculate sweeps all dirty formula cells in deterministic order.
func (wb *Workbook) Recalculate() {
	for _, ref := range wb.graph.DirtyCells() {
		if wb.graph.IsDirty(ref) {
			wb.evaluateFormulaCell(ref)
		}
	}
}

// rebuildGraph reconstructs the formula graph from scratch from the cell
// stores and re-evaluates every formula cell in every sheet. used after
// snapshot restore, sheet add/delete/rename, and row/column shifts:
// correctness-first, at O(total formula cells) cost.
func (wb *Workbook) rebuildGraph() {
	wb.graph.Clear()
	wb.asts = make(map[NodeRef]astNode)

	for _, sheet := range wb.sheets {
		for _, key := range sheet.Keys() {
			cell := sheet.GetCell(key.RowCol())
			if cell.Formula == "" {
				continue
			}
			wb.registerFormula(NodeRef{SheetID: sheet.ID, Key: key}, cell)
		}
	}
	wb.Recalculate()
}

// EvalCount returns how many times a cell has been evaluated. diagnostic.
func (wb *Workbook) EvalCount(sheetID uint32, row, col int) int {
	return wb.evalCounts[NodeRef{SheetID: sheetID, Key: Key(row, col)}]
}

// Graph exposes the formula graph for diagnostics.
func (wb *Workbook) Graph() *FormulaGraph {
	return wb.graph
}

// structural sheet operations, each one history entry

// SetRowHeight writes a row size override.
func (wb *Workbook) SetRowHeight(sheetID uint32, row int, height float64) error {
	return wb.sheetMutation(sheetID, func(s *Sheet) error { return s.SetRowHeight(row, height) })
}

// SetColWidth writes a column size override.
func (wb *Workbook) SetColWidth(sheetID uint32, col int, width float64) error {
	return wb.sheetMutation(sheetID, func(s *Sheet) error { return s.SetColWidth(col, width) })
}

// SetFrozenRows sets the frozen row count.
func (wb *Workbook) SetFrozenRows(sheetID uint32, count int) error {
	return wb.sheetMutation(sheetID, func(s *Sheet) error { return s.SetFrozenRows(count) })
}

// SetFrozenCols sets the frozen column count.
func (wb *Workbook) SetFrozenCols(sheetID uint32, count int) error {
	return wb.sheetMutation(sheetID, func(s *Sheet) error { return s.SetFrozenCols(count) })
}

// SetRowHidden toggles hidden-row membership.
func (wb *Workbook) SetRowHidden(sheetID uint32, row int, hidden bool) error {
	return wb.sheetMutation(sheetID, func(s *Sheet) error {
		s.SetRowHidden(row, hidden)
		return nil
	})
}

// SetColHidden toggles hidden-column membership.
func (wb *Workbook) SetColHidden(sheetID uint32, col int, hidden bool) error {
	return wb.sheetMutation(sheetID, func(s *Sheet) error {
		s.SetColHidden(col, hidden)
		return nil
	})
}

// InsertRows shifts cells at or below the insert point down and rebuilds
// the formula graph, since keys moved underneath it.
func (wb *Workbook) InsertRows(sheetID uint32, at, count int) error {
	return wb.shiftMutation(sheetID, func(s *Sheet) error { return s.InsertRows(at, count) })
}

// DeleteRows removes a band of rows and shifts the remainder up.
func (wb *Workbook) DeleteRows(sheetID uint32, at, count int) error {
	return wb.shiftMutation(sheetID, func(s *Sheet) error { return s.DeleteRows(at, count) })
}

// InsertCols shifts cells at or right of the insert point right.
func (wb *Workbook) InsertCols(sheetID uint32, at, count int) error {
	return wb.shiftMutation(sheetID, func(s *Sheet) error { return s.InsertCols(at, count) })
}

// DeleteCols removes a band of columns and shifts the remainder left.
func (wb *Workbook) DeleteCols(sheetID uint32, at, count int) error {
	return wb.shiftMutation(sheetID, func(s *Sheet) error { return s.DeleteCols(at, count) })
}

// dragRowHeight writes a row size mid-gesture without recording history or
// emitting; the resize gesture records one snapshot on pointer-down and
// emits on release.
func (wb *Workbook) dragRowHeight(sheetID uint32, row int, height float64) error {
	sheet := wb.SheetByID(sheetID)
	if sheet == nil {
		return NewAppError(NotFound, fmt.Sprintf("sheet %d not found", sheetID))
	}
	return sheet.SetRowHeight(row, height)
}

// dragColWidth is the column-axis analog of dragRowHeight.
func (wb *Workbook) dragColWidth(sheetID uint32, col int, width float64) error {
	sheet := wb.SheetByID(sheetID)
	if sheet == nil {
		return NewAppError(NotFound, fmt.Sprintf("sheet %d not found", sheetID))
	}
	return sheet.SetColWidth(col, width)
}

// sheetMutation applies fn as one history entry. the snapshot is captured
// before fn runs but committed only on success, so a rejected mutation
// leaves both history stacks untouched.
func (wb *Workbook) sheetMutation(sheetID uint32, fn func(*Sheet) error) error {
	sheet := wb.SheetByID(sheetID)
	if sheet == nil {
		return NewAppError(NotFound, fmt.Sprintf("sheet %d not found", sheetID))
	}
	snap := wb.pendingHistory()
	if err := fn(sheet); err != nil {
		return err
	}
	wb.commitHistory(snap)
	wb.emitter.Emit(EventWorkbookChanged, map[string]any{"sheet": sheetID})
	return nil
}

func (wb *Workbook) shiftMutation(sheetID uint32, fn func(*Sheet) error) error {
	sheet := wb.SheetByID(sheetID)
	if sheet == nil {
		return NewAppError(NotFound, fmt.Sprintf("sheet %d not found", sheetID))
	}
	snap := wb.pendingHistory()
	if err := fn(sheet); err != nil {
		return err
	}
	wb.commitHistory(snap)
	wb.rebuildGraph()
	wb.emitter.Emit(EventWorkbookChanged, map[string]any{"sheet": sheetID})
	return nil
}

// Fill copies the source cell's value, formula and style across the target
// rectangle as one batched history entry, adjusting formula references per
// target cell.
func (wb *Workbook) Fill(src CellRef, target RangeRef) error {
	sheet := wb.SheetByID(src.SheetID)
	if sheet == nil {
		return NewAppError(NotFound, fmt.Sprintf("sheet %d not found", src.SheetID))
	}
	srcRow, srcCol := src.Key.RowCol()
	srcCell := sheet.GetCell(srcRow, srcCol)
	if srcCell == nil {
		return NewAppError(FailedPrecondition, "fill source cell is empty")
	}
	target = target.Normalize()

	return wb.Batch(func() error {
		for row := target.StartRow; row <= target.EndRow; row++ {
			for col := target.StartCol; col <= target.EndCol; col++ {
				if row == srcRow && col == srcCol && target.SheetID == src.SheetID {
					continue
				}
				patch := CellPatch{
					StyleID:  &srcCell.StyleID,
					FormatID: &srcCell.FormatID,
				}
				if srcCell.Formula != "" {
					adjusted := AdjustFormulaRefs(srcCell.Formula, row-srcRow, col-srcCol)
					patch.Formula = &adjusted
				} else {
					v := srcCell.Value
					empty := ""
					patch.Value = &v
					patch.Formula = &empty
				}
				if err := wb.SetCell(target.SheetID, row, col, patch); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Batch runs fn as one unit: exactly one history snapshot covers the whole
// batch, and events raised inside are deferred and flushed in order when
// the batch completes. the depth/flush bookkeeping unwinds on panic too, so
// a throwing fn cannot leave the emitter stuck in batching mode.
func (wb *Workbook) Batch(fn func() error) error {
	wb.recordHistory()
	wb.batchDepth++
	if wb.batchDepth == 1 {
		wb.emitter.beginBatch()
	}
	defer func() {
		wb.batchDepth--
		if wb.batchDepth == 0 {
			wb.emitter.endBatch()
		}
	}()
	return fn()
}

// recordHistory pushes a full deep-copy snapshot of all sheets, the pools,
// and the current selection onto the undo stack, unless currently replaying
// an undo/redo or inside a batch (which records exactly one snapshot up
// front). a new recorded action clears the redo stack.
func (wb *Workbook) recordHistory() {
	wb.commitHistory(wb.pendingHistory())
}

// pendingHistory captures the pre-mutation snapshot for a mutation that can
// still fail validation. nil when no snapshot should be recorded.
func (wb *Workbook) pendingHistory() *WorkbookSnapshot {
	if wb.replaying || wb.batchDepth > 0 {
		return nil
	}
	return wb.captureSnapshot()
}

// commitHistory pushes a captured snapshot once the mutation has succeeded.
// a committed action caps the stack and clears redo.
func (wb *Workbook) commitHistory(snap *WorkbookSnapshot) {
	if snap == nil {
		return
	}
	wb.undoStack = append(wb.undoStack, snap)
	if len(wb.undoStack) > wb.historyLimit {
		wb.undoStack = wb.undoStack[1:]
	}
	wb.redoStack = nil
}

// CanUndo reports whether an undo snapshot is available.
func (wb *Workbook) CanUndo() bool { return len(wb.undoStack) > 0 }

// CanRedo reports whether a redo snapshot is available.
func (wb *Workbook) CanRedo() bool { return len(wb.redoStack) > 0 }

// Undo pushes the current state onto the redo stack and restores the most
// recent undo snapshot. restoring rebuilds the formula graph from scratch
// and re-evaluates every formula cell in every sheet.
func (wb *Workbook) Undo() bool {
	if len(wb.undoStack) == 0 {
		return false
	}
	snap := wb.undoStack[len(wb.undoStack)-1]
	wb.undoStack = wb.undoStack[:len(wb.undoStack)-1]
	wb.redoStack = append(wb.redoStack, wb.captureSnapshot())

	wb.replaying = true
	wb.restoreSnapshot(snap)
	wb.replaying = false

	wb.emitter.Emit(EventWorkbookChanged, map[string]any{"reason": "undo"})
	return true
}

// Redo is the mirror of Undo.
func (wb *Workbook) Redo() bool {
	if len(wb.redoStack) == 0 {
		return false
	}
	snap := wb.redoStack[len(wb.redoStack)-1]
	wb.redoStack = wb.redoStack[:len(wb.redoStack)-1]
	wb.undoStack = append(wb.undoStack, wb.captureSnapshot())

	wb.replaying = true
	wb.restoreSnapshot(snap)
	wb.replaying = false

	wb.emitter.Emit(EventWorkbookChanged, map[string]any{"reason": "redo"})
	return true
}
