package gridsheet

import (
	"encoding/json"
	"sort"

	"github.com/tiendc/go-deepcopy"
)

// SnapshotVersion is written into every serialized workbook so future
// format changes can be detected on load.
const SnapshotVersion = 1

// ValueSnapshot is the tagged wire form of a cell value. JSON alone cannot
// round-trip the value taxonomy (numbers, booleans and error records all
// collapse into untyped JSON), so the kind travels explicitly.
type ValueSnapshot struct {
	Kind    string    `json:"kind"` // "empty", "number", "string", "bool", "error"
	Number  float64   `json:"number,omitempty"`
	Text    string    `json:"text,omitempty"`
	Bool    bool      `json:"bool,omitempty"`
	ErrCode ErrorCode `json:"errCode,omitempty"`
	ErrText string    `json:"errText,omitempty"`
}

func encodeValue(v Value) ValueSnapshot {
	switch t := v.(type) {
	case nil:
		return ValueSnapshot{Kind: "empty"}
	case float64:
		return ValueSnapshot{Kind: "number", Number: t}
	case int:
		return ValueSnapshot{Kind: "number", Number: float64(t)}
	case string:
		return ValueSnapshot{Kind: "string", Text: t}
	case bool:
		return ValueSnapshot{Kind: "bool", Bool: t}
	case *CellError:
		return ValueSnapshot{Kind: "error", ErrCode: t.Code, ErrText: t.Message}
	default:
		return ValueSnapshot{Kind: "empty"}
	}
}

func decodeValue(vs ValueSnapshot) Value {
	switch vs.Kind {
	case "number":
		return vs.Number
	case "string":
		return vs.Text
	case "bool":
		return vs.Bool
	case "error":
		return NewCellError(vs.ErrCode, vs.ErrText)
	default:
		return nil
	}
}

// CellSnapshot is one (key, cell) wire record. cells serialize as a flat
// list in row-major key order rather than a nested grid, matching the
// sparse store.
type CellSnapshot struct {
	Key       CellKey       `json:"key"`
	Value     ValueSnapshot `json:"value"`
	Formula   string        `json:"formula,omitempty"`
	StyleID   uint32        `json:"styleId,omitempty"`
	FormatID  uint32        `json:"formatId,omitempty"`
	Comment   string        `json:"comment,omitempty"`
	Hyperlink string        `json:"hyperlink,omitempty"`
}

// IndexSize is one sparse dimension override on the wire.
type IndexSize struct {
	Index int     `json:"index"`
	Size  float64 `json:"size"`
}

// SheetSnapshot is the wire form of one sheet. map- and set-shaped fields
// serialize as sorted slices so output is deterministic.
type SheetSnapshot struct {
	ID         uint32         `json:"id"`
	Name       string         `json:"name"`
	Rows       int            `json:"rows"`
	Cols       int            `json:"cols"`
	FrozenRows int            `json:"frozenRows,omitempty"`
	FrozenCols int            `json:"frozenCols,omitempty"`
	RowHeights []IndexSize    `json:"rowHeights,omitempty"`
	ColWidths  []IndexSize    `json:"colWidths,omitempty"`
	HiddenRows []int          `json:"hiddenRows,omitempty"`
	HiddenCols []int          `json:"hiddenCols,omitempty"`
	SortOrder  SortConfig     `json:"sortOrder"`
	Filters    []FilterConfig `json:"filters,omitempty"`
	Cells      []CellSnapshot `json:"cells"`
}

// WorkbookSnapshot is the complete serializable state of a workbook:
// sheets, pooled style/format tables with their id counters, the active
// sheet and the selection. the same structure backs both JSON persistence
// and the undo/redo stacks.
type WorkbookSnapshot struct {
	Version       int                 `json:"version"`
	ActiveSheet   uint32              `json:"activeSheet"`
	NextSheetID   uint32              `json:"nextSheetId"`
	Sheets        []SheetSnapshot     `json:"sheets"`
	Styles        []PoolEntry[Style]  `json:"styles,omitempty"`
	StylesNextID  uint32              `json:"stylesNextId"`
	Formats       []PoolEntry[Format] `json:"formats,omitempty"`
	FormatsNextID uint32              `json:"formatsNextId"`
	Selection     Selection           `json:"selection"`
}

func snapshotSheet(s *Sheet) SheetSnapshot {
	snap := SheetSnapshot{
		ID:         s.ID,
		Name:       s.Name,
		Rows:       s.rows,
		Cols:       s.cols,
		FrozenRows: s.frozenRows,
		FrozenCols: s.frozenCols,
		SortOrder:  s.SortOrder,
	}

	for i, v := range s.rowHeights {
		snap.RowHeights = append(snap.RowHeights, IndexSize{Index: i, Size: v})
	}
	sort.Slice(snap.RowHeights, func(i, j int) bool { return snap.RowHeights[i].Index < snap.RowHeights[j].Index })

	for i, v := range s.colWidths {
		snap.ColWidths = append(snap.ColWidths, IndexSize{Index: i, Size: v})
	}
	sort.Slice(snap.ColWidths, func(i, j int) bool { return snap.ColWidths[i].Index < snap.ColWidths[j].Index })

	for i := range s.hiddenRows {
		snap.HiddenRows = append(snap.HiddenRows, i)
	}
	sort.Ints(snap.HiddenRows)

	for i := range s.hiddenCols {
		snap.HiddenCols = append(snap.HiddenCols, i)
	}
	sort.Ints(snap.HiddenCols)

	for _, f := range s.Filters {
		snap.Filters = append(snap.Filters, f)
	}
	sort.Slice(snap.Filters, func(i, j int) bool { return snap.Filters[i].Column < snap.Filters[j].Column })

	for _, key := range s.Keys() {
		c := s.cells[key]
		snap.Cells = append(snap.Cells, CellSnapshot{
			Key:       key,
			Value:     encodeValue(c.Value),
			Formula:   c.Formula,
			StyleID:   c.StyleID,
			FormatID:  c.FormatID,
			Comment:   c.Comment,
			Hyperlink: c.Hyperlink,
		})
	}
	return snap
}

func restoreSheet(snap SheetSnapshot) *Sheet {
	s := NewSheet(snap.ID, snap.Name)
	if snap.Rows > 0 {
		s.rows = snap.Rows
	}
	if snap.Cols > 0 {
		s.cols = snap.Cols
	}
	s.frozenRows = snap.FrozenRows
	s.frozenCols = snap.FrozenCols
	s.SortOrder = snap.SortOrder

	for _, e := range snap.RowHeights {
		s.rowHeights[e.Index] = e.Size
	}
	for _, e := range snap.ColWidths {
		s.colWidths[e.Index] = e.Size
	}
	for _, i := range snap.HiddenRows {
		s.hiddenRows[i] = struct{}{}
	}
	for _, i := range snap.HiddenCols {
		s.hiddenCols[i] = struct{}{}
	}
	for _, f := range snap.Filters {
		s.Filters[f.Column] = f
	}
	for _, cs := range snap.Cells {
		s.cells[cs.Key] = &Cell{
			Value:     decodeValue(cs.Value),
			Formula:   cs.Formula,
			StyleID:   cs.StyleID,
			FormatID:  cs.FormatID,
			Comment:   cs.Comment,
			Hyperlink: cs.Hyperlink,
		}
	}
	return s
}

// captureSnapshot builds a complete snapshot of the current workbook state.
// every field is freshly allocated, so the result shares nothing with the
// live workbook.
func (wb *Workbook) captureSnapshot() *WorkbookSnapshot {
	snap := &WorkbookSnapshot{
		Version:       SnapshotVersion,
		ActiveSheet:   wb.activeID,
		NextSheetID:   wb.nextSheetID,
		Styles:        wb.styles.Entries(),
		StylesNextID:  wb.styles.NextID(),
		Formats:       wb.formats.Entries(),
		FormatsNextID: wb.formats.NextID(),
		Selection:     wb.selection.Clone(),
	}
	for _, s := range wb.sheets {
		snap.Sheets = append(snap.Sheets, snapshotSheet(s))
	}
	return snap
}

// restoreSnapshot replaces the workbook's state with the snapshot's, then
// rebuilds the formula graph from scratch and re-evaluates every formula
// cell. the snapshot is deep-copied before anything is installed: history
// entries must survive later mutation of the live workbook.
func (wb *Workbook) restoreSnapshot(snap *WorkbookSnapshot) error {
	var dup WorkbookSnapshot
	if err := deepcopy.Copy(&dup, snap); err != nil {
		return NewAppError(Internal, "snapshot copy failed: "+err.Error())
	}

	wb.sheets = wb.sheets[:0]
	for _, ss := range dup.Sheets {
		wb.sheets = append(wb.sheets, restoreSheet(ss))
	}
	wb.activeID = dup.ActiveSheet
	wb.nextSheetID = dup.NextSheetID
	wb.styles.Restore(dup.Styles, dup.StylesNextID)
	wb.formats.Restore(dup.Formats, dup.FormatsNextID)
	wb.selection = dup.Selection

	if wb.SheetByID(wb.activeID) == nil && len(wb.sheets) > 0 {
		wb.activeID = wb.sheets[0].ID
	}

	wb.rebuildGraph()
	return nil
}

// Serialize renders the workbook as deterministic JSON.
func (wb *Workbook) Serialize() ([]byte, error) {
	data, err := json.MarshalIndent(wb.captureSnapshot(), "", "  ")
	if err != nil {
		return nil, NewAppError(Internal, "serialize failed: "+err.Error())
	}
	return data, nil
}

// Deserialize replaces the workbook's state with the serialized form,
// rebuilding the formula graph and recomputing all formula cells. the
// undo/redo stacks are cleared; history does not survive persistence.
func (wb *Workbook) Deserialize(data []byte) error {
	var snap WorkbookSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return NewAppError(InvalidArgument, "malformed workbook JSON: "+err.Error())
	}
	if len(snap.Sheets) == 0 {
		return NewAppError(InvalidArgument, "workbook JSON has no sheets")
	}

	wb.replaying = true
	err := wb.restoreSnapshot(&snap)
	wb.replaying = false
	if err != nil {
		return err
	}

	wb.undoStack = nil
	wb.redoStack = nil
	wb.evalCounts = make(map[NodeRef]int)
	wb.emitter.Emit(EventWorkbookChanged, map[string]any{"reason": "deserialize"})
	return nil
}
