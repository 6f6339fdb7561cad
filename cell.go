package gridsheet

import (
	"fmt"
	"strings"
)

// Value represents basic spreadsheet value types.
// types:
//   - float64: numeric values (integers are converted to float64)
//   - string: text values
//   - bool: boolean values (TRUE/FALSE)
//   - nil: empty/null cells
//   - *CellError: error values (#DIV/0!, #CIRCULAR!, etc.)
type Value any

// CellKey is a unique, reversible address encoding a (row, column) pair.
// rows occupy the high 32 bits so keys sort in row-major order.
type CellKey uint64

// Key derives the cell key for a (row, col) pair.
func Key(row, col int) CellKey {
	return CellKey(uint64(uint32(row))<<32 | uint64(uint32(col)))
}

// Row returns the row index encoded in the key.
func (k CellKey) Row() int {
	return int(uint32(k >> 32))
}

// Col returns the column index encoded in the key.
func (k CellKey) Col() int {
	return int(uint32(k))
}

// RowCol decodes the key back to its (row, col) pair.
func (k CellKey) RowCol() (int, int) {
	return k.Row(), k.Col()
}

// A1 renders the key in A1 notation, e.g. Key(0,0) -> "A1".
func (k CellKey) A1() string {
	return ColName(k.Col()) + fmt.Sprintf("%d", k.Row()+1)
}

// ColName converts a zero-based column index to its letter form
// (0 -> A, 25 -> Z, 26 -> AA).
func ColName(col int) string {
	var b strings.Builder
	col++
	for col > 0 {
		col--
		b.WriteByte(byte('A' + col%26))
		col /= 26
	}
	// letters accumulate least-significant first
	s := b.String()
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = s[len(s)-1-i]
	}
	return string(out)
}

// ColIndex converts column letters to a zero-based index (A -> 0, AA -> 26).
// returns -1 for invalid input.
func ColIndex(name string) int {
	if name == "" {
		return -1
	}
	col := 0
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c < 'A' || c > 'Z' {
			return -1
		}
		col = col*26 + int(c-'A') + 1
	}
	return col - 1
}

// CellRef addresses a cell on a specific sheet.
type CellRef struct {
	SheetID uint32
	Key     CellKey
}

// RangeRef is a rectangular range of cells within a single sheet.
// bounds are inclusive.
type RangeRef struct {
	SheetID  uint32
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

// Normalize returns the range with start <= end on both axes.
func (r RangeRef) Normalize() RangeRef {
	if r.StartRow > r.EndRow {
		r.StartRow, r.EndRow = r.EndRow, r.StartRow
	}
	if r.StartCol > r.EndCol {
		r.StartCol, r.EndCol = r.EndCol, r.StartCol
	}
	return r
}

// Contains reports whether the range includes the given cell.
func (r RangeRef) Contains(row, col int) bool {
	return row >= r.StartRow && row <= r.EndRow &&
		col >= r.StartCol && col <= r.EndCol
}

// Cell represents one spreadsheet cell. a cell record exists only after the
// first write; deleting removes the mapping entry entirely.
type Cell struct {
	Value     Value  // computed/stored value
	Formula   string // formula text including leading '=' for formula cells
	StyleID   uint32 // interned style id, 0 for none
	FormatID  uint32 // interned number format id, 0 for none
	Comment   string
	Hyperlink string
}

// Clone returns a copy of the cell. *CellError values are immutable once
// stored, so sharing them is safe.
func (c *Cell) Clone() *Cell {
	if c == nil {
		return nil
	}
	dup := *c
	return &dup
}

// IsEmpty reports whether the cell carries no data at all.
func (c *Cell) IsEmpty() bool {
	return c == nil || (c.Value == nil && c.Formula == "" && c.StyleID == 0 &&
		c.FormatID == 0 && c.Comment == "" && c.Hyperlink == "")
}

// CellPatch is a partial cell update. nil fields are left untouched when the
// patch is merged into an existing record; non-nil fields overwrite. setting
// Formula to a pointer at "" clears the formula.
type CellPatch struct {
	Value     *Value
	Formula   *string
	StyleID   *uint32
	FormatID  *uint32
	Comment   *string
	Hyperlink *string
}

// ValuePatch builds a patch that sets only the value.
func ValuePatch(v Value) CellPatch {
	return CellPatch{Value: &v}
}

// FormulaPatch builds a patch that sets only the formula text.
func FormulaPatch(formula string) CellPatch {
	return CellPatch{Formula: &formula}
}

// apply merges the patch into a cell record.
func (p CellPatch) apply(c *Cell) {
	if p.Value != nil {
		c.Value = *p.Value
	}
	if p.Formula != nil {
		c.Formula = *p.Formula
	}
	if p.StyleID != nil {
		c.StyleID = *p.StyleID
	}
	if p.FormatID != nil {
		c.FormatID = *p.FormatID
	}
	if p.Comment != nil {
		c.Comment = *p.Comment
	}
	if p.Hyperlink != nil {
		c.Hyperlink = *p.Hyperlink
	}
}

// Selection is the current UI focus: a list of rectangular ranges plus one
// active cell. replaced wholesale on every selection change.
type Selection struct {
	Ranges []RangeRef
	Active CellRef
}

// Clone returns a deep copy of the selection.
func (s Selection) Clone() Selection {
	dup := s
	dup.Ranges = make([]RangeRef, len(s.Ranges))
	copy(dup.Ranges, s.Ranges)
	return dup
}
