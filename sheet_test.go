package gridsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellKey(t *testing.T) {
	k := Key(3, 7)
	assert.Equal(t, 3, k.Row())
	assert.Equal(t, 7, k.Col())
	assert.Equal(t, "H4", k.A1())

	// row-major ordering
	assert.Less(t, Key(0, 100), Key(1, 0))
	assert.Less(t, Key(2, 3), Key(2, 4))
}

func TestColumnNames(t *testing.T) {
	assert.Equal(t, "A", ColName(0))
	assert.Equal(t, "Z", ColName(25))
	assert.Equal(t, "AA", ColName(26))
	assert.Equal(t, "AZ", ColName(51))
	assert.Equal(t, "BA", ColName(52))

	assert.Equal(t, 0, ColIndex("A"))
	assert.Equal(t, 26, ColIndex("AA"))
	assert.Equal(t, 0, ColIndex("a"))
	assert.Equal(t, -1, ColIndex(""))
	assert.Equal(t, -1, ColIndex("A1"))
}

func TestCellMerge(t *testing.T) {
	s := NewSheet(1, "Sheet1")

	s.SetCell(0, 0, ValuePatch(1.0))
	comment := "note"
	s.SetCell(0, 0, CellPatch{Comment: &comment})

	cell := s.GetCell(0, 0)
	require.NotNil(t, cell)
	assert.Equal(t, 1.0, cell.Value, "merge must not clobber untouched fields")
	assert.Equal(t, "note", cell.Comment)

	s.DeleteCell(0, 0)
	assert.Nil(t, s.GetCell(0, 0), "delete removes the record entirely")
	assert.Zero(t, s.CellCount())
}

func TestInsertDeleteRows(t *testing.T) {
	s := NewSheet(1, "Sheet1")
	for row := 0; row < 10; row++ {
		s.SetCell(row, 0, ValuePatch(float64(row)))
	}
	require.NoError(t, s.SetRowHeight(6, 40))
	s.SetRowHidden(7, true)
	require.NoError(t, s.SetFrozenRows(3))

	require.NoError(t, s.InsertRows(5, 2))

	// rows 0-4 untouched
	for row := 0; row < 5; row++ {
		require.NotNil(t, s.GetCell(row, 0))
		assert.Equal(t, float64(row), s.GetCell(row, 0).Value)
	}
	// rows >= 5 shifted down by 2
	assert.Nil(t, s.GetCell(5, 0))
	assert.Equal(t, 5.0, s.GetCell(7, 0).Value)
	assert.Equal(t, 9.0, s.GetCell(11, 0).Value)
	// overrides and hidden membership shift with the cells
	assert.Equal(t, 40.0, s.RowHeight(8))
	assert.True(t, s.IsRowHidden(9))
	assert.False(t, s.IsRowHidden(7))
	// insert below the frozen block leaves the count alone
	assert.Equal(t, 3, s.FrozenRows())
	assert.Equal(t, DefaultRowCount+2, s.Rows())

	require.NoError(t, s.DeleteRows(5, 2))
	assert.Equal(t, 5.0, s.GetCell(5, 0).Value)
	assert.Equal(t, 40.0, s.RowHeight(6))
	assert.True(t, s.IsRowHidden(7))
	assert.Equal(t, DefaultRowCount, s.Rows())
}

func TestDeleteRowsRemovesBand(t *testing.T) {
	s := NewSheet(1, "Sheet1")
	s.SetCell(5, 0, ValuePatch("five"))
	s.SetCell(6, 0, ValuePatch("six"))
	s.SetCell(7, 0, ValuePatch("seven"))

	require.NoError(t, s.DeleteRows(5, 2))
	assert.Equal(t, "seven", s.GetCell(5, 0).Value)
	assert.Nil(t, s.GetCell(6, 0))
	assert.Nil(t, s.GetCell(7, 0))
}

func TestInsertDeleteCols(t *testing.T) {
	s := NewSheet(1, "Sheet1")
	s.SetCell(0, 2, ValuePatch("c"))
	require.NoError(t, s.SetColWidth(2, 150))
	s.SetColHidden(3, true)

	require.NoError(t, s.InsertCols(1, 3))
	assert.Nil(t, s.GetCell(0, 2))
	assert.Equal(t, "c", s.GetCell(0, 5).Value)
	assert.Equal(t, 150.0, s.ColWidth(5))
	assert.True(t, s.IsColHidden(6))

	require.NoError(t, s.DeleteCols(1, 3))
	assert.Equal(t, "c", s.GetCell(0, 2).Value)
}

func TestShiftValidation(t *testing.T) {
	s := NewSheet(1, "Sheet1")

	var appErr *AppError
	require.ErrorAs(t, s.InsertRows(-1, 1), &appErr)
	assert.Equal(t, InvalidArgument, appErr.Code)

	require.ErrorAs(t, s.DeleteRows(0, s.Rows()), &appErr)
	assert.Equal(t, FailedPrecondition, appErr.Code)

	require.ErrorAs(t, s.DeleteCols(0, s.Cols()), &appErr)
	assert.Equal(t, FailedPrecondition, appErr.Code)
}

func TestFrozenCounts(t *testing.T) {
	s := NewSheet(1, "Sheet1")

	require.NoError(t, s.SetFrozenRows(5))
	assert.Equal(t, 5, s.FrozenRows())

	var appErr *AppError
	require.ErrorAs(t, s.SetFrozenRows(-1), &appErr)
	assert.Equal(t, InvalidArgument, appErr.Code)

	require.ErrorAs(t, s.SetFrozenRows(s.Rows()), &appErr)
	assert.Equal(t, OutOfRange, appErr.Code, "frozen count must stay strictly below the total")

	require.ErrorAs(t, s.SetFrozenCols(s.Cols()+10), &appErr)
	assert.Equal(t, OutOfRange, appErr.Code)
}

func TestHiddenSets(t *testing.T) {
	s := NewSheet(1, "Sheet1")

	s.SetRowHidden(4, true)
	s.SetRowHidden(4, true) // idempotent
	assert.True(t, s.IsRowHidden(4))
	s.SetRowHidden(4, false)
	assert.False(t, s.IsRowHidden(4))

	s.SetRowHidden(5, true)
	s.SetRowHidden(6, true)
	s.SetRowHidden(7, true)

	first, last, ok := s.AdjacentHiddenRows(6)
	require.True(t, ok)
	assert.Equal(t, 5, first)
	assert.Equal(t, 7, last)

	// a visible boundary index still reports the band it touches
	first, last, ok = s.AdjacentHiddenRows(4)
	require.True(t, ok)
	assert.Equal(t, 5, first)
	assert.Equal(t, 7, last)

	_, _, ok = s.AdjacentHiddenRows(20)
	assert.False(t, ok)
}

func TestRangeOperations(t *testing.T) {
	s := NewSheet(1, "Sheet1")
	s.SetRange(1, 1, 2, 2, ValuePatch(9.0))

	cells := s.GetRange(1, 1, 2, 2)
	require.Len(t, cells, 4)
	for _, c := range cells {
		require.NotNil(t, c)
		assert.Equal(t, 9.0, c.Value)
	}

	s.ClearRange(1, 1, 2, 2)
	assert.Zero(t, s.CellCount())
}

func TestSheetClone(t *testing.T) {
	s := NewSheet(1, "Sheet1")
	s.SetCell(0, 0, ValuePatch("x"))
	require.NoError(t, s.SetRowHeight(2, 50))
	s.SetColHidden(1, true)
	s.Filters[0] = FilterConfig{Column: 0, Values: []string{"a"}}

	dup := s.Clone()
	dup.SetCell(0, 0, ValuePatch("y"))
	dup.Filters[0].Values[0] = "b"

	assert.Equal(t, "x", s.GetCell(0, 0).Value)
	assert.Equal(t, "a", s.Filters[0].Values[0])
	assert.Equal(t, 50.0, dup.RowHeight(2))
	assert.True(t, dup.IsColHidden(1))
}
