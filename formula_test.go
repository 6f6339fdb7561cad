package gridsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormulaErrors(t *testing.T) {
	cases := []string{"=", "=1+", "=(1+2", "=SUM(1,", "=1 2"}
	for _, formula := range cases {
		_, err := ParseFormula(formula, 0, 0)
		require.Error(t, err, "formula %q", formula)
		cellErr, ok := err.(*CellError)
		require.True(t, ok, "formula %q: error must be a *CellError", formula)
		assert.Equal(t, ErrorCodeParse, cellErr.Code, "formula %q", formula)
	}
}

func TestRelativeReferenceOffsets(t *testing.T) {
	// parsed at B2, "=A1" is (-1,-1) relative; the same AST resolves
	// against whatever anchor evaluates it
	node, err := ParseFormula("=A1", 1, 1)
	require.NoError(t, err)

	ref, ok := node.(*refNode)
	require.True(t, ok)

	row, col := ref.resolve(1, 1)
	assert.Equal(t, 0, row)
	assert.Equal(t, 0, col)

	row, col = ref.resolve(5, 3)
	assert.Equal(t, 4, row)
	assert.Equal(t, 2, col)
}

func TestAbsoluteReferences(t *testing.T) {
	node, err := ParseFormula("=$A$1", 5, 5)
	require.NoError(t, err)

	ref := node.(*refNode)
	row, col := ref.resolve(9, 9)
	assert.Equal(t, 0, row, "pinned row ignores the anchor")
	assert.Equal(t, 0, col, "pinned column ignores the anchor")

	node, err = ParseFormula("=$A1", 2, 3)
	require.NoError(t, err)
	ref = node.(*refNode)
	row, col = ref.resolve(4, 7)
	assert.Equal(t, 2, row, "relative row keeps its offset")
	assert.Equal(t, 0, col)
}

func TestSplitSheetPrefix(t *testing.T) {
	sheet, rest := splitSheetPrefix("Sheet1!A1")
	assert.Equal(t, "Sheet1", sheet)
	assert.Equal(t, "A1", rest)

	sheet, rest = splitSheetPrefix("'My Sheet'!B2")
	assert.Equal(t, "My Sheet", sheet)
	assert.Equal(t, "B2", rest)

	sheet, rest = splitSheetPrefix("C3")
	assert.Equal(t, "", sheet)
	assert.Equal(t, "C3", rest)
}

func TestExtractDependencies(t *testing.T) {
	resolve := func(name string) (uint32, bool) {
		if name == "Data" {
			return 2, true
		}
		return 0, false
	}

	t.Run("single and cross-sheet references", func(t *testing.T) {
		node, err := ParseFormula("=A1+Data!B2", 0, 3)
		require.NoError(t, err)

		deps := ExtractDependencies(node, 1, 0, 3, resolve)
		assert.ElementsMatch(t, []NodeRef{
			{SheetID: 1, Key: Key(0, 0)},
			{SheetID: 2, Key: Key(1, 1)},
		}, deps)
	})

	t.Run("ranges expand to member cells", func(t *testing.T) {
		node, err := ParseFormula("=SUM(A1:B2)", 0, 3)
		require.NoError(t, err)

		deps := ExtractDependencies(node, 1, 0, 3, resolve)
		assert.Len(t, deps, 4)
	})

	t.Run("unknown sheet contributes no edge", func(t *testing.T) {
		node, err := ParseFormula("=Nowhere!A1", 0, 0)
		require.NoError(t, err)

		deps := ExtractDependencies(node, 1, 0, 0, resolve)
		assert.Empty(t, deps)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		node, err := ParseFormula("=A1+A1*A1", 0, 1)
		require.NoError(t, err)

		deps := ExtractDependencies(node, 1, 0, 1, resolve)
		assert.Len(t, deps, 1)
	})
}

func TestAdjustFormulaRefs(t *testing.T) {
	cases := []struct {
		name     string
		formula  string
		dRow     int
		dCol     int
		expected string
	}{
		{"shift down", "=A1*2", 1, 0, "=A2*2"},
		{"shift right", "=A1+B1", 0, 1, "=B1+C1"},
		{"pinned row", "=A$1", 3, 0, "=A$1"},
		{"pinned col", "=$A1", 0, 3, "=$A1"},
		{"fully pinned", "=$A$1+B2", 2, 2, "=$A$1+D4"},
		{"off grid", "=A1", -1, 0, "=#REF!"},
		{"function name not a reference", "=LOG10(A1)", 1, 0, "=LOG10(A2)"},
		{"sheet prefix preserved", "=Data!A1", 1, 1, "=Data!B2"},
		{"quoted sheet prefix preserved", "='My Data'!A1", 1, 0, "='My Data'!A2"},
		{"no references", "=1+2", 5, 5, "=1+2"},
		{"string literal untouched", `="A1"&A1`, 1, 0, `="A1"&A2`},
		{"escaped quotes inside literal", `="say ""B2"" to "&B2`, 1, 1, `="say ""B2"" to "&C3`},
		{"unterminated literal", `="A1`, 1, 0, `="A1`},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AdjustFormulaRefs(tt.formula, tt.dRow, tt.dCol))
		})
	}
}
