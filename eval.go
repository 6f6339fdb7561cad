package gridsheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// evalContext exposes "get one cell's computed value" and "get a
// rectangular range's computed values" to a formula AST. both resolve
// sheets by name for cross-sheet references. the anchor (row, col) is the
// formula cell currently being evaluated, captured per call, so relative
// references resolve against it.
type evalContext struct {
	wb      *Workbook
	sheetID uint32
	row     int
	col     int
}

// sheetIDFor resolves a sheet name, "" meaning the current sheet. unknown
// names yield an unresolved-reference error value.
func (ctx *evalContext) sheetIDFor(name string) (uint32, *CellError) {
	if name == "" {
		return ctx.sheetID, nil
	}
	sheet := ctx.wb.SheetByName(name)
	if sheet == nil {
		return 0, NewCellError(ErrorCodeRef, "unknown sheet: "+name)
	}
	return sheet.ID, nil
}

func (ctx *evalContext) cellValue(sheetName string, row, col int) (Value, error) {
	sheetID, cerr := ctx.sheetIDFor(sheetName)
	if cerr != nil {
		return nil, cerr
	}
	if row < 0 || col < 0 {
		return nil, NewCellError(ErrorCodeRef, "reference out of range")
	}
	return ctx.wb.computedValue(NodeRef{SheetID: sheetID, Key: Key(row, col)})
}

func (ctx *evalContext) rangeValues(sheetName string, r1, c1, r2, c2 int) ([]Value, error) {
	sheetID, cerr := ctx.sheetIDFor(sheetName)
	if cerr != nil {
		return nil, cerr
	}
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	if c1 > c2 {
		c1, c2 = c2, c1
	}

	values := make([]Value, 0, (r2-r1+1)*(c2-c1+1))
	for row := max(r1, 0); row <= r2; row++ {
		for col := max(c1, 0); col <= c2; col++ {
			v, err := ctx.wb.computedValue(NodeRef{SheetID: sheetID, Key: Key(row, col)})
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
	}
	return values, nil
}

func (n *numberNode) eval(*evalContext) (Value, error) { return n.val, nil }
func (n *stringNode) eval(*evalContext) (Value, error) { return n.val, nil }
func (n *boolNode) eval(*evalContext) (Value, error)   { return n.val, nil }

func (n *refNode) eval(ctx *evalContext) (Value, error) {
	row, col := n.resolve(ctx.row, ctx.col)
	return ctx.cellValue(n.sheet, row, col)
}

func (n *rangeNode) eval(ctx *evalContext) (Value, error) {
	r1, c1 := n.start.resolve(ctx.row, ctx.col)
	r2, c2 := n.end.resolve(ctx.row, ctx.col)
	values, err := ctx.rangeValues(n.sheet, r1, c1, r2, c2)
	if err != nil {
		return nil, err
	}
	return values, nil
}

func (n *unaryNode) eval(ctx *evalContext) (Value, error) {
	v, err := n.operand.eval(ctx)
	if err != nil {
		return nil, err
	}
	f, cerr := toNumber(v)
	if cerr != nil {
		return cerr, nil
	}
	switch n.op {
	case "-":
		return -f, nil
	case "+":
		return f, nil
	case "%":
		return f / 100, nil
	}
	return nil, NewCellError(ErrorCodeEval, "unknown unary operator "+n.op)
}

func (n *binaryNode) eval(ctx *evalContext) (Value, error) {
	left, err := n.left.eval(ctx)
	if err != nil {
		return nil, err
	}
	right, err := n.right.eval(ctx)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case "&":
		return toText(left) + toText(right), nil
	case "=", "<>", "<", ">", "<=", ">=":
		return compareValues(n.op, left, right)
	}

	// arithmetic: error values propagate through ordinary numeric coercion
	lf, cerr := toNumber(left)
	if cerr != nil {
		return cerr, nil
	}
	rf, cerr := toNumber(right)
	if cerr != nil {
		return cerr, nil
	}

	switch n.op {
	case "+":
		return lf + rf, nil
	case "-":
		return lf - rf, nil
	case "*":
		return lf * rf, nil
	case "/":
		return lf / rf, nil // ±Inf handled by the numeric result policy
	case "^":
		return math.Pow(lf, rf), nil
	}
	return nil, NewCellError(ErrorCodeEval, "unknown operator "+n.op)
}

func (n *callNode) eval(ctx *evalContext) (Value, error) {
	// IF evaluates lazily: only the selected branch runs
	if n.name == "IF" {
		return evalIf(ctx, n.args)
	}

	fn, known := builtins[n.name]
	if !known {
		return NewCellError(ErrorCodeEval, "unknown function "+n.name), nil
	}

	var values []Value
	for _, arg := range n.args {
		v, err := arg.eval(ctx)
		if err != nil {
			return nil, err
		}
		// range arguments arrive as []Value and flatten in place
		if list, isRange := v.([]Value); isRange {
			values = append(values, list...)
		} else {
			values = append(values, v)
		}
	}
	return fn(values)
}

func compareValues(op string, left, right Value) (Value, error) {
	if cerr, isErr := left.(*CellError); isErr {
		return cerr, nil
	}
	if cerr, isErr := right.(*CellError); isErr {
		return cerr, nil
	}

	var cmp int
	ls, lIsStr := left.(string)
	rs, rIsStr := right.(string)
	if lIsStr && rIsStr {
		cmp = strings.Compare(strings.ToLower(ls), strings.ToLower(rs))
	} else {
		lf, cerr := toNumber(left)
		if cerr != nil {
			return cerr, nil
		}
		rf, cerr := toNumber(right)
		if cerr != nil {
			return cerr, nil
		}
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		}
	}

	switch op {
	case "=":
		return cmp == 0, nil
	case "<>":
		return cmp != 0, nil
	case "<":
		return cmp < 0, nil
	case ">":
		return cmp > 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">=":
		return cmp >= 0, nil
	}
	return nil, NewCellError(ErrorCodeEval, "unknown comparison "+op)
}

// toNumber coerces a value to float64. error values pass through so a cell
// referencing an error cell resolves to that error.
func toNumber(v Value) (float64, *CellError) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, NewCellError(ErrorCodeEval, fmt.Sprintf("cannot coerce %q to number", n))
		}
		return f, nil
	case *CellError:
		return 0, n
	case []Value:
		return 0, NewCellError(ErrorCodeEval, "range used where a single value is required")
	}
	return 0, NewCellError(ErrorCodeEval, fmt.Sprintf("cannot coerce %T to number", v))
}

// toText renders a value for concatenation and display.
func toText(v Value) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case bool:
		if n {
			return "TRUE"
		}
		return "FALSE"
	case *CellError:
		return n.Error()
	}
	return fmt.Sprintf("%v", v)
}

// toBool coerces a value for IF conditions.
func toBool(v Value) (bool, *CellError) {
	switch n := v.(type) {
	case bool:
		return n, nil
	case *CellError:
		return false, n
	default:
		f, cerr := toNumber(v)
		if cerr != nil {
			return false, cerr
		}
		return f != 0, nil
	}
}

// applyNumericPolicy converts non-finite numeric results into error
// values: ±Inf becomes divide-by-zero, anything else non-finite becomes
// numeric overflow.
func applyNumericPolicy(v Value) Value {
	f, isNum := v.(float64)
	if !isNum {
		return v
	}
	if math.IsInf(f, 0) {
		return NewCellError(ErrorCodeDiv0, "")
	}
	if math.IsNaN(f) {
		return NewCellError(ErrorCodeNum, "")
	}
	return v
}
