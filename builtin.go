package gridsheet

import (
	"math"
	"strings"
)

// builtinFunc is a spreadsheet built-in. args arrive evaluated, with range
// arguments already flattened. the error return is reserved for internal
// failures; in-cell errors come back as values.
type builtinFunc func(args []Value) (Value, error)

// builtins is the supported function set. formula-language completeness is
// a non-goal; this covers the aggregate and scalar helpers the engine's own
// surfaces need.
var builtins = map[string]builtinFunc{
	"SUM":     builtinSum,
	"MIN":     builtinMin,
	"MAX":     builtinMax,
	"AVERAGE": builtinAverage,
	"COUNT":   builtinCount,
	"ABS":     builtinAbs,
	"ROUND":   builtinRound,
	"CONCAT":  builtinConcat,
}

// checkForError returns the error if the value is a *CellError, nil
// otherwise.
func checkForError(v Value) *CellError {
	if cerr, ok := v.(*CellError); ok {
		return cerr
	}
	return nil
}

// numericArgs coerces arguments to numbers, skipping empty cells. the first
// error value encountered propagates.
func numericArgs(args []Value) ([]float64, *CellError) {
	nums := make([]float64, 0, len(args))
	for _, v := range args {
		if v == nil {
			continue
		}
		if cerr := checkForError(v); cerr != nil {
			return nil, cerr
		}
		f, cerr := toNumber(v)
		if cerr != nil {
			return nil, cerr
		}
		nums = append(nums, f)
	}
	return nums, nil
}

func builtinSum(args []Value) (Value, error) {
	nums, cerr := numericArgs(args)
	if cerr != nil {
		return cerr, nil
	}
	total := 0.0
	for _, f := range nums {
		total += f
	}
	return total, nil
}

func builtinMin(args []Value) (Value, error) {
	nums, cerr := numericArgs(args)
	if cerr != nil {
		return cerr, nil
	}
	if len(nums) == 0 {
		return 0.0, nil
	}
	lo := nums[0]
	for _, f := range nums[1:] {
		lo = math.Min(lo, f)
	}
	return lo, nil
}

func builtinMax(args []Value) (Value, error) {
	nums, cerr := numericArgs(args)
	if cerr != nil {
		return cerr, nil
	}
	if len(nums) == 0 {
		return 0.0, nil
	}
	hi := nums[0]
	for _, f := range nums[1:] {
		hi = math.Max(hi, f)
	}
	return hi, nil
}

func builtinAverage(args []Value) (Value, error) {
	nums, cerr := numericArgs(args)
	if cerr != nil {
		return cerr, nil
	}
	if len(nums) == 0 {
		return NewCellError(ErrorCodeDiv0, ""), nil
	}
	total := 0.0
	for _, f := range nums {
		total += f
	}
	return total / float64(len(nums)), nil
}

func builtinCount(args []Value) (Value, error) {
	count := 0
	for _, v := range args {
		switch v.(type) {
		case float64, int, bool:
			count++
		}
	}
	return float64(count), nil
}

func builtinAbs(args []Value) (Value, error) {
	if len(args) != 1 {
		return NewCellError(ErrorCodeEval, "ABS expects 1 argument"), nil
	}
	if cerr := checkForError(args[0]); cerr != nil {
		return cerr, nil
	}
	f, cerr := toNumber(args[0])
	if cerr != nil {
		return cerr, nil
	}
	return math.Abs(f), nil
}

func builtinRound(args []Value) (Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return NewCellError(ErrorCodeEval, "ROUND expects 1 or 2 arguments"), nil
	}
	f, cerr := toNumber(args[0])
	if cerr != nil {
		return cerr, nil
	}
	digits := 0.0
	if len(args) == 2 {
		digits, cerr = toNumber(args[1])
		if cerr != nil {
			return cerr, nil
		}
	}
	scale := math.Pow(10, math.Trunc(digits))
	return math.Round(f*scale) / scale, nil
}

func builtinConcat(args []Value) (Value, error) {
	var b strings.Builder
	for _, v := range args {
		if cerr := checkForError(v); cerr != nil {
			return cerr, nil
		}
		b.WriteString(toText(v))
	}
	return b.String(), nil
}

// evalIf implements IF with lazy branch evaluation: only the selected
// branch runs, so an error in the untaken branch never surfaces.
func evalIf(ctx *evalContext, args []astNode) (Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return NewCellError(ErrorCodeEval, "IF expects 2 or 3 arguments"), nil
	}
	cond, err := args[0].eval(ctx)
	if err != nil {
		return nil, err
	}
	truth, cerr := toBool(cond)
	if cerr != nil {
		return cerr, nil
	}
	if truth {
		return args[1].eval(ctx)
	}
	if len(args) == 3 {
		return args[2].eval(ctx)
	}
	return false, nil
}
