package gridsheet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/efp"
)

// formula text surface: leading '='; cell references of the form
// (optional $)(column letters)(optional $)(row digits); ranges as REF:REF;
// cross-sheet references as SheetName!REF or 'Sheet Name'!REF.
//
// tokenization is delegated to the efp Excel formula parser; a small
// precedence parser over its token stream builds the AST.

// astNode is a parsed formula expression.
type astNode interface {
	// eval computes the node's value against an evaluation context. the
	// returned error is only ever a *CellError.
	eval(ctx *evalContext) (Value, error)
}

type numberNode struct {
	val float64
}

type stringNode struct {
	val string
}

type boolNode struct {
	val bool
}

// refNode is a single cell reference. relative axes store an offset from
// the owning formula cell, so the same AST resolves to different absolute
// targets depending on where it is evaluated from.
type refNode struct {
	sheet  string // "" for the current sheet
	rowAbs bool
	colAbs bool
	row    int // absolute index when rowAbs, offset from anchor otherwise
	col    int
}

// rangeNode is a rectangular REF:REF reference.
type rangeNode struct {
	sheet string
	start refNode
	end   refNode
}

type unaryNode struct {
	op      string // "-", "+", "%"
	operand astNode
}

type binaryNode struct {
	op    string
	left  astNode
	right astNode
}

type callNode struct {
	name string
	args []astNode
}

// resolve maps the reference to absolute (row, col) for the given anchor.
func (n refNode) resolve(anchorRow, anchorCol int) (int, int) {
	row, col := n.row, n.col
	if !n.rowAbs {
		row += anchorRow
	}
	if !n.colAbs {
		col += anchorCol
	}
	return row, col
}

// ParseFormula parses formula text (with or without the leading '=') into
// an AST anchored at the owning cell. returns a *CellError-typed error for
// malformed input; callers store that error as the cell's value.
func ParseFormula(text string, anchorRow, anchorCol int) (astNode, error) {
	body := strings.TrimPrefix(text, "=")
	if strings.TrimSpace(body) == "" {
		return nil, NewCellError(ErrorCodeParse, "empty formula")
	}

	parser := efp.ExcelParser()
	tokens := parser.Parse(body)
	if tokens == nil {
		return nil, NewCellError(ErrorCodeParse, "malformed formula: "+text)
	}

	p := &formulaParser{
		tokens:    filterTokens(tokens),
		anchorRow: anchorRow,
		anchorCol: anchorCol,
	}
	node, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, NewCellError(ErrorCodeParse, fmt.Sprintf("unexpected token %q", p.peek().TValue))
	}
	return node, nil
}

// filterTokens drops whitespace tokens; efp emits them verbatim.
func filterTokens(tokens []efp.Token) []efp.Token {
	out := tokens[:0:0]
	for _, t := range tokens {
		if t.TType == efp.TokenTypeWhitespace {
			continue
		}
		out = append(out, t)
	}
	return out
}

// formulaParser is a precedence-climbing parser over efp tokens.
type formulaParser struct {
	tokens    []efp.Token
	pos       int
	anchorRow int
	anchorCol int
}

// binding powers, lowest first. comparison < concatenation < additive <
// multiplicative < exponentiation.
var infixPower = map[string]int{
	"=": 1, "<>": 1, "<": 1, ">": 1, "<=": 1, ">=": 1,
	"&": 2,
	"+": 3, "-": 3,
	"*": 4, "/": 4,
	"^": 5,
}

func (p *formulaParser) done() bool {
	return p.pos >= len(p.tokens)
}

func (p *formulaParser) peek() efp.Token {
	if p.done() {
		return efp.Token{}
	}
	return p.tokens[p.pos]
}

func (p *formulaParser) next() efp.Token {
	t := p.peek()
	p.pos++
	return t
}

func (p *formulaParser) parseExpr(minPower int) (astNode, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for !p.done() {
		t := p.peek()
		if t.TType == efp.TokenTypeOperatorPostfix {
			p.next()
			left = &unaryNode{op: "%", operand: left}
			continue
		}
		if t.TType != efp.TokenTypeOperatorInfix {
			break
		}
		power, known := infixPower[t.TValue]
		if !known {
			return nil, NewCellError(ErrorCodeParse, fmt.Sprintf("unknown operator %q", t.TValue))
		}
		if power < minPower {
			break
		}
		p.next()
		right, err := p.parseExpr(power + 1)
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: t.TValue, left: left, right: right}
	}
	return left, nil
}

func (p *formulaParser) parsePrimary() (astNode, error) {
	if p.done() {
		return nil, NewCellError(ErrorCodeParse, "unexpected end of formula")
	}
	t := p.next()

	switch t.TType {
	case efp.TokenTypeOperatorPrefix:
		operand, err := p.parseExpr(infixPower["^"] + 1)
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: t.TValue, operand: operand}, nil

	case efp.TokenTypeOperand:
		switch t.TSubType {
		case efp.TokenSubTypeNumber:
			f, err := strconv.ParseFloat(t.TValue, 64)
			if err != nil {
				return nil, NewCellError(ErrorCodeParse, "bad number: "+t.TValue)
			}
			return &numberNode{val: f}, nil
		case efp.TokenSubTypeText:
			return &stringNode{val: t.TValue}, nil
		case efp.TokenSubTypeLogical:
			return &boolNode{val: strings.EqualFold(t.TValue, "TRUE")}, nil
		case efp.TokenSubTypeRange:
			return p.parseReference(t.TValue)
		case efp.TokenSubTypeError:
			// #REF! literals appear after fill adjustment pushes a
			// reference off the grid
			if t.TValue == "#REF!" {
				return nil, NewCellError(ErrorCodeRef, "")
			}
			return nil, NewCellError(ErrorCodeParse, "error literal: "+t.TValue)
		}
		return nil, NewCellError(ErrorCodeParse, fmt.Sprintf("unexpected operand %q", t.TValue))

	case efp.TokenTypeSubexpression:
		if t.TSubType != efp.TokenSubTypeStart {
			return nil, NewCellError(ErrorCodeParse, "unbalanced parentheses")
		}
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if stop := p.next(); stop.TType != efp.TokenTypeSubexpression || stop.TSubType != efp.TokenSubTypeStop {
			return nil, NewCellError(ErrorCodeParse, "unbalanced parentheses")
		}
		return inner, nil

	case efp.TokenTypeFunction:
		if t.TSubType != efp.TokenSubTypeStart {
			return nil, NewCellError(ErrorCodeParse, "unexpected function end")
		}
		return p.parseCall(strings.ToUpper(t.TValue))
	}

	return nil, NewCellError(ErrorCodeParse, fmt.Sprintf("unexpected token %q", t.TValue))
}

func (p *formulaParser) parseCall(name string) (astNode, error) {
	call := &callNode{name: name}

	// zero-argument call: the next token is the function stop
	if t := p.peek(); t.TType == efp.TokenTypeFunction && t.TSubType == efp.TokenSubTypeStop {
		p.next()
		return call, nil
	}

	for {
		arg, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		call.args = append(call.args, arg)

		t := p.next()
		if t.TType == efp.TokenTypeArgument {
			continue
		}
		if t.TType == efp.TokenTypeFunction && t.TSubType == efp.TokenSubTypeStop {
			return call, nil
		}
		return nil, NewCellError(ErrorCodeParse, fmt.Sprintf("unexpected token %q in %s()", t.TValue, name))
	}
}

// parseReference handles A1, $A$1, A1:B2, Sheet1!A1 and 'Sheet Name'!A1:B2.
func (p *formulaParser) parseReference(ref string) (astNode, error) {
	sheet, rest := splitSheetPrefix(ref)

	if start, end, isRange := strings.Cut(rest, ":"); isRange {
		startRef, ok := p.parseA1(start)
		if !ok {
			return nil, NewCellError(ErrorCodeParse, "bad range start: "+ref)
		}
		endRef, ok := p.parseA1(end)
		if !ok {
			return nil, NewCellError(ErrorCodeParse, "bad range end: "+ref)
		}
		return &rangeNode{sheet: sheet, start: startRef, end: endRef}, nil
	}

	node, ok := p.parseA1(rest)
	if !ok {
		return nil, NewCellError(ErrorCodeParse, "bad reference: "+ref)
	}
	node.sheet = sheet
	return &node, nil
}

// parseA1 decodes one (optional $)(letters)(optional $)(digits) reference.
// relative axes are stored as offsets from the parse anchor.
func (p *formulaParser) parseA1(ref string) (refNode, bool) {
	m := cellRefPattern.FindStringSubmatch(ref)
	if m == nil || m[0] != ref {
		return refNode{}, false
	}

	colAbs := m[1] == "$"
	col := ColIndex(m[2])
	rowAbs := m[3] == "$"
	row, err := strconv.Atoi(m[4])
	if err != nil || col < 0 || row < 1 {
		return refNode{}, false
	}
	row-- // A1 rows are 1-based

	node := refNode{rowAbs: rowAbs, colAbs: colAbs, row: row, col: col}
	if !rowAbs {
		node.row = row - p.anchorRow
	}
	if !colAbs {
		node.col = col - p.anchorCol
	}
	return node, true
}

var cellRefPattern = regexp.MustCompile(`^(\$?)([A-Za-z]{1,3})(\$?)([0-9]+)$`)

// splitSheetPrefix peels "Sheet!" or "'Sheet Name'!" off a reference.
func splitSheetPrefix(ref string) (sheet, rest string) {
	idx := strings.LastIndex(ref, "!")
	if idx < 0 {
		return "", ref
	}
	sheet = ref[:idx]
	rest = ref[idx+1:]
	if len(sheet) >= 2 && sheet[0] == '\'' && sheet[len(sheet)-1] == '\'' {
		sheet = strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
	}
	return sheet, rest
}

// ExtractDependencies resolves every reference in the AST against the
// owning cell and returns the dependency set for the graph. range
// references expand to their member cells.
func ExtractDependencies(node astNode, ownSheet uint32, anchorRow, anchorCol int, resolveSheet func(string) (uint32, bool)) []NodeRef {
	seen := make(map[NodeRef]struct{})
	var walk func(astNode)
	walk = func(n astNode) {
		switch v := n.(type) {
		case *refNode:
			sheetID, ok := resolveRefSheet(v.sheet, ownSheet, resolveSheet)
			if !ok {
				return
			}
			row, col := v.resolve(anchorRow, anchorCol)
			if row >= 0 && col >= 0 {
				seen[NodeRef{SheetID: sheetID, Key: Key(row, col)}] = struct{}{}
			}
		case *rangeNode:
			sheetID, ok := resolveRefSheet(v.sheet, ownSheet, resolveSheet)
			if !ok {
				return
			}
			r1, c1 := v.start.resolve(anchorRow, anchorCol)
			r2, c2 := v.end.resolve(anchorRow, anchorCol)
			if r1 > r2 {
				r1, r2 = r2, r1
			}
			if c1 > c2 {
				c1, c2 = c2, c1
			}
			for row := max(r1, 0); row <= r2; row++ {
				for col := max(c1, 0); col <= c2; col++ {
					seen[NodeRef{SheetID: sheetID, Key: Key(row, col)}] = struct{}{}
				}
			}
		case *unaryNode:
			walk(v.operand)
		case *binaryNode:
			walk(v.left)
			walk(v.right)
		case *callNode:
			for _, arg := range v.args {
				walk(arg)
			}
		}
	}
	walk(node)
	return sortedRefs(seen)
}

func resolveRefSheet(name string, ownSheet uint32, resolveSheet func(string) (uint32, bool)) (uint32, bool) {
	if name == "" {
		return ownSheet, true
	}
	return resolveSheet(name)
}

// refMatchPattern locates textual cell references for fill adjustment; the
// optional quoted or bare sheet prefix is kept intact.
var refMatchPattern = regexp.MustCompile(`('[^']*'!|[A-Za-z_][A-Za-z0-9_]*!)?(\$?)([A-Za-z]{1,3})(\$?)([0-9]+)`)

// AdjustFormulaRefs rewrites the formula's textual references
// arithmetically by (dRow, dCol), skipping $-pinned axes. references that
// would shift off the grid become #REF!. sheet prefixes, quoted or not,
// are preserved verbatim, and string literals are copied through untouched
// so "A1" inside quotes never shifts.
func AdjustFormulaRefs(formula string, dRow, dCol int) string {
	var b strings.Builder
	rest := formula
	for {
		q := strings.IndexByte(rest, '"')
		if q < 0 {
			b.WriteString(adjustRefSegment(rest, dRow, dCol))
			return b.String()
		}
		b.WriteString(adjustRefSegment(rest[:q], dRow, dCol))
		end := stringLiteralEnd(rest, q)
		b.WriteString(rest[q:end])
		rest = rest[end:]
	}
}

// stringLiteralEnd returns the index just past the string literal opening
// at start. doubled quotes escape a quote inside the literal; an
// unterminated literal runs to the end of the formula.
func stringLiteralEnd(s string, start int) int {
	i := start + 1
	for i < len(s) {
		if s[i] == '"' {
			if i+1 < len(s) && s[i+1] == '"' {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return len(s)
}

// adjustRefSegment rewrites references in a quote-free slice of formula
// text. a letters+digits token directly followed by '(' is a function name
// like LOG10 and is left alone.
func adjustRefSegment(formula string, dRow, dCol int) string {
	matches := refMatchPattern.FindAllStringSubmatchIndex(formula, -1)
	if matches == nil {
		return formula
	}

	var b strings.Builder
	prev := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		b.WriteString(formula[prev:start])
		prev = end

		if end < len(formula) && formula[end] == '(' {
			b.WriteString(formula[start:end])
			continue
		}

		group := func(i int) string {
			if m[2*i] < 0 {
				return ""
			}
			return formula[m[2*i]:m[2*i+1]]
		}
		prefix, colDollar, colLetters, rowDollar, rowDigits := group(1), group(2), group(3), group(4), group(5)

		col := ColIndex(colLetters)
		row, _ := strconv.Atoi(rowDigits)
		row--

		if colDollar == "" {
			col += dCol
		}
		if rowDollar == "" {
			row += dRow
		}
		if row < 0 || col < 0 {
			b.WriteString(prefix + "#REF!")
			continue
		}
		b.WriteString(prefix + colDollar + ColName(col) + rowDollar + strconv.Itoa(row+1))
	}
	b.WriteString(formula[prev:])
	return b.String()
}
