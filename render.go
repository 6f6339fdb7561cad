package gridsheet

import (
	"strconv"
	"strings"

	"github.com/gogpu/gg"
)

// palette. hex strings feed gg.SetHexColor directly.
const (
	colorGridBackground  = "#ffffff"
	colorGridLine        = "#e2e2e2"
	colorHeaderFill      = "#f5f5f5"
	colorHeaderText      = "#444444"
	colorCellText        = "#1a1a1a"
	colorErrorText       = "#cc0000"
	colorSelectionFill   = "#d7e7fb"
	colorSelectionBorder = "#1a73e8"
	colorFrozenSeparator = "#9e9e9e"
	colorHiddenIndicator = "#757575"
)

const cellTextPadding = 4.0

// RenderState is the immutable input snapshot for one paint: the sheet,
// the selection, the pooled style/format tables, and the layout that owns
// the coordinate rule. Render never mutates it, so repeated identical
// inputs paint identical output.
type RenderState struct {
	Layout    *Layout
	Selection Selection
	Styles    *Pool[Style]
	Formats   *Pool[Format]
}

// NewRenderState captures the workbook's active sheet, selection and pools.
func NewRenderState(wb *Workbook) *RenderState {
	return &RenderState{
		Layout:    NewLayout(wb.ActiveSheet()),
		Selection: wb.Selection(),
		Styles:    wb.Styles(),
		Formats:   wb.Formats(),
	}
}

// Renderer holds the SetState/SetViewport pair the UI collaborator calls
// before each paint.
type Renderer struct {
	state *RenderState
	vp    Viewport
}

// NewRenderer creates a renderer with no state bound yet.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// SetState replaces the render-state snapshot consumed by the next paint.
func (r *Renderer) SetState(state *RenderState) { r.state = state }

// SetViewport replaces the viewport consumed by the next paint.
func (r *Renderer) SetViewport(vp Viewport) { r.vp = vp }

// Paint renders the bound state to the canvas.
func (r *Renderer) Paint(c *gg.Context) error {
	if r.state == nil {
		return NewAppError(FailedPrecondition, "renderer has no state bound")
	}
	return Render(r.state, r.vp, c)
}

// painter tracks the first fill/stroke error so the paint sequence reads
// linearly instead of threading error checks through every call.
type painter struct {
	c   *gg.Context
	err error
}

func (p *painter) fill() {
	if e := p.c.Fill(); e != nil && p.err == nil {
		p.err = e
	}
}

func (p *painter) stroke() {
	if e := p.c.Stroke(); e != nil && p.err == nil {
		p.err = e
	}
}

// Render paints the grid, cells, headers, freeze separators, hidden-band
// indicators, selection and fill handle from the state snapshot plus the
// viewport. pure: identical inputs produce identical pixels. text is only
// drawn when a font face has been set on the context.
func Render(state *RenderState, vp Viewport, c *gg.Context) error {
	l := state.Layout
	p := &painter{c: c}

	rows := visibleRows(l, vp)
	cols := visibleCols(l, vp)

	// background
	c.SetHexColor(colorGridBackground)
	c.DrawRectangle(0, 0, vp.Width, vp.Height)
	p.fill()

	paintCells(p, state, vp, rows, cols)
	paintGridLines(p, l, vp, rows, cols)
	paintHiddenIndicators(p, l, vp, rows, cols)
	paintHeaders(p, l, vp, rows, cols)
	paintFrozenSeparators(p, l, vp)
	paintSelection(p, l, vp, state.Selection)

	return p.err
}

// visibleRows collects the row indices whose bounds intersect the viewport:
// the frozen block first, then scrollable rows until the bottom edge.
func visibleRows(l *Layout, vp Viewport) []int {
	var out []int
	for r := 0; r < l.Sheet.FrozenRows(); r++ {
		if l.rowHeight(r) > 0 {
			out = append(out, r)
		}
	}
	for r := l.Sheet.FrozenRows(); r < l.Sheet.Rows(); r++ {
		h := l.rowHeight(r)
		if h == 0 {
			continue
		}
		top := l.rowTop(vp, r)
		if top+h <= l.HeaderHeight+l.frozenHeight() {
			continue // scrolled under the frozen block
		}
		if top >= vp.Height {
			break
		}
		out = append(out, r)
	}
	return out
}

func visibleCols(l *Layout, vp Viewport) []int {
	var out []int
	for c := 0; c < l.Sheet.FrozenCols(); c++ {
		if l.colWidth(c) > 0 {
			out = append(out, c)
		}
	}
	for c := l.Sheet.FrozenCols(); c < l.Sheet.Cols(); c++ {
		w := l.colWidth(c)
		if w == 0 {
			continue
		}
		left := l.colLeft(vp, c)
		if left+w <= l.HeaderWidth+l.frozenWidth() {
			continue
		}
		if left >= vp.Width {
			break
		}
		out = append(out, c)
	}
	return out
}

func paintCells(p *painter, state *RenderState, vp Viewport, rows, cols []int) {
	l := state.Layout
	for _, row := range rows {
		for _, col := range cols {
			cell := l.Sheet.GetCell(row, col)
			if cell == nil {
				continue
			}
			bounds, ok := l.CellBounds(vp, row, col)
			if !ok {
				continue
			}

			style, hasStyle := state.Styles.Get(cell.StyleID)
			if hasStyle && style.Background != "" {
				p.c.SetHexColor(style.Background)
				p.c.DrawRectangle(bounds.X, bounds.Y, bounds.W, bounds.H)
				p.fill()
			}

			text := cellDisplayText(cell, state.Formats)
			if text == "" {
				continue
			}
			switch {
			case IsCellError(cell.Value):
				p.c.SetHexColor(colorErrorText)
			case hasStyle && style.TextColor != "":
				p.c.SetHexColor(style.TextColor)
			default:
				p.c.SetHexColor(colorCellText)
			}
			tx := bounds.X + cellTextPadding
			if hasStyle && style.AlignH == "right" {
				w, _ := p.c.MeasureString(text)
				tx = bounds.X + bounds.W - w - cellTextPadding
			} else if hasStyle && style.AlignH == "center" {
				w, _ := p.c.MeasureString(text)
				tx = bounds.X + (bounds.W-w)/2
			}
			p.c.DrawString(text, tx, bounds.Y+bounds.H-cellTextPadding)
		}
	}
}

func paintGridLines(p *painter, l *Layout, vp Viewport, rows, cols []int) {
	p.c.SetHexColor(colorGridLine)
	p.c.SetLineWidth(1)

	right := min64(l.TotalWidth(), vp.Width)
	bottom := min64(l.TotalHeight(), vp.Height)

	for _, row := range rows {
		y := l.rowTop(vp, row) + l.rowHeight(row)
		p.c.DrawLine(l.HeaderWidth, y, right, y)
		p.stroke()
	}
	for _, col := range cols {
		x := l.colLeft(vp, col) + l.colWidth(col)
		p.c.DrawLine(x, l.HeaderHeight, x, bottom)
		p.stroke()
	}
}

// paintHiddenIndicators draws the double-line marker where a hidden band
// collapses between two visible indices.
func paintHiddenIndicators(p *painter, l *Layout, vp Viewport, rows, cols []int) {
	p.c.SetHexColor(colorHiddenIndicator)
	p.c.SetLineWidth(1)

	right := min64(l.TotalWidth(), vp.Width)
	bottom := min64(l.TotalHeight(), vp.Height)

	for _, row := range rows {
		if _, _, ok := l.Sheet.AdjacentHiddenRows(row + 1); !ok || !l.Sheet.IsRowHidden(row+1) {
			continue
		}
		y := l.rowTop(vp, row) + l.rowHeight(row)
		p.c.DrawLine(l.HeaderWidth, y-1.5, right, y-1.5)
		p.stroke()
		p.c.DrawLine(l.HeaderWidth, y+1.5, right, y+1.5)
		p.stroke()
	}
	for _, col := range cols {
		if _, _, ok := l.Sheet.AdjacentHiddenCols(col + 1); !ok || !l.Sheet.IsColHidden(col+1) {
			continue
		}
		x := l.colLeft(vp, col) + l.colWidth(col)
		p.c.DrawLine(x-1.5, l.HeaderHeight, x-1.5, bottom)
		p.stroke()
		p.c.DrawLine(x+1.5, l.HeaderHeight, x+1.5, bottom)
		p.stroke()
	}
}

func paintHeaders(p *painter, l *Layout, vp Viewport, rows, cols []int) {
	// strips
	p.c.SetHexColor(colorHeaderFill)
	p.c.DrawRectangle(0, 0, vp.Width, l.HeaderHeight)
	p.fill()
	p.c.DrawRectangle(0, 0, l.HeaderWidth, vp.Height)
	p.fill()

	p.c.SetHexColor(colorGridLine)
	p.c.SetLineWidth(1)
	p.c.DrawLine(0, l.HeaderHeight, vp.Width, l.HeaderHeight)
	p.stroke()
	p.c.DrawLine(l.HeaderWidth, 0, l.HeaderWidth, vp.Height)
	p.stroke()

	p.c.SetHexColor(colorHeaderText)
	for _, col := range cols {
		x := l.colLeft(vp, col)
		if x < l.HeaderWidth {
			continue
		}
		name := ColName(col)
		w, _ := p.c.MeasureString(name)
		p.c.DrawString(name, x+(l.colWidth(col)-w)/2, l.HeaderHeight-cellTextPadding)
	}
	for _, row := range rows {
		y := l.rowTop(vp, row)
		if y < l.HeaderHeight {
			continue
		}
		label := strconv.Itoa(row + 1)
		w, _ := p.c.MeasureString(label)
		p.c.DrawString(label, (l.HeaderWidth-w)/2, y+l.rowHeight(row)-cellTextPadding)
	}
}

func paintFrozenSeparators(p *painter, l *Layout, vp Viewport) {
	p.c.SetHexColor(colorFrozenSeparator)
	p.c.SetLineWidth(2)

	if l.Sheet.FrozenRows() > 0 {
		y := l.HeaderHeight + l.frozenHeight()
		p.c.DrawLine(0, y, vp.Width, y)
		p.stroke()
	}
	if l.Sheet.FrozenCols() > 0 {
		x := l.HeaderWidth + l.frozenWidth()
		p.c.DrawLine(x, 0, x, vp.Height)
		p.stroke()
	}
}

func paintSelection(p *painter, l *Layout, vp Viewport, sel Selection) {
	for _, r := range sel.Ranges {
		bounds, ok := l.RangeBounds(vp, r)
		if !ok {
			continue
		}
		p.c.SetHexColor(colorSelectionFill + "40") // translucent
		p.c.DrawRectangle(bounds.X, bounds.Y, bounds.W, bounds.H)
		p.fill()
		p.c.SetHexColor(colorSelectionBorder)
		p.c.SetLineWidth(2)
		p.c.DrawRectangle(bounds.X, bounds.Y, bounds.W, bounds.H)
		p.stroke()
	}

	if handle, ok := l.FillHandleBounds(vp, sel); ok {
		p.c.SetHexColor(colorSelectionBorder)
		p.c.DrawRectangle(handle.X, handle.Y, handle.W, handle.H)
		p.fill()
	}
}

// cellDisplayText renders a cell's value for painting, honoring a pooled
// numeric format pattern when one is attached.
func cellDisplayText(cell *Cell, formats *Pool[Format]) string {
	switch v := cell.Value.(type) {
	case nil:
		return ""
	case *CellError:
		return ErrorMapper[v.Code]
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return v
	case float64:
		if f, ok := formats.Get(cell.FormatID); ok {
			return formatNumber(v, f.Pattern)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// formatNumber applies a "0.00"-style pattern: the decimal places shown
// follow the digits after the pattern's decimal point. anything fancier is
// the formatting collaborator's job.
func formatNumber(v float64, pattern string) string {
	if _, frac, ok := strings.Cut(pattern, "."); ok {
		return strconv.FormatFloat(v, 'f', len(frac), 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
