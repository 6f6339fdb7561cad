package gridsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeAndEmit(t *testing.T) {
	e := NewEmitter()

	var got []Event
	e.Subscribe(EventCellChanged, func(ev Event) { got = append(got, ev) })

	e.Emit(EventCellChanged, map[string]any{"row": 1})
	e.Emit(EventSelectionChanged, nil) // different name, not delivered

	require.Len(t, got, 1)
	assert.Equal(t, EventCellChanged, got[0].Name)
	assert.Equal(t, 1, got[0].Payload["row"])
}

func TestUnsubscribe(t *testing.T) {
	e := NewEmitter()

	calls := 0
	id := e.Subscribe(EventCellChanged, func(Event) { calls++ })
	e.Emit(EventCellChanged, nil)
	e.Unsubscribe(id)
	e.Emit(EventCellChanged, nil)

	assert.Equal(t, 1, calls)
}

func TestPanickingHandlerIsIsolated(t *testing.T) {
	e := NewEmitter()

	var order []string
	e.Subscribe(EventCellChanged, func(Event) { order = append(order, "first") })
	e.Subscribe(EventCellChanged, func(Event) { panic("subscriber bug") })
	e.Subscribe(EventCellChanged, func(Event) { order = append(order, "third") })

	assert.NotPanics(t, func() { e.Emit(EventCellChanged, nil) })
	assert.Equal(t, []string{"first", "third"}, order)
}

func TestBatchDefersEmissions(t *testing.T) {
	e := NewEmitter()

	var names []string
	e.Subscribe(EventCellChanged, func(ev Event) { names = append(names, ev.Name) })
	e.Subscribe(EventWorkbookChanged, func(ev Event) { names = append(names, ev.Name) })

	e.beginBatch()
	e.Emit(EventCellChanged, nil)
	e.Emit(EventWorkbookChanged, nil)
	e.Emit(EventCellChanged, nil)
	assert.Empty(t, names, "emissions defer until the batch completes")

	e.endBatch()
	assert.Equal(t, []string{EventCellChanged, EventWorkbookChanged, EventCellChanged}, names,
		"queued events flush in emission order")
}

func TestWorkbookEmitsEvents(t *testing.T) {
	wb := NewWorkbook()

	var names []string
	for _, name := range []string{EventCellChanged, EventSheetAdded, EventSheetRenamed, EventSheetDeleted, EventSelectionChanged} {
		wb.Events().Subscribe(name, func(ev Event) { names = append(names, ev.Name) })
	}

	require.NoError(t, wb.Set("A1", 1.0))
	sheet, err := wb.AddSheet("Extra")
	require.NoError(t, err)
	require.NoError(t, wb.RenameSheet(sheet.ID, "Extra2"))
	require.NoError(t, wb.DeleteSheet(sheet.ID))
	wb.SetSelection(Selection{Active: CellRef{SheetID: wb.ActiveSheet().ID}})

	assert.Equal(t, []string{
		EventCellChanged,
		EventSheetAdded,
		EventSheetRenamed,
		EventSheetDeleted,
		EventSelectionChanged,
	}, names)
}

func TestWorkbookBatchDefersEvents(t *testing.T) {
	wb := NewWorkbook()

	seen := 0
	wb.Events().Subscribe(EventCellChanged, func(Event) { seen++ })

	require.NoError(t, wb.Batch(func() error {
		if err := wb.Set("A1", 1.0); err != nil {
			return err
		}
		if err := wb.Set("A2", 2.0); err != nil {
			return err
		}
		assert.Zero(t, seen, "no delivery inside the batch")
		return nil
	}))
	assert.Equal(t, 2, seen)
}
