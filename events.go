package gridsheet

import (
	"fmt"

	"github.com/google/uuid"
)

// event names emitted by the engine.
const (
	EventCellChanged      = "cell.changed"
	EventSelectionChanged = "selection.changed"
	EventSheetAdded       = "sheet.added"
	EventSheetDeleted     = "sheet.deleted"
	EventSheetRenamed     = "sheet.renamed"
	EventSheetSwitched    = "sheet.switched"
	EventWorkbookChanged  = "workbook.changed"
)

// Event is one named notification with a plain payload.
type Event struct {
	Name    string
	Payload map[string]any
}

// Handler receives events. a panicking handler is isolated: it is recovered,
// logged, and never prevents other subscribers from being notified.
type Handler func(Event)

type subscription struct {
	id uuid.UUID
	fn Handler
}

// Emitter dispatches named events to subscribers. while a batch is open,
// emissions queue up and flush in order when the batch completes.
type Emitter struct {
	subscribers map[string][]subscription
	batching    bool
	queued      []Event
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{
		subscribers: make(map[string][]subscription),
	}
}

// Subscribe registers a handler for the named event and returns a token for
// Unsubscribe.
func (e *Emitter) Subscribe(name string, fn Handler) uuid.UUID {
	id := uuid.New()
	e.subscribers[name] = append(e.subscribers[name], subscription{id: id, fn: fn})
	return id
}

// Unsubscribe removes a previously registered handler.
func (e *Emitter) Unsubscribe(id uuid.UUID) {
	for name, subs := range e.subscribers {
		for i, sub := range subs {
			if sub.id == id {
				e.subscribers[name] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Emit dispatches an event, or queues it while a batch is open.
func (e *Emitter) Emit(name string, payload map[string]any) {
	ev := Event{Name: name, Payload: payload}
	if e.batching {
		e.queued = append(e.queued, ev)
		return
	}
	e.dispatch(ev)
}

func (e *Emitter) dispatch(ev Event) {
	for _, sub := range e.subscribers[ev.Name] {
		e.invoke(sub.fn, ev)
	}
}

// invoke isolates one handler call so a throwing subscriber cannot prevent
// the others from being notified.
func (e *Emitter) invoke(fn Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Warn("event handler panicked",
				"event", ev.Name,
				"panic", fmt.Sprintf("%v", r))
		}
	}()
	fn(ev)
}

// beginBatch starts deferring emissions.
func (e *Emitter) beginBatch() {
	e.batching = true
}

// endBatch flushes queued emissions in order.
func (e *Emitter) endBatch() {
	e.batching = false
	queued := e.queued
	e.queued = nil
	for _, ev := range queued {
		e.dispatch(ev)
	}
}
