package tape

import (
	"sync"

	"github.com/gekko3d/tape/spatial/core"
)

const defaultDragBuffer = 64

type DragPhase int

const (
	DragBegan DragPhase = iota
	DragChanged
	DragEnded
)

// DragEvent is one step of a pan gesture over the view.
type DragEvent struct {
	Phase DragPhase
	Point core.ScreenPoint
	// Object is the point being dragged. On DragBegan a nil Object is resolved
	// by hit testing Point.
	Object *core.PointObject
}

// Interaction holds the selection and the drag stream fed by gesture handling.
type Interaction struct {
	mu       sync.Mutex
	selected *core.PointObject
	tracked  *core.PointObject

	events chan DragEvent
}

func NewInteraction(buffer int) *Interaction {
	return &Interaction{events: make(chan DragEvent, buffer)}
}

func (i *Interaction) SelectedObject() *core.PointObject {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.selected
}

func (i *Interaction) SetSelected(obj *core.PointObject) {
	i.mu.Lock()
	i.selected = obj
	i.mu.Unlock()
}

// TrackedObject is the point currently being dragged.
func (i *Interaction) TrackedObject() *core.PointObject {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.tracked
}

func (i *Interaction) setTracked(obj *core.PointObject) {
	i.mu.Lock()
	i.tracked = obj
	i.mu.Unlock()
}

// Drag queues an event for the next frame. It never blocks and reports false
// when the queue is full.
func (i *Interaction) Drag(ev DragEvent) bool {
	select {
	case i.events <- ev:
		return true
	default:
		return false
	}
}

func (i *Interaction) drain(fn func(DragEvent)) {
	for {
		select {
		case ev := <-i.events:
			fn(ev)
		default:
			return
		}
	}
}

func (e *Engine) handleDrag(ev DragEvent) {
	switch ev.Phase {
	case DragBegan:
		obj := ev.Object
		if obj == nil {
			obj = e.pointAt(ev.Point)
		}
		if obj == nil || obj.IsRemoved() {
			return
		}
		e.interaction.setTracked(obj)
		e.interaction.SetSelected(obj)
	case DragChanged:
		obj := e.interaction.TrackedObject()
		if obj == nil {
			return
		}
		query, ok := e.scene.RaycastQuery(ev.Point, obj.AllowedAlignment)
		if !ok {
			return
		}
		e.Reanchor(obj, query)
	case DragEnded:
		obj := e.interaction.TrackedObject()
		e.interaction.setTracked(nil)
		if obj != nil {
			e.RequestAnchorUpdate(obj)
		}
	}
}

func (e *Engine) pointAt(p core.ScreenPoint) *core.PointObject {
	for _, node := range e.scene.HitTest(p, core.HitTestOptions{SearchAll: true, IgnoreHidden: true}) {
		if obj, ok := node.(*core.PointObject); ok {
			return obj
		}
	}
	return nil
}

func interactionSystem(e *Engine) {
	e.interaction.drain(e.handleDrag)
}
