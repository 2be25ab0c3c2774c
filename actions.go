package tape

import (
	"fmt"
	"sync"
)

type Action string

const (
	ActionAddPoint Action = "add-point"
	ActionRestart  Action = "restart"
	ActionBack     Action = "back"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionAddPoint, ActionRestart, ActionBack:
		return a, nil
	}
	return "", fmt.Errorf("parse action %q: %w", s, ErrUnknownAction)
}

// Actions queues the user-facing buttons until the next frame.
type Actions struct {
	onBack func()

	mu        sync.Mutex
	pending   []Action
	nextPoint int
}

func NewActions(onBack func()) *Actions {
	return &Actions{onBack: onBack, nextPoint: 1}
}

func (a *Actions) Trigger(action Action) error {
	if _, err := ParseAction(string(action)); err != nil {
		return err
	}
	a.mu.Lock()
	a.pending = append(a.pending, action)
	a.mu.Unlock()
	return nil
}

// NextPointName is the name the next add-point action will use.
func (a *Actions) NextPointName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return pointName(a.nextPoint)
}

func pointName(n int) string {
	return fmt.Sprintf("Dot-Node-%d", n)
}

func (a *Actions) take() []Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.pending
	a.pending = nil
	return out
}

// Execute runs action right away. Call it on the foreground.
func (a *Actions) Execute(e *Engine, action Action) {
	switch action {
	case ActionAddPoint:
		a.mu.Lock()
		name := pointName(a.nextPoint)
		a.nextPoint++
		a.mu.Unlock()
		e.AddPoint(name)
	case ActionRestart:
		a.mu.Lock()
		a.nextPoint = 1
		a.mu.Unlock()
		e.Restart()
	case ActionBack:
		e.Pause()
		if a.onBack != nil {
			a.onBack()
		}
	}
}

func actionSystem(a *Actions, e *Engine) {
	for _, action := range a.take() {
		a.Execute(e, action)
	}
}
