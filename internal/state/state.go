package state

// State is one mode of the application. T is the draw target, *ebiten.Image in the
// viewer.
type State[T any] interface {
	Enter()
	Update(deltaTime float64)
	Draw(screen T)
	Exit()
}

// StateMachine runs the current state.
type StateMachine[T any] struct {
	current State[T]
}

// NewStateMachine creates a state machine with no initial state.
func NewStateMachine[T any]() *StateMachine[T] {
	return &StateMachine[T]{}
}

// SetState exits the current state and enters newState.
func (sm *StateMachine[T]) SetState(newState State[T]) {
	if sm.current != nil {
		sm.current.Exit()
	}
	sm.current = newState
	if sm.current != nil {
		sm.current.Enter()
	}
}

// Current returns the active state, or nil.
func (sm *StateMachine[T]) Current() State[T] {
	return sm.current
}

// Update updates the current state.
func (sm *StateMachine[T]) Update(deltaTime float64) {
	if sm.current != nil {
		sm.current.Update(deltaTime)
	}
}

// Draw draws the current state.
func (sm *StateMachine[T]) Draw(screen T) {
	if sm.current != nil {
		sm.current.Draw(screen)
	}
}
