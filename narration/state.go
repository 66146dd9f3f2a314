package narration

import "fmt"

// Phase is the playback phase of the controller.
type Phase int

const (
	// PhaseIdle means nothing is playing and the index is at the start.
	PhaseIdle Phase = iota
	// PhasePlaying means points are being revealed and narrated.
	PhasePlaying
	// PhasePaused means playback is halted mid-point.
	PhasePaused
	// PhaseCompleted means the last point has finished.
	PhaseCompleted
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// PlaybackState is a snapshot of the controller.
type PlaybackState struct {
	Phase        Phase
	CurrentIndex int    // meaningful while playing or paused
	Total        int    // number of points loaded
	RevealedText string // words of the current point shown so far
	IsNarrating  bool   // speaker is producing audio
	VoiceEnabled bool
}

// IsActive returns true while a point is in progress.
func (s PlaybackState) IsActive() bool {
	return s.Phase == PhasePlaying || s.Phase == PhasePaused
}

// CanStart returns true if Start would begin or resume playback.
func (s PlaybackState) CanStart() bool {
	return s.Phase != PhasePlaying
}

// CanTogglePause returns true if TogglePause has an effect.
func (s PlaybackState) CanTogglePause() bool {
	return s.IsActive()
}

// StateMachine guards phase transitions.
type StateMachine struct {
	current     Phase
	transitions map[Phase][]Phase
	onEnter     map[Phase]func()
	onExit      map[Phase]func()
}

// NewStateMachine creates a state machine starting in PhaseIdle.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: PhaseIdle,
		transitions: map[Phase][]Phase{
			PhaseIdle:      {PhasePlaying},
			PhasePlaying:   {PhasePaused, PhaseCompleted, PhaseIdle},
			PhasePaused:    {PhasePlaying, PhaseIdle},
			PhaseCompleted: {PhasePlaying, PhaseIdle},
		},
		onEnter: make(map[Phase]func()),
		onExit:  make(map[Phase]func()),
	}
}

// Transition moves to the given phase, running exit and enter hooks. It
// returns ErrStateTransition if the move is not allowed.
func (sm *StateMachine) Transition(to Phase) error {
	valid := false
	for _, p := range sm.transitions[sm.current] {
		if p == to {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: %s -> %s", ErrStateTransition, sm.current, to)
	}

	if exitFn := sm.onExit[sm.current]; exitFn != nil {
		exitFn()
	}

	sm.current = to

	if enterFn := sm.onEnter[to]; enterFn != nil {
		enterFn()
	}

	return nil
}

// Can reports whether a transition to the given phase is allowed.
func (sm *StateMachine) Can(to Phase) bool {
	for _, p := range sm.transitions[sm.current] {
		if p == to {
			return true
		}
	}
	return false
}

// Current returns the current phase.
func (sm *StateMachine) Current() Phase {
	return sm.current
}

// OnEnter registers a callback for entering a phase.
func (sm *StateMachine) OnEnter(p Phase, fn func()) {
	sm.onEnter[p] = fn
}

// OnExit registers a callback for leaving a phase.
func (sm *StateMachine) OnExit(p Phase, fn func()) {
	sm.onExit[p] = fn
}
