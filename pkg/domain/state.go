package domain

import "strings"

// MaxSequenceLength bounds the input sequence to one binary expression.
const MaxSequenceLength = 3

// Phase names the position of the state machine, derived from the sequence length.
type Phase string

const (
	PhaseEmpty               Phase = "empty"                 // no tokens
	PhasePartialBinary       Phase = "partial_binary"        // first operand only
	PhasePartialWithOperator Phase = "partial_with_operator" // operand and operator
	PhaseReadyToEvaluate     Phase = "ready_to_evaluate"     // full expression
)

// State is the snapshot of one calculator session.
type State struct {
	// SessionID identifies the session in stores and event streams.
	SessionID string `json:"session_id"`

	// Sequence holds at most MaxSequenceLength tokens.
	Sequence []Token `json:"sequence"`

	// History is append-only, oldest first.
	History []HistoryEntry `json:"history"`

	// LastError is set by a failed evaluation and cleared by a successful one or by Clear.
	LastError ErrorKind `json:"last_error,omitempty"`
}

// NewState creates an empty session state.
func NewState(sessionID string) *State {
	return &State{
		SessionID: sessionID,
		Sequence:  make([]Token, 0, MaxSequenceLength),
		History:   []HistoryEntry{},
	}
}

// Phase derives the current state machine position.
func (s *State) Phase() Phase {
	switch len(s.Sequence) {
	case 0:
		return PhaseEmpty
	case 1:
		return PhasePartialBinary
	case 2:
		return PhasePartialWithOperator
	default:
		return PhaseReadyToEvaluate
	}
}

// Display joins the sequence tokens with single spaces, e.g. "3 + 4".
func (s *State) Display() string {
	parts := make([]string, len(s.Sequence))
	for i, t := range s.Sequence {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

// Snapshot returns a deep copy so callers can diff or store it safely.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Sequence = append(make([]Token, 0, MaxSequenceLength), s.Sequence...)
	cp.History = append([]HistoryEntry{}, s.History...)
	return &cp
}

// View is the read model handed to renderers.
type View struct {
	SessionID string    `json:"session_id"`
	Display   string    `json:"display"`
	Phase     Phase     `json:"phase"`
	History   []string  `json:"history"`
	Error     ErrorKind `json:"error,omitempty"`
	Message   string    `json:"message,omitempty"`
	Rejected  string    `json:"rejected,omitempty"`
}

// NewView renders the state into a View.
func NewView(s *State) View {
	history := make([]string, len(s.History))
	for i, h := range s.History {
		history[i] = h.String()
	}
	return View{
		SessionID: s.SessionID,
		Display:   s.Display(),
		Phase:     s.Phase(),
		History:   history,
		Error:     s.LastError,
		Message:   s.LastError.Message(),
	}
}
