package domain

// StateDiff represents the changes between two states.
// It is serialized to JSON for partial updates on streaming clients.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	// Display is set when the rendered sequence changed.
	Display *string `json:"display,omitempty"`

	// Phase is set when the state machine moved.
	Phase *Phase `json:"phase,omitempty"`

	// History carries only the rendered entries appended since the old state.
	History *HistoryDelta `json:"history,omitempty"`

	// Error is set when LastError changed. An empty kind means the error was cleared.
	Error *ErrorKind `json:"error,omitempty"`
}

// HistoryDelta represents new items appended to history.
type HistoryDelta struct {
	Appended []string `json:"appended"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// Returns nil when nothing changed.
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		SessionID: newState.SessionID,
	}

	display := newState.Display()
	if oldState == nil || oldState.Display() != display {
		diff.Display = &display
	}

	phase := newState.Phase()
	if oldState == nil || oldState.Phase() != phase {
		diff.Phase = &phase
	}

	if oldState == nil {
		if newState.LastError != KindNone {
			diff.Error = &newState.LastError
		}
	} else if oldState.LastError != newState.LastError {
		diff.Error = &newState.LastError
	}

	diff.History = diffHistory(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// diffHistory relies on History being append-only.
func diffHistory(old *State, new *State) *HistoryDelta {
	if len(new.History) == 0 {
		return nil
	}

	oldLen := 0
	if old != nil {
		oldLen = len(old.History)
	}
	if len(new.History) <= oldLen {
		return nil
	}

	appended := make([]string, 0, len(new.History)-oldLen)
	for _, h := range new.History[oldLen:] {
		appended = append(appended, h.String())
	}
	return &HistoryDelta{Appended: appended}
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Display == nil &&
		d.Phase == nil &&
		d.Error == nil &&
		d.History == nil
}
