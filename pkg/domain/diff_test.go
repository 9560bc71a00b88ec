package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestDiff(t *testing.T) {
	ready := &State{
		SessionID: "sess-1",
		Sequence:  []Token{Operand("7"), OperatorToken(OpAdd), Operand("8")},
		History:   []HistoryEntry{},
	}
	evaluated := &State{
		SessionID: "sess-1",
		Sequence:  []Token{Operand("15")},
		History:   []HistoryEntry{{OperandA: "7", Operator: OpAdd, OperandB: "8", Result: 15}},
	}

	tests := []struct {
		name     string
		old      *State
		new      *State
		wantDiff *StateDiff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new:  evaluated,
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				Display:   ptr("15"),
				Phase:     ptr(PhasePartialBinary),
				History:   &HistoryDelta{Appended: []string{"7 + 8 = 15"}},
			},
		},
		{
			name:     "No Changes",
			old:      ready,
			new:      ready.Snapshot(),
			wantDiff: nil,
		},
		{
			name: "Evaluation",
			old:  ready,
			new:  evaluated,
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				Display:   ptr("15"),
				Phase:     ptr(PhasePartialBinary),
				History:   &HistoryDelta{Appended: []string{"7 + 8 = 15"}},
			},
		},
		{
			name: "Error Cleared",
			old:  &State{SessionID: "sess-1", Sequence: []Token{Operand("1")}, LastError: KindDivisionByZero},
			new:  &State{SessionID: "sess-1", Sequence: []Token{Operand("1")}},
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				Error:     ptr(KindNone),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			assert.Equal(t, tt.wantDiff, got)
		})
	}
}

func TestDiff_JSON(t *testing.T) {
	old := NewState("sess-1")
	next := old.Snapshot()
	next.Sequence = append(next.Sequence, Operand("4"))

	diff := Diff(old, next)
	require.NotNil(t, diff)

	data, err := json.Marshal(diff)
	require.NoError(t, err)

	s := string(data)
	assert.True(t, strings.Contains(s, `"display":"4"`), s)
	assert.False(t, strings.Contains(s, `"history"`), "unchanged history must be omitted: %s", s)
	assert.False(t, strings.Contains(s, `"error"`), "unchanged error must be omitted: %s", s)
}
