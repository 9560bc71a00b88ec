package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/abacus/internal/config"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunREPL_Text(t *testing.T) {
	var out bytes.Buffer
	err := RunREPL(context.Background(), config.Default(), RunOptions{
		SessionID: "text",
		In:        strings.NewReader("7 + 8 =\nhistory\nquit\n"),
		Out:       &out,
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, ">>> Session 'text' active.")
	assert.Contains(t, text, "[ 15 ]")
	assert.Contains(t, text, "1. 7 + 8 = 15")
	// Not a terminal: no banner.
	assert.NotContains(t, text, "calculator engine")
}

func TestRunREPL_JSON(t *testing.T) {
	var out bytes.Buffer
	input := strings.Join([]string{
		`{"type":"digit","value":"6"}`,
		`[{"type":"operator","value":"*"},{"type":"digit","value":"7"},{"type":"equals"}]`,
	}, "\n") + "\n"

	err := RunREPL(context.Background(), config.Default(), RunOptions{
		SessionID: "json",
		JSON:      true,
		In:        strings.NewReader(input),
		Out:       &out,
	})
	require.NoError(t, err)

	var views []domain.View
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		var v domain.View
		require.NoError(t, json.Unmarshal(sc.Bytes(), &v))
		views = append(views, v)
	}
	require.Len(t, views, 2)
	assert.Equal(t, "6", views[0].Display)
	assert.Equal(t, "42", views[1].Display)
	assert.Equal(t, []string{"6 * 7 = 42"}, views[1].History)
}

func TestRunREPL_ConflictingModes(t *testing.T) {
	err := RunREPL(context.Background(), config.Default(), RunOptions{JSON: true, Keypad: true})
	assert.Error(t, err)
}
