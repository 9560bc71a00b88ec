package keypad

import (
	"fmt"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/gdamore/tcell/v2"
)

var keyRows = []string{
	" 7   8   9   / ",
	" 4   5   6   * ",
	" 1   2   3   - ",
	" 0   .   =   + ",
}

const keyLegend = "enter =  bksp del  esc c  q quit"

var (
	styleBase     = tcell.StyleDefault
	styleTitle    = tcell.StyleDefault.Bold(true)
	styleDisplay  = tcell.StyleDefault.Reverse(true).Bold(true)
	styleError    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleRejected = tcell.StyleDefault.Dim(true)
	styleKeys     = tcell.StyleDefault.Foreground(tcell.ColorTeal)
)

// Layout rows.
const (
	rowTitle   = 0
	rowDisplay = 2
	rowStatus  = 3
	rowKeys    = 5
	displayW   = 28
)

func (k *Keypad) draw() {
	k.screen.Clear()
	width, height := k.screen.Size()
	view := k.engine.View(k.state, nil)

	drawText(k.screen, 1, rowTitle, styleTitle, "abacus")
	drawText(k.screen, 8, rowTitle, styleRejected, view.SessionID)

	display := view.Display
	if display == "" {
		display = "0"
	}
	drawText(k.screen, 1, rowDisplay, styleDisplay, fmt.Sprintf("%*s ", displayW, display))

	switch {
	case view.Error != domain.KindNone:
		drawText(k.screen, 1, rowStatus, styleError, view.Message)
	case k.rejected != "":
		drawText(k.screen, 1, rowStatus, styleRejected, "ignored: "+k.rejected)
	}

	for i, row := range keyRows {
		drawText(k.screen, 1, rowKeys+i, styleKeys, row)
	}
	drawText(k.screen, 1, rowKeys+len(keyRows)+1, styleRejected, keyLegend)

	// History to the right of the keys when wide enough, else below them.
	x, y := displayW+4, rowKeys
	if width < x+20 {
		x, y = 1, rowKeys+len(keyRows)+3
	}
	drawHistory(k.screen, x, y, height-y, view.History)

	k.screen.Show()
}

// drawHistory prints the most recent entries that fit in rows lines.
func drawHistory(s tcell.Screen, x, y, rows int, history []string) {
	if rows < 2 {
		return
	}
	drawText(s, x, y, styleTitle, "history")
	visible := history
	if len(visible) > rows-1 {
		visible = visible[len(visible)-(rows-1):]
	}
	for i, line := range visible {
		drawText(s, x, y+1+i, styleBase, line)
	}
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
