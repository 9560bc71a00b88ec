package runner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/abacus/pkg/domain"
)

// ErrUnknownKey is returned for a key that maps to no event or command.
var ErrUnknownKey = errors.New("unknown key")

// Command is a front-end instruction that is not an engine event.
type Command string

const (
	CommandNone    Command = ""
	CommandHistory Command = "history"
	CommandHelp    Command = "help"
	CommandQuit    Command = "quit"
)

// Request is one parsed line of input.
type Request struct {
	Events  []domain.Event
	Command Command
}

// ParseKey maps a single key to its event.
//
//	0-9       digit
//	.         decimal point
//	+ - * /   operator
//	=         equals
//	del       delete last token
//	c         clear
func ParseKey(key string) (domain.Event, error) {
	switch strings.ToLower(key) {
	case ".":
		return domain.DecimalPoint, nil
	case "=":
		return domain.Equals, nil
	case "del", "d":
		return domain.Delete, nil
	case "c", "clear":
		return domain.Clear, nil
	}
	if len(key) == 1 {
		ch := key[0]
		if ch >= '0' && ch <= '9' {
			return domain.Digit(rune(ch)), nil
		}
		if op, err := domain.ParseOperator(key); err == nil {
			return domain.Op(op), nil
		}
	}
	return domain.Event{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

// ParseLine splits a line into keys. Fields are separated by whitespace; a field
// such as "7+8=" is expanded into one key per character. A command word
// (history, help, quit, exit) must stand alone on its line.
func ParseLine(line string) (Request, error) {
	fields := strings.Fields(line)
	if len(fields) == 1 {
		switch strings.ToLower(fields[0]) {
		case "history", "h":
			return Request{Command: CommandHistory}, nil
		case "help", "?":
			return Request{Command: CommandHelp}, nil
		case "quit", "exit", "q":
			return Request{Command: CommandQuit}, nil
		}
	}

	var req Request
	for _, field := range fields {
		if ev, err := ParseKey(field); err == nil {
			req.Events = append(req.Events, ev)
			continue
		}
		for _, ch := range field {
			ev, err := ParseKey(string(ch))
			if err != nil {
				return Request{}, fmt.Errorf("%w: %q", ErrUnknownKey, field)
			}
			req.Events = append(req.Events, ev)
		}
	}
	return req, nil
}

// KeyHelp is the one-screen key reference printed by the text handler.
const KeyHelp = `keys: 0-9 . + - * / =   del (delete last)   c (clear)
commands: history   help   quit
several keys may share a line: "7 + 8 =" or "7+8="`
