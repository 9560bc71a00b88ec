package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/abacus/pkg/domain"
)

// ErrMalformedInput is returned for a JSON line that does not decode.
var ErrMalformedInput = errors.New("malformed input")

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
//
// Each input line is one event object ({"type":"digit","value":"7"}), an array
// of them, or a command ({"command":"history"}). Each output line is a View.
type JSONHandler struct {
	Reader       *bufio.Reader
	Writer       io.Writer
	Encoder      *json.Encoder
	MaxInputSize int
}

// jsonLine is an event with an optional command alongside.
type jsonLine struct {
	domain.Event
	Command Command `json:"command,omitempty"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

// Input reads the next non-blank line.
func (h *JSONHandler) Input(ctx context.Context) (Request, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Request{}, err
		}

		text, err := h.Reader.ReadString('\n')
		text = strings.TrimSpace(text)
		if text == "" {
			if err != nil {
				return Request{}, err
			}
			continue
		}

		clean, sErr := SanitizeInputLimit(text, h.MaxInputSize)
		if sErr != nil {
			return Request{}, sErr
		}
		return decodeLine(clean)
	}
}

func decodeLine(text string) (Request, error) {
	if strings.HasPrefix(text, "[") {
		var events []domain.Event
		if err := json.Unmarshal([]byte(text), &events); err != nil {
			return Request{}, fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}
		return Request{Events: events}, nil
	}

	var line jsonLine
	if err := json.Unmarshal([]byte(text), &line); err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	if line.Command != CommandNone {
		return Request{Command: line.Command}, nil
	}
	if line.Type == "" {
		return Request{}, fmt.Errorf("%w: missing type", ErrMalformedInput)
	}
	return Request{Events: []domain.Event{line.Event}}, nil
}

// Output emits the view as a single JSON line.
func (h *JSONHandler) Output(ctx context.Context, view domain.View) error {
	return h.Encoder.Encode(view)
}

// History emits the view; it already carries the full history.
func (h *JSONHandler) History(ctx context.Context, view domain.View) error {
	return h.Encoder.Encode(view)
}

// SystemOutput emits {"system": msg}.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(struct {
		System string `json:"system"`
	}{System: msg})
}
