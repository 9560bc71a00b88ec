package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/muesli/termenv"
)

// TextHandler implements the line-based REPL interface.
type TextHandler struct {
	Reader       *bufio.Reader
	Writer       io.Writer
	Renderer     ContentRenderer
	MaxInputSize int

	out       *termenv.Output
	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the markdown renderer used for history.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerMaxInputSize overrides the sanitizer size limit.
func WithTextHandlerMaxInputSize(n int) TextHandlerOption {
	return func(h *TextHandler) {
		h.MaxInputSize = n
	}
}

// WithTextHandlerOutput sets the styled output (color profile) for messages.
func WithTextHandlerOutput(out *termenv.Output) TextHandlerOption {
	return func(h *TextHandler) {
		h.out = out
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.out == nil {
		h.out = termenv.NewOutput(w)
	}
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump reads lines in the background so Input can honor context cancellation.
func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err == io.EOF {
				close(h.inputChan)
				return
			}
			h.inputChan <- inputResult{err: err}
			// Backoff for non-fatal errors to prevent CPU spikes on persistent failure
			time.Sleep(50 * time.Millisecond)
		}
	}
}

// Input prompts, reads one line, sanitizes it and parses the keys.
func (h *TextHandler) Input(ctx context.Context) (Request, error) {
	h.initPump()

	select {
	case <-ctx.Done():
		return Request{}, ctx.Err()
	default:
		fmt.Fprint(h.Writer, "> ")
	}

	select {
	case <-ctx.Done():
		return Request{}, ctx.Err()
	case res, ok := <-h.inputChan:
		if !ok {
			return Request{}, io.EOF
		}
		if res.err != nil {
			return Request{}, res.err
		}
		clean, err := SanitizeInputLimit(strings.TrimSpace(res.text), h.MaxInputSize)
		if err != nil {
			return Request{}, err
		}
		return ParseLine(clean)
	}
}

// Output prints the display, then the error or rejection if any.
func (h *TextHandler) Output(ctx context.Context, view domain.View) error {
	fmt.Fprintf(h.Writer, "[ %s ]\n", view.Display)
	if view.Error != domain.KindNone {
		msg := h.out.String("! " + view.Message).Foreground(h.out.Color("#f87171")).Bold()
		fmt.Fprintln(h.Writer, msg.String())
	}
	if view.Rejected != "" {
		fmt.Fprintln(h.Writer, h.out.String("ignored: "+view.Rejected).Faint().String())
	}
	return nil
}

// History prints the history as a rendered markdown table, or as numbered
// lines when no renderer is configured.
func (h *TextHandler) History(ctx context.Context, view domain.View) error {
	if len(view.History) == 0 {
		fmt.Fprintln(h.Writer, "(no history)")
		return nil
	}
	if h.Renderer != nil {
		if rendered, err := h.Renderer(HistoryMarkdown(view.History)); err == nil {
			fmt.Fprintln(h.Writer, strings.TrimRight(rendered, "\n"))
			return nil
		}
	}
	for i, line := range view.History {
		fmt.Fprintf(h.Writer, "%3d. %s\n", i+1, line)
	}
	return nil
}

// SystemOutput prints a meta-message.
func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	fmt.Fprintln(h.Writer, h.out.String(msg).Faint().String())
	return nil
}
