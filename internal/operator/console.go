// Package operator provides the human-interaction console used by the
// escalation capability. A console call blocks until the operator responds;
// cancellation is propagated through the context.
package operator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrAbandoned is returned when the operator ends the session without
// answering (EOF on the input stream).
var ErrAbandoned = errors.New("operator abandoned the session")

// Console is the interface between the escalation capability and a human
// operator. Implementations must be safe for strictly sequential use; no two
// Ask calls are ever outstanding at the same time.
type Console interface {
	// Say writes a message to the operator without waiting for a reply.
	Say(text string)
	// Ask writes a prompt and blocks until the operator answers or the
	// context is cancelled. The returned line has surrounding whitespace
	// trimmed.
	Ask(ctx context.Context, prompt string) (string, error)
}

// TerminalConsole is a Console backed by an input stream and an output
// stream, normally stdin and stdout.
type TerminalConsole struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewTerminalConsole creates a console reading from in and writing to out.
func NewTerminalConsole(in io.Reader, out io.Writer) *TerminalConsole {
	return &TerminalConsole{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Say writes a message to the operator.
func (c *TerminalConsole) Say(text string) {
	_, _ = fmt.Fprintln(c.out, text)
}

// Ask prompts the operator and waits for one line of input. The read itself
// happens on a separate goroutine so a cancelled context unblocks the caller
// even while the operator is idle.
func (c *TerminalConsole) Ask(ctx context.Context, prompt string) (string, error) {
	_, _ = fmt.Fprint(c.out, prompt)

	type readResult struct {
		line string
		err  error
	}
	ch := make(chan readResult, 1)
	go func() {
		line, err := c.reader.ReadString('\n')
		ch <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case result := <-ch:
		if result.err != nil {
			if errors.Is(result.err, io.EOF) {
				// A final line without a trailing newline still counts.
				if line := strings.TrimSpace(result.line); line != "" {
					return line, nil
				}
				return "", ErrAbandoned
			}
			return "", fmt.Errorf("failed to read operator input: %w", result.err)
		}
		return strings.TrimSpace(result.line), nil
	}
}

// ScriptedConsole is a Console that replays a fixed sequence of answers.
// It records everything said to it, which makes escalation flows testable
// without a terminal.
type ScriptedConsole struct {
	Answers    []string
	Transcript []string

	next int
}

// Say records the message in the transcript.
func (c *ScriptedConsole) Say(text string) {
	c.Transcript = append(c.Transcript, text)
}

// Ask records the prompt and returns the next scripted answer, or
// ErrAbandoned when the script is exhausted.
func (c *ScriptedConsole) Ask(_ context.Context, prompt string) (string, error) {
	c.Transcript = append(c.Transcript, prompt)
	if c.next >= len(c.Answers) {
		return "", ErrAbandoned
	}
	answer := c.Answers[c.next]
	c.next++
	return strings.TrimSpace(answer), nil
}
