// Package cliutil provides the interactive prompting used by the
// operator entry points.
package cliutil

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrAborted is returned when the operator declines a confirmation.
// Entry points exit non-zero on it without printing a stack.
var ErrAborted = errors.New("aborted by operator")

// Prompt reads confirmations from an input stream and writes prompts
// and warnings to an output stream.
type Prompt struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompt creates a Prompt over stdin and stderr.
func NewPrompt() *Prompt {
	return NewPromptWith(os.Stdin, os.Stderr)
}

// NewPromptWith creates a Prompt over the given streams.
func NewPromptWith(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

// Confirm blocks for a yes/no answer. Anything other than an explicit
// yes returns ErrAborted.
func (p *Prompt) Confirm(prompt string) error {
	fmt.Fprintf(p.out, "%s [y/N] ", prompt)

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return ErrAborted
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	default:
		return ErrAborted
	}
}

// Warnf prints a non-fatal operator warning.
func (p *Prompt) Warnf(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}
