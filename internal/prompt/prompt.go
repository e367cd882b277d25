// Package prompt asks the operator questions on a terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
)

// maxAttempts bounds how often a malformed answer is asked again.
const maxAttempts = 3

var ErrNoAnswer = errors.New("prompt: no answer")

type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Confirm prints question with a (y/n) suffix and reads one line. Only an
// answer starting with y or Y confirms; an empty line or EOF declines.
func (p *Prompter) Confirm(question string) bool {
	fmt.Fprintf(p.out, "%s (y/n) ", question)
	line, err := p.readLine()
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return false
	}
	return strings.HasPrefix(line, "y") || strings.HasPrefix(line, "Y")
}

// Ask reads a free-form answer. An empty answer yields def.
func (p *Prompter) Ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	line, err := p.readLine()
	if err != nil && line == "" {
		if def != "" {
			return def, nil
		}
		return "", fmt.Errorf("%w for %q", ErrNoAnswer, label)
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// AskInt reads a positive integer, asking again on malformed input.
func (p *Prompter) AskInt(label string, def int) (int, error) {
	for i := 0; i < maxAttempts; i++ {
		answer, err := p.Ask(label, strconv.Itoa(def))
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n > 0 {
			return n, nil
		}
		fmt.Fprintf(p.out, "%q is not a positive number\n", answer)
	}
	return 0, fmt.Errorf("%w for %q after %d attempts", ErrNoAnswer, label, maxAttempts)
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	return strings.TrimSpace(line), err
}
