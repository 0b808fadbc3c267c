// Package prompt asks line-oriented questions on a terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNoInput is returned when input ends before an answer is given.
var ErrNoInput = errors.New("no input")

// Prompter reads answers from in and writes questions to out.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Confirm asks a yes/no question, defaulting to no. Invalid answers repeat
// the question. Input ending before an answer counts as no.
func (p *Prompter) Confirm(question string) (bool, error) {
	for {
		line, err := p.ask(question + " [y/N]: ")
		if errors.Is(err, ErrNoInput) {
			return false, nil
		}
		if err != nil {
			return false, err
		}

		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Error: invalid input")
	}
}

// String asks for free text. An empty answer yields def.
func (p *Prompter) String(label, def string) (string, error) {
	q := label + ": "
	if def != "" {
		q = fmt.Sprintf("%s [%s]: ", label, def)
	}

	line, err := p.ask(q)
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// Int asks until an integer is entered.
func (p *Prompter) Int(label string) (int, error) {
	for {
		line, err := p.ask(label + ": ")
		if err != nil {
			return 0, err
		}

		n, convErr := strconv.Atoi(line)
		if convErr == nil {
			return n, nil
		}
		fmt.Fprintf(p.out, "Error: %q is not a valid integer.\n", line)
	}
}

func (p *Prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)

	line, err := p.in.ReadString('\n')
	switch {
	case errors.Is(err, io.EOF) && line == "":
		fmt.Fprintln(p.out)
		return "", ErrNoInput
	case err != nil && !errors.Is(err, io.EOF):
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
