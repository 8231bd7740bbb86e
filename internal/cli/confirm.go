package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompt asks yes/no questions on a terminal.
type Prompt struct {
	in  *bufio.Reader
	out io.Writer
	// AssumeYes answers every question with yes without reading input.
	AssumeYes bool
}

// NewPrompt creates a prompt reading answers from in and writing questions to out.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

// Confirm prints question and reports whether the answer was y or yes.
// Anything else, including end of input, is a no.
func (p *Prompt) Confirm(question string) bool {
	if p.AssumeYes {
		return true
	}
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
