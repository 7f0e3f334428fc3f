package agent

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirmer is the operator side of confirmation mode. Prompts are
// shown verbatim; answers come back trimmed.
type Confirmer interface {
	// Confirm asks a yes/no question and reports whether the operator
	// answered yes.
	Confirm(prompt string) (bool, error)
	// Line asks for one line of free text.
	Line(prompt string) (string, error)
}

// StdioConfirmer reads answers from an interactive terminal.
type StdioConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func NewStdioConfirmer() *StdioConfirmer {
	return &StdioConfirmer{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

func (c *StdioConfirmer) Confirm(prompt string) (bool, error) {
	answer, err := c.Line(prompt + " (y/n): ")
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "y"), nil
}

func (c *StdioConfirmer) Line(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
