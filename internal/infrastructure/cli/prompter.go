package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/ports"
)

// Prompter implements ConfirmationPrompter using stdin/stdout.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter constructs a prompter referencing stdio.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Enabled indicates the prompter is interactive.
func (p *Prompter) Enabled() bool {
	return true
}

// Confirm shows the command with its warnings. Destructive commands need the
// word "yes" typed out; everything else accepts y.
func (p *Prompter) Confirm(candidate domain.CommandCandidate, warnings []string) (bool, error) {
	fmt.Fprintf(p.out, "\n%s risk command:\n  %s\n", strings.ToUpper(candidate.Risk.String()), candidate.CommandLine())
	for _, warning := range warnings {
		fmt.Fprintf(p.out, " - %s\n", warning)
	}

	if candidate.Risk == domain.RiskDestructive {
		return p.askExplicit()
	}
	return p.ask("[y/N]: ")
}

// ReadLine prints prompt and returns the next trimmed input line.
func (p *Prompter) ReadLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *Prompter) ask(prompt string) (bool, error) {
	line, err := p.ReadLine("Continue? " + prompt)
	if err != nil {
		return false, err
	}
	line = strings.ToLower(line)
	return line == "y" || line == "yes", nil
}

func (p *Prompter) askExplicit() (bool, error) {
	line, err := p.ReadLine("Type 'yes' to confirm (or anything else to cancel): ")
	if err != nil {
		return false, err
	}
	return line == "yes", nil
}

var _ ports.ConfirmationPrompter = (*Prompter)(nil)
