package internal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

const apiKeyPrompt = "Enter your OpenAI API key: "

// CredentialPrompt asks the operator for the API key. When Fd refers to a
// terminal the key is read without echo; otherwise a line is read from In.
type CredentialPrompt struct {
	In  *bufio.Reader
	Out io.Writer
	Fd  int // -1 when stdin is not a file descriptor

	// ReadPassword and IsTerminal are replaced in tests
	ReadPassword func(fd int) ([]byte, error)
	IsTerminal   func(fd int) bool
}

// NewCredentialPrompt creates a prompt reading from in and, for masked entry, fd
func NewCredentialPrompt(in *bufio.Reader, out io.Writer, fd int) *CredentialPrompt {
	return &CredentialPrompt{
		In:           in,
		Out:          out,
		Fd:           fd,
		ReadPassword: term.ReadPassword,
		IsTerminal:   term.IsTerminal,
	}
}

// Read prompts for and returns the API key
func (p *CredentialPrompt) Read() (string, error) {
	_, _ = fmt.Fprint(p.Out, apiKeyPrompt)

	if p.Fd >= 0 && p.IsTerminal != nil && p.IsTerminal(p.Fd) {
		b, err := p.ReadPassword(p.Fd)
		_, _ = fmt.Fprintln(p.Out)
		if err != nil {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := ReadLine(p.In)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", errors.New("failed to read API key: unexpected end of input")
		}
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// ReadLine reads one line from r without its line terminator. A final line
// without a newline is returned normally; io.EOF is returned only when no
// data remains.
func ReadLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
