package internal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// WithSpinner runs fn while a spinner animates on w. The spinner only runs
// when w is a terminal; otherwise fn is simply called. fn always runs on the
// calling goroutine.
func WithSpinner(w io.Writer, message string, fn func()) {
	if !isTerminal(w) {
		fn()
		return
	}

	done := make(chan struct{})
	spinnerDone := make(chan struct{})
	go func() {
		defer close(spinnerDone)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-done:
				_, _ = fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", len(message)+2))
				return
			case <-ticker.C:
				char := spinnerChars[i%len(spinnerChars)]
				_, _ = fmt.Fprintf(w, "\r%s %s", progressStyle.Render(char), message)
				i++
			}
		}
	}()

	fn()
	close(done)
	<-spinnerDone
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	return isTerminal(w)
}

// Status writes check-list style lines, styled only when w is a terminal
type Status struct {
	w      io.Writer
	styled bool
}

// NewStatus creates a Status writing to w
func NewStatus(w io.Writer) *Status {
	return &Status{w: w, styled: isTerminal(w)}
}

func (s *Status) line(style lipgloss.Style, text string) {
	if s.styled {
		text = style.Render(text)
	}
	_, _ = fmt.Fprintln(s.w, text)
}

// Section prints an underlined heading
func (s *Status) Section(title string) {
	s.line(sectionStyle, title)
}

// Step announces a check that is about to run
func (s *Status) Step(format string, args ...interface{}) {
	s.line(infoStyle, fmt.Sprintf(format, args...))
}

// Success prints a passed check
func (s *Status) Success(format string, args ...interface{}) {
	s.line(successStyle, "✓ "+fmt.Sprintf(format, args...))
}

// Failure prints a failed check
func (s *Status) Failure(format string, args ...interface{}) {
	s.line(errorStyle, "✗ "+fmt.Sprintf(format, args...))
}

// Warning prints a degraded check
func (s *Status) Warning(format string, args ...interface{}) {
	s.line(warningStyle, "⚠ "+fmt.Sprintf(format, args...))
}

// Detail prints an indented diagnostic line
func (s *Status) Detail(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.w, "   "+format+"\n", args...)
}

// Blank prints an empty line
func (s *Status) Blank() {
	_, _ = fmt.Fprintln(s.w)
}
