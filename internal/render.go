package internal

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	userLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	botLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Bold(true)

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

const transcriptFooter = "-----------------------------"

// Renderer writes every user-visible line of the session. Styling is only
// applied when Styled is set, so captured output in tests stays plain.
type Renderer struct {
	w      io.Writer
	Styled bool
}

// NewRenderer creates a renderer, styled when w is a terminal and plain is false
func NewRenderer(w io.Writer, plain bool) *Renderer {
	return &Renderer{w: w, Styled: !plain && isTerminal(w)}
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.Styled {
		return text
	}
	return s.Render(text)
}

func (r *Renderer) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(r.w, format, args...)
}

// Banner prints the session greeting
func (r *Renderer) Banner() {
	r.printf("%s\n", r.style(headerStyle, "Chatbot (type 'exit' to quit):"))
}

// Prompt prints the input prompt without a newline
func (r *Renderer) Prompt(userName string) {
	r.printf("%s: ", r.style(userLabelStyle, userName))
}

// InputError prints a validation failure
func (r *Renderer) InputError(err error) {
	switch err {
	case ErrEmptyInput:
		r.printf("%s\n", r.style(noticeStyle, "Error: input cannot be empty. Please try again."))
	case ErrInputTooLong:
		r.printf("%s\n", r.style(noticeStyle, fmt.Sprintf("Error: input too long (max %d chars).", MaxInputLength)))
	default:
		r.printf("%s\n", r.style(noticeStyle, "Error: "+err.Error()))
	}
}

// Reply prints a line spoken by the bot
func (r *Renderer) Reply(botName, text string) {
	r.printf("%s: %s\n", r.style(botLabelStyle, botName), text)
}

// Stats prints the latency of the last turn and the running average
func (r *Renderer) Stats(last, avg time.Duration) {
	line := fmt.Sprintf("[Response time: %.2f ms | Avg: %.2f ms]", Milliseconds(last), Milliseconds(avg))
	r.printf("%s\n", r.style(statsStyle, line))
}

// Transcript re-renders every turn, labelled with the current names
func (r *Renderer) Transcript(count int, userName, botName string, turns []Turn) {
	r.printf("\n%s\n", r.style(headerStyle, fmt.Sprintf("--- Conversation (#%d) ---", count)))
	indent := strings.Repeat(" ", 5)
	for i, t := range turns {
		r.printf("[%d] %s: %s\n", i+1, r.style(userLabelStyle, userName), t.Input)
		r.printf("%s%s: %s\n", indent, r.style(botLabelStyle, botName), t.Reply)
	}
	r.printf("%s\n", transcriptFooter)
}

// Goodbye prints the farewell line
func (r *Renderer) Goodbye() {
	r.printf("Goodbye!\n")
}
