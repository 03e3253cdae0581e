package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/chatloop/internal"
)

// MarkdownExporter exports transcripts in Markdown format
type MarkdownExporter struct{}

// Export writes a readable conversation log
func (e *MarkdownExporter) Export(snap *internal.Snapshot, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Conversation %s\n\n", snap.ID)

	if snap.StartedAt != "" {
		_, _ = fmt.Fprintf(w, "**Started:** %s  \n", snap.StartedAt)
	}
	_, _ = fmt.Fprintf(w, "**Participants:** %s, %s  \n", snap.UserName, snap.BotName)
	_, _ = fmt.Fprintf(w, "**Turns:** %d  \n", len(snap.Turns))
	_, _ = fmt.Fprintf(w, "**Average response time:** %.2f ms over %d chat turns\n\n", snap.Stats.AverageLatencyMs, snap.Stats.ChatTurns)

	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, turn := range snap.Turns {
		_, _ = fmt.Fprintf(w, "**%s:**\n\n%s\n\n", snap.UserName, escapeMarkdown(turn.Input))
		_, _ = fmt.Fprintf(w, "**%s:**\n\n%s\n\n", snap.BotName, escapeMarkdown(turn.Reply))

		if i < len(snap.Turns)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// escapeMarkdown escapes emphasis markers outside fenced code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
