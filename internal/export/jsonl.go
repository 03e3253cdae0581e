package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/chatloop/internal"
)

// JSONLExporter exports transcripts in JSONL format (one turn per line)
type JSONLExporter struct{}

type jsonlTurn struct {
	Session string `json:"session"`
	Seq     int    `json:"seq"`
	User    string `json:"user"`
	Input   string `json:"input"`
	Bot     string `json:"bot"`
	Reply   string `json:"reply"`
}

// Export writes one JSON object per turn
func (e *JSONLExporter) Export(snap *internal.Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)

	for i, turn := range snap.Turns {
		line := jsonlTurn{
			Session: snap.ID,
			Seq:     i + 1,
			User:    snap.UserName,
			Input:   turn.Input,
			Bot:     snap.BotName,
			Reply:   turn.Reply,
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to encode turn %d: %w", i+1, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
