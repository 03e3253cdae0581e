package internal

import "time"

// Turn is one recorded exchange. Values are never modified after append.
type Turn struct {
	Input string `json:"input" yaml:"input"`
	Reply string `json:"reply" yaml:"reply"`
}

// Transcript is the append-only, ordered history of a session
type Transcript struct {
	turns []Turn
}

// Append adds a turn at the end
func (t *Transcript) Append(turn Turn) {
	t.turns = append(t.turns, turn)
}

// Len returns the number of turns
func (t *Transcript) Len() int {
	return len(t.turns)
}

// Turns returns a copy of the recorded turns in insertion order
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// State is the mutable per-session state threaded through the loop
type State struct {
	UserName     string
	BotName      string
	TurnCount    int
	TotalLatency time.Duration
}

// NewState returns a state with the given display names
func NewState(userName, botName string) *State {
	if userName == "" {
		userName = DefaultUserName
	}
	if botName == "" {
		botName = DefaultBotName
	}
	return &State{UserName: userName, BotName: botName}
}

// RecordLatency counts a chat turn and adds its latency to the running total
func (s *State) RecordLatency(d time.Duration) {
	s.TurnCount++
	s.TotalLatency += d
}

// AverageLatency is the mean recorded latency, zero before the first chat turn
func (s *State) AverageLatency() time.Duration {
	if s.TurnCount == 0 {
		return 0
	}
	return s.TotalLatency / time.Duration(s.TurnCount)
}

// Stats summarizes latency statistics for export
type Stats struct {
	ChatTurns        int     `json:"chat_turns" yaml:"chat_turns"`
	TotalLatencyMs   float64 `json:"total_latency_ms" yaml:"total_latency_ms"`
	AverageLatencyMs float64 `json:"average_latency_ms" yaml:"average_latency_ms"`
}

// Snapshot is a point-in-time copy of a session, used by exporters
type Snapshot struct {
	ID        string `json:"id" yaml:"id"`
	UserName  string `json:"user_name" yaml:"user_name"`
	BotName   string `json:"bot_name" yaml:"bot_name"`
	StartedAt string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Turns     []Turn `json:"turns" yaml:"turns"`
	Stats     Stats  `json:"stats" yaml:"stats"`
}

// NewSnapshot copies state and transcript into an export-ready value
func NewSnapshot(id string, startedAt time.Time, s *State, t *Transcript) *Snapshot {
	snap := &Snapshot{
		ID:       id,
		UserName: s.UserName,
		BotName:  s.BotName,
		Turns:    t.Turns(),
		Stats: Stats{
			ChatTurns:        s.TurnCount,
			TotalLatencyMs:   Milliseconds(s.TotalLatency),
			AverageLatencyMs: Milliseconds(s.AverageLatency()),
		},
	}
	if !startedAt.IsZero() {
		snap.StartedAt = startedAt.Format(time.RFC3339)
	}
	return snap
}

// Milliseconds converts d to fractional milliseconds
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
