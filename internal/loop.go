package internal

import (
	"bufio"
	"context"
	"errors"
	"io"
	"time"
)

// Completer sends one chat message and returns the raw completion body
type Completer interface {
	Complete(ctx context.Context, message, apiKey string) CompletionResult
}

// TimeFetcher returns the current time answer or a fallback text
type TimeFetcher interface {
	Fetch(ctx context.Context) Extraction
}

// TurnRecord describes an appended turn for a TurnRecorder
type TurnRecord struct {
	Seq      int
	Kind     CommandKind
	UserName string
	BotName  string
	Turn     Turn
	Latency  time.Duration
	Attempts int
	Outcome  ParseOutcome
	At       time.Time
}

// TurnRecorder observes every turn appended to the transcript
type TurnRecorder interface {
	Record(ctx context.Context, rec TurnRecord) error
}

// Loop drives the interactive read-evaluate-print cycle. All state lives in
// State and Transcript; nothing is global.
type Loop struct {
	In         *bufio.Reader
	Render     *Renderer
	Status     io.Writer // spinner target, usually stderr
	Completer  Completer
	Time       TimeFetcher
	Recorder   TurnRecorder
	APIKey     string
	State      *State
	Transcript *Transcript
	Now        func() time.Time
}

// NewLoop wires a loop with a fresh transcript
func NewLoop(in *bufio.Reader, render *Renderer, c Completer, tf TimeFetcher, apiKey string, state *State) *Loop {
	return &Loop{
		In:         in,
		Render:     render,
		Status:     io.Discard,
		Completer:  c,
		Time:       tf,
		APIKey:     apiKey,
		State:      state,
		Transcript: &Transcript{},
		Now:        time.Now,
	}
}

// Run processes input until "exit" or end of input
func (l *Loop) Run(ctx context.Context) error {
	l.Render.Banner()
	for {
		line, ok := l.readInput()
		if !ok || IsExit(line) {
			break
		}
		l.Handle(ctx, Classify(line))
	}
	l.Render.Goodbye()
	return nil
}

// readInput prompts until a valid line or the exit sentinel is entered.
// It returns false when input is exhausted or unreadable.
func (l *Loop) readInput() (string, bool) {
	for {
		l.Render.Prompt(l.State.UserName)
		line, err := ReadLine(l.In)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				LogWarn("Failed to read input: %v", err)
			}
			return "", false
		}
		if IsExit(line) {
			return line, true
		}
		if err := ValidateInput(line); err != nil {
			l.Render.InputError(err)
			continue
		}
		return line, true
	}
}

// Handle executes one classified command
func (l *Loop) Handle(ctx context.Context, cmd Command) {
	switch cmd.Kind {
	case CommandExit:
		return
	case CommandRenameUser:
		l.State.UserName = cmd.Arg
		l.Render.Reply(l.State.BotName, "Nice to meet you, "+l.State.UserName+"!")
	case CommandRenameBot:
		l.State.BotName = cmd.Arg
		l.Render.Reply(l.State.BotName, "Got it, I'll call myself "+l.State.BotName+".")
	case CommandTimeQuery:
		l.timeQuery(ctx, cmd)
	default:
		l.chatTurn(ctx, cmd)
	}
}

func (l *Loop) timeQuery(ctx context.Context, cmd Command) {
	var ex Extraction
	WithSpinner(l.Status, "Looking up the time...", func() {
		ex = l.Time.Fetch(ctx)
	})
	l.Render.Reply(l.State.BotName, "The current time in Italy is "+ex.Value)
	turn := Turn{Input: cmd.Input, Reply: ex.Value}
	l.Transcript.Append(turn)
	l.record(ctx, TurnRecord{Kind: cmd.Kind, Turn: turn, Outcome: ex.Outcome})
}

func (l *Loop) chatTurn(ctx context.Context, cmd Command) {
	var res CompletionResult
	WithSpinner(l.Status, "Waiting for reply...", func() {
		res = l.Completer.Complete(ctx, cmd.Input, l.APIKey)
	})

	l.State.RecordLatency(res.Elapsed)
	l.Render.Stats(res.Elapsed, l.State.AverageLatency())

	ex := ExtractReply(res.Body)
	if !ex.OK() {
		LogDebug("Reply fell back (%s) after %d attempt(s)", ex.Outcome, res.Attempts)
	}
	l.Render.Reply(l.State.BotName, ex.Value)

	turn := Turn{Input: cmd.Input, Reply: ex.Value}
	l.Transcript.Append(turn)
	l.record(ctx, TurnRecord{
		Kind:     cmd.Kind,
		Turn:     turn,
		Latency:  res.Elapsed,
		Attempts: res.Attempts,
		Outcome:  ex.Outcome,
	})

	l.Render.Transcript(l.State.TurnCount, l.State.UserName, l.State.BotName, l.Transcript.Turns())
}

func (l *Loop) record(ctx context.Context, rec TurnRecord) {
	if l.Recorder == nil {
		return
	}
	rec.Seq = l.Transcript.Len()
	rec.UserName = l.State.UserName
	rec.BotName = l.State.BotName
	if l.Now != nil {
		rec.At = l.Now()
	}
	if err := l.Recorder.Record(ctx, rec); err != nil {
		LogWarn("Failed to archive turn %d: %v", rec.Seq, err)
	}
}
