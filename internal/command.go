package internal

import (
	"strings"
	"unicode/utf8"
)

// MaxInputLength is the longest accepted line, in characters
const MaxInputLength = 1000

const (
	exitCommand      = "exit"
	renameUserPrefix = "my name is "
	renameBotPrefix  = "Your name is now "
	timeQueryTrigger = "time in Italy"
)

// CommandKind identifies what a line of input asks for
type CommandKind int

const (
	CommandChat CommandKind = iota
	CommandExit
	CommandRenameUser
	CommandRenameBot
	CommandTimeQuery
)

func (k CommandKind) String() string {
	switch k {
	case CommandChat:
		return "chat"
	case CommandExit:
		return "exit"
	case CommandRenameUser:
		return "rename-user"
	case CommandRenameBot:
		return "rename-bot"
	case CommandTimeQuery:
		return "time-query"
	default:
		return "unknown"
	}
}

// Command is a classified line. Arg carries the new name for rename commands.
type Command struct {
	Kind  CommandKind
	Input string
	Arg   string
}

// IsExit reports whether line is the standalone exit sentinel
func IsExit(line string) bool {
	return line == exitCommand
}

// ValidateInput rejects empty lines and lines over MaxInputLength characters
func ValidateInput(line string) error {
	if line == "" {
		return ErrEmptyInput
	}
	if utf8.RuneCountInString(line) > MaxInputLength {
		return ErrInputTooLong
	}
	return nil
}

// Classify maps a validated line to a command. Prefix commands are checked
// before the time trigger, so "my name is time in Italy" is a rename.
func Classify(line string) Command {
	switch {
	case IsExit(line):
		return Command{Kind: CommandExit, Input: line}
	case strings.HasPrefix(line, renameUserPrefix):
		return Command{Kind: CommandRenameUser, Input: line, Arg: strings.TrimPrefix(line, renameUserPrefix)}
	case strings.HasPrefix(line, renameBotPrefix):
		return Command{Kind: CommandRenameBot, Input: line, Arg: strings.TrimPrefix(line, renameBotPrefix)}
	case strings.Contains(line, timeQueryTrigger):
		return Command{Kind: CommandTimeQuery, Input: line}
	default:
		return Command{Kind: CommandChat, Input: line}
	}
}
