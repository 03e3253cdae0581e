package cmd

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/iksnae/chatloop/internal"
	"github.com/iksnae/chatloop/internal/export"
	"github.com/spf13/cobra"
)

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	stdin := cmd.InOrStdin()
	stdout := cmd.OutOrStdout()
	in := bufio.NewReader(stdin)

	key := cfg.Chat.APIKey
	if key == "" {
		fd := -1
		if f, ok := stdin.(*os.File); ok {
			fd = int(f.Fd())
		}
		key, err = internal.NewCredentialPrompt(in, stdout, fd).Read()
		if err != nil {
			return err
		}
	}
	if key == "" {
		internal.LogWarn("No API key provided; requests will be sent without a usable credential")
	}

	client := internal.NewCompletionClient(internal.NewHTTPTransport(cfg.Chat.Timeout), cfg.Chat.Endpoint, cfg.Chat.Model)
	client.MaxRetries = cfg.Retry.MaxRetries
	client.RetryDelay = cfg.Retry.Delay
	timeClient := internal.NewTimeClient(internal.NewHTTPTransport(cfg.Time.Timeout), cfg.Time.Endpoint)

	state := internal.NewState(cfg.Session.UserName, cfg.Session.BotName)
	loop := internal.NewLoop(in, internal.NewRenderer(stdout, cfg.Output.Plain), client, timeClient, key, state)
	if !cfg.Output.Plain {
		loop.Status = cmd.ErrOrStderr()
	}

	sessionID := uuid.NewString()
	startedAt := time.Now()
	internal.LogDebug("Starting session %s against %s (model %s)", sessionID, cfg.Chat.Endpoint, cfg.Chat.Model)

	if cfg.Output.Archive != "" {
		archive, err := internal.OpenArchive(cfg.Output.Archive, sessionID)
		if err != nil {
			return err
		}
		defer func() {
			if err := archive.Close(); err != nil {
				internal.LogWarn("Failed to close archive: %v", err)
			}
		}()
		loop.Recorder = archive
	}

	if err := loop.Run(cmd.Context()); err != nil {
		return err
	}

	if cfg.Output.Export != "" {
		snap := internal.NewSnapshot(sessionID, startedAt, loop.State, loop.Transcript)
		if err := export.WriteFile(snap, cfg.Output.Export, cfg.Output.Format); err != nil {
			return fmt.Errorf("failed to export transcript: %w", err)
		}
		internal.NewStatus(cmd.ErrOrStderr()).Success("Transcript written to %s", cfg.Output.Export)
	}
	return nil
}
