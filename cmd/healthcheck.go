package cmd

import (
	"fmt"
	"net/http"

	"github.com/iksnae/chatloop/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check configuration, credentials and endpoint reachability",
	Long: `Check the health of chatloop by verifying:
  • Configuration file and flags are valid
  • An API key is available without prompting
  • The chat completion endpoint accepts connections
  • The time lookup endpoint returns a usable answer
  • The archive database (if configured) can be opened

No chat message is sent, so the check does not consume tokens.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		st := internal.NewStatus(out)

		st.Section("chatloop health check")
		st.Blank()

		// Step 1: configuration
		st.Step("Step 1: Loading configuration...")
		cfg, err := loadConfig(cmd)
		if err != nil {
			st.Failure("Invalid configuration: %v", err)
			return fmt.Errorf("health check failed: %w", err)
		}
		st.Success("Configuration valid")
		if healthcheckVerbose {
			st.Detail("Chat endpoint: %s", cfg.Chat.Endpoint)
			st.Detail("Model: %s", cfg.Chat.Model)
			st.Detail("Retries: %d every %s", cfg.Retry.MaxRetries, cfg.Retry.Delay)
			st.Detail("Time endpoint: %s", cfg.Time.Endpoint)
		}
		st.Blank()

		// Step 2: credential
		st.Step("Step 2: Looking for an API key...")
		if cfg.Chat.APIKey != "" {
			st.Success("API key available")
		} else {
			st.Warning("No API key in --api-key or $%s; chatloop will prompt for one", cfg.Chat.APIKeyEnv)
		}
		st.Blank()

		// Step 3: chat endpoint
		st.Step("Step 3: Contacting chat endpoint...")
		chatOK := probe(cmd, st, internal.NewHTTPTransport(cfg.Chat.Timeout), cfg.Chat.Endpoint)
		if chatOK {
			st.Success("Chat endpoint reachable")
		} else {
			st.Failure("Chat endpoint unreachable")
		}
		st.Blank()

		// Step 4: time lookup
		st.Step("Step 4: Fetching the time in Italy...")
		answer := internal.NewTimeClient(internal.NewHTTPTransport(cfg.Time.Timeout), cfg.Time.Endpoint).Fetch(cmd.Context())
		if answer.OK() {
			st.Success("Time lookup works: %s", answer.Value)
		} else {
			st.Warning("Time lookup degraded (%s): %s", answer.Outcome, answer.Value)
		}
		st.Blank()

		// Step 5: archive
		archiveOK := true
		if cfg.Output.Archive != "" {
			st.Step("Step 5: Opening archive...")
			archive, err := internal.OpenArchive(cfg.Output.Archive, "healthcheck")
			if err != nil {
				archiveOK = false
				st.Failure("Archive unusable: %v", err)
			} else {
				n, _ := archive.Count(cmd.Context())
				_ = archive.Close()
				st.Success("Archive writable")
				if healthcheckVerbose {
					st.Detail("%s (%d health check rows)", cfg.Output.Archive, n)
				}
			}
			st.Blank()
		}

		st.Section("Summary")
		st.Blank()
		if chatOK && archiveOK {
			st.Success("Health check passed!")
			return nil
		}
		st.Failure("Health check failed")
		return fmt.Errorf("health check failed: chat endpoint or archive unavailable")
	},
}

// probe checks that endpoint accepts connections. Any HTTP status counts as
// reachable, matching how the completion client treats responses.
func probe(cmd *cobra.Command, st *internal.Status, t internal.Transport, endpoint string) bool {
	body, err := t.Send(cmd.Context(), internal.Request{Method: http.MethodGet, URL: endpoint})
	if err != nil {
		internal.LogDebug("Probe of %s failed: %v", endpoint, err)
		if healthcheckVerbose {
			st.Detail("%v", err)
		}
		return false
	}
	if healthcheckVerbose {
		st.Detail("Received %d bytes", len(body))
	}
	return true
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckVerbose, "detail", "d", false, "Show detailed diagnostic information")
}
