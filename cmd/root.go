package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/iksnae/chatloop/internal"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	configPath  string
	apiKey      string
	model       string
	endpoint    string
	timeURL     string
	maxRetries  int
	retryDelay  time.Duration
	timeout     time.Duration
	exportPath  string
	exportFmt   string
	archivePath string
	plain       bool
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// rootCmd starts an interactive chat session when called without subcommands
var rootCmd = &cobra.Command{
	Use:   "chatloop",
	Short: "Interactive terminal chat with an OpenAI-compatible completion API",
	Long: `chatloop is a line-oriented chat client for the terminal.

Each line you type is sent to a chat completion endpoint. Transient network
failures are retried with a fixed delay, response times are reported after
every turn, and the whole conversation is re-printed as it grows.

Special input:
  exit                      End the session
  my name is <name>         Change your display name
  Your name is now <name>   Change the assistant's display name
  ...time in Italy...       Ask for the current time in Rome

The API key is read from --api-key, then $OPENAI_API_KEY, then an
interactive prompt.

Quick Start:
  chatloop                              # Start chatting
  chatloop --export chat.md             # Save the transcript on exit
  chatloop --archive turns.db           # Append every turn to SQLite
  chatloop healthcheck                  # Check configuration and endpoints`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
	RunE: runChat,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	pf.StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	pf.StringVar(&apiKey, "api-key", "", "API key (defaults to $OPENAI_API_KEY, then a prompt)")
	pf.StringVar(&model, "model", internal.DefaultModel, "Chat model identifier")
	pf.StringVar(&endpoint, "endpoint", internal.DefaultChatEndpoint, "Chat completion endpoint")
	pf.StringVar(&timeURL, "time-endpoint", internal.DefaultTimeEndpoint, "Time lookup endpoint")
	pf.IntVar(&maxRetries, "retries", internal.DefaultMaxRetries, "Retries after a failed transport attempt")
	pf.DurationVar(&retryDelay, "retry-delay", internal.DefaultRetryDelay, "Fixed delay between attempts")
	pf.DurationVar(&timeout, "timeout", internal.DefaultTimeout, "Timeout of a single HTTP request")

	rootCmd.Flags().StringVarP(&exportPath, "export", "o", "", "Write the transcript to this file on exit")
	rootCmd.Flags().StringVarP(&exportFmt, "format", "f", "", "Export format: jsonl, md, yaml, json (default: from file extension)")
	rootCmd.Flags().StringVar(&archivePath, "archive", "", "Append every turn to this SQLite database")
	rootCmd.Flags().BoolVar(&plain, "plain", false, "Disable colors and spinners")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig reads the config file and applies explicitly set flags over it
func loadConfig(cmd *cobra.Command) (internal.Config, error) {
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("api-key") {
		cfg.Chat.APIKey = apiKey
	}
	if flags.Changed("model") {
		cfg.Chat.Model = model
	}
	if flags.Changed("endpoint") {
		cfg.Chat.Endpoint = endpoint
	}
	if flags.Changed("time-endpoint") {
		cfg.Time.Endpoint = timeURL
	}
	if flags.Changed("retries") {
		cfg.Retry.MaxRetries = maxRetries
	}
	if flags.Changed("retry-delay") {
		cfg.Retry.Delay = retryDelay
	}
	if flags.Changed("timeout") {
		cfg.Chat.Timeout = timeout
		cfg.Time.Timeout = timeout
	}
	if flags.Changed("export") {
		cfg.Output.Export = exportPath
	}
	if flags.Changed("format") {
		cfg.Output.Format = exportFmt
	}
	if flags.Changed("archive") {
		cfg.Output.Archive = archivePath
	}
	if flags.Changed("plain") {
		cfg.Output.Plain = plain
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	if !verbose && cfg.LogLevel != "" {
		level, _ := internal.ParseLogLevel(cfg.LogLevel)
		internal.SetLogLevel(level)
	}
	cfg.ResolveAPIKey()
	return cfg, nil
}
