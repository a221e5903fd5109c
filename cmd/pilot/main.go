package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose      bool
	configPath   string
	providerFlag string
	simplePrompt bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pilot",
	Short: "pcpilot - natural language PC control",
	Long: `pcpilot turns natural language into PC automation.

It sends your request to an LLM backend (a local Ollama server by default,
with Gemini, Groq and OpenAI as fallbacks), parses the model's JSON reply
into an action, and executes it: opening applications, searching the web,
controlling volume, taking screenshots, and more.

Run without arguments to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

// runCmd executes a single command and exits
var runCmd = &cobra.Command{
	Use:   "run [command]",
	Short: "Execute a single natural language command",
	Long: `Processes one natural language command through the full pipeline:
the model turns it into an action, the action is validated and routed to
the matching controller, and the outcome is printed.

Example:
  pilot run "open firefox"
  pilot run "search google for weather in berlin"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOnce,
}

// chatCmd starts the interactive loop
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive command session",
	RunE:  runChat,
}

// statusCmd shows engine and provider status
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show AI engine and provider status",
	RunE:  showStatus,
}

// historyCmd lists recently executed commands
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently executed commands",
	RunE:  showHistory,
}

var historyLimit int

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.pcpilot/config.json)")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "preferred provider: ollama, gemini, groq, openai")
	rootCmd.PersistentFlags().BoolVar(&simplePrompt, "simple-prompt", false, "use the compact system prompt for small local models")

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of records to show")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
