// Package cli implements the fileprompt command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/adorton/fileprompt/config"
	"github.com/adorton/fileprompt/logger"
)

var (
	verbose bool
	logFile string
	jsonOut bool

	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fileprompt",
	Short: "Send text files to an LLM for analysis",
	Long: "Fileprompt discovers text files in an input directory and sends their\n" +
		"content to a configured LLM provider (OpenAI, Anthropic, Ollama, or any\n" +
		"OpenAI-compatible endpoint), either file by file or as a batch.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		log, err = logger.Init(logger.Options{
			File:    logFile,
			Pretty:  logFile == "",
			Verbose: verbose,
		})
		return err
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "logfile", "", "write logs to a file instead of stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output JSON")
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return err
	}
	return nil
}

// loadConfig reads configuration, applying the --input-dir override when a
// command sets one.
func loadConfig(inputDir string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if inputDir != "" {
		cfg.Files.InputDirectory = inputDir
	}
	return cfg, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
