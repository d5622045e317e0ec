package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	// Intentionally skips credential validation so the command works
	// before an API key is set up.
	cfg, err := loadConfig("")
	if err != nil {
		return err
	}

	fmt.Println("LLM:")
	fmt.Printf("  provider:     %s\n", cfg.LLM.Provider)
	fmt.Printf("  model:        %s\n", cfg.LLM.Model)
	fmt.Printf("  api key:      %s\n", cfg.MaskedAPIKey())
	if cfg.LLM.BaseURL != "" {
		fmt.Printf("  base url:     %s\n", cfg.LLM.BaseURL)
	}
	fmt.Printf("  max tokens:   %d\n", cfg.LLM.MaxTokens)
	fmt.Printf("  temperature:  %.2f\n", cfg.LLM.Temperature)

	fmt.Println("Files:")
	fmt.Printf("  input dir:    %s\n", cfg.Files.InputDirectory)
	fmt.Printf("  extensions:   %s\n", strings.Join(cfg.Files.Extensions, ", "))
	fmt.Printf("  recursive:    %t\n", cfg.Files.Recursive)
	fmt.Printf("  max size:     %d bytes\n", cfg.Files.MaxFileSize)
	fmt.Printf("  encoding:     %s\n", cfg.Files.Encoding)

	if err := cfg.Validate(); err != nil {
		fmt.Printf("\nWarning: %v\n", err)
	}
	return nil
}
