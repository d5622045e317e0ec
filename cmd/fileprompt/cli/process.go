package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adorton/fileprompt/agent"
)

var (
	processInputDir string
	processPrompt   string
	processOutput   string
	processStream   bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process every matching file in the input directory",
	RunE:  runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processInputDir, "input-dir", "d", "", "override the input directory")
	processCmd.Flags().StringVarP(&processPrompt, "prompt", "p", "", "extra instruction sent with each file")
	processCmd.Flags().StringVarP(&processOutput, "output", "o", "", "write results to a JSON file")
	processCmd.Flags().BoolVarP(&processStream, "stream", "s", false, "stream responses as they are generated")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(processInputDir)
	if err != nil {
		return err
	}

	a, err := agent.New(cfg, log)
	if err != nil {
		return err
	}

	var results []agent.ProcessResult
	if processStream {
		results, err = streamAll(cmd, a)
	} else {
		results, err = a.ProcessAllFiles(cmd.Context(), processPrompt)
	}
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No files found to process.")
		return nil
	}

	summary := agent.Summarize(results)

	if processOutput != "" {
		if err := agent.SaveResults(summary, processOutput); err != nil {
			return err
		}
		fmt.Printf("Results saved to %s\n", processOutput)
	}

	if jsonOut {
		printJSON(summary)
		return nil
	}

	printSummary(summary)
	return nil
}

// streamAll processes files one at a time, echoing model output as it
// arrives.
func streamAll(cmd *cobra.Command, a *agent.Agent) ([]agent.ProcessResult, error) {
	entries, err := a.Files()
	if err != nil {
		return nil, err
	}

	results := make([]agent.ProcessResult, 0, len(entries))
	for _, entry := range entries {
		if err := cmd.Context().Err(); err != nil {
			return results, err
		}

		fmt.Printf("=== %s ===\n", entry.Path)
		result := a.StreamSingleFile(cmd.Context(), entry.Path, processPrompt, func(chunk string) {
			fmt.Print(chunk)
		})
		if result.Success {
			fmt.Println()
		} else {
			fmt.Printf("failed: %s\n", result.Error)
		}
		fmt.Println()
		results = append(results, result)
	}
	return results, nil
}

func printSummary(summary *agent.BatchSummary) {
	for _, result := range summary.Results {
		if !result.Success {
			continue
		}
		fmt.Printf("=== %s ===\n", result.FilePath)
		fmt.Println(result.Response.Content)
		fmt.Println()
	}

	fmt.Printf("Processed %d file(s): %d succeeded, %d failed\n",
		summary.TotalFiles, summary.Successful, summary.Failed)
	fmt.Printf("Total time: %.2fs (avg %.2fs/file), tokens used: %d\n",
		summary.TotalProcessingTime, summary.AverageProcessingTime, summary.TotalTokens)

	if len(summary.Errors) > 0 {
		fmt.Println("\nErrors:")
		for _, fe := range summary.Errors {
			fmt.Printf("  %s: %s\n", fe.FilePath, fe.Error)
		}
	}
}
