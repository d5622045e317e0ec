package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adorton/fileprompt/agent"
)

var (
	singlePrompt string
	singleStream bool
)

var singleCmd = &cobra.Command{
	Use:   "single FILE",
	Short: "Process one file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSingle,
}

func init() {
	singleCmd.Flags().StringVarP(&singlePrompt, "prompt", "p", "", "extra instruction sent with the file")
	singleCmd.Flags().BoolVarP(&singleStream, "stream", "s", false, "stream the response as it is generated")
	rootCmd.AddCommand(singleCmd)
}

func runSingle(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig("")
	if err != nil {
		return err
	}

	a, err := agent.New(cfg, log)
	if err != nil {
		return err
	}

	path := args[0]
	var result agent.ProcessResult
	if singleStream {
		result = a.StreamSingleFile(cmd.Context(), path, singlePrompt, func(chunk string) {
			fmt.Print(chunk)
		})
		fmt.Println()
	} else {
		result = a.ProcessSingleFile(cmd.Context(), path, singlePrompt)
		if result.Success {
			fmt.Println(result.Response.Content)
		}
	}

	if !result.Success {
		return fmt.Errorf("processing %s: %s", path, result.Error)
	}

	fmt.Printf("\n(%s/%s, %d tokens, %.2fs)\n",
		result.Response.Provider, result.Response.Model,
		result.Response.Usage.Total(), result.Elapsed)
	return nil
}
