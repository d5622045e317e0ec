package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adorton/fileprompt/reader"
)

var scanInputDir string

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List the files that would be processed",
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanInputDir, "input-dir", "d", "", "override the input directory")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(scanInputDir)
	if err != nil {
		return err
	}

	r, err := reader.New(cfg.Files, log)
	if err != nil {
		return err
	}

	summary, err := r.Summarize()
	if err != nil {
		return err
	}

	if jsonOut {
		printJSON(summary)
		return nil
	}

	if summary.TotalFiles == 0 {
		fmt.Printf("No matching files in %s\n", cfg.Files.InputDirectory)
		return nil
	}

	fmt.Printf("Found %d file(s) in %s (%d bytes total)\n",
		summary.TotalFiles, cfg.Files.InputDirectory, summary.TotalSize)
	for ext, count := range summary.Extensions {
		fmt.Printf("  %s: %d\n", ext, count)
	}
	fmt.Println()
	for _, entry := range summary.Files {
		fmt.Printf("  %s (%d bytes)\n", entry.Path, entry.Size)
	}
	return nil
}
