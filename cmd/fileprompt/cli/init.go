package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an input directory with example files and a config template",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

const envTemplate = `# Fileprompt configuration template
# Copy this to .env and fill in your values

# LLM configuration
LLM_PROVIDER=openai
LLM_API_KEY=your_api_key_here
LLM_MODEL=gpt-3.5-turbo
LLM_BASE_URL=
LLM_MAX_TOKENS=1000
LLM_TEMPERATURE=0.7

# File processing configuration
INPUT_DIRECTORY=./input
FILE_EXTENSIONS=.txt,.md
RECURSIVE=true
MAX_FILE_SIZE=1048576
FILE_ENCODING=utf-8
`

var exampleFiles = []struct {
	name    string
	content string
}{
	{
		name: "example.txt",
		content: "This is an example text file.\n\n" +
			"It contains multiple paragraphs and demonstrates how the agent can process local text files.",
	},
	{
		name: "notes.md",
		content: "# Example Notes\n\nThis is a markdown file with some notes.\n\n" +
			"- Bullet point 1\n- Bullet point 2\n\n## Conclusion\n\nThis demonstrates markdown processing.",
	},
}

func runInit(cmd *cobra.Command, args []string) error {
	inputDir := "./input"
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		return fmt.Errorf("creating input directory: %w", err)
	}

	for _, ex := range exampleFiles {
		path := filepath.Join(inputDir, ex.name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(ex.content), 0o644); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		fmt.Printf("Created example file: %s\n", path)
	}

	if _, err := os.Stat(".env.template"); os.IsNotExist(err) {
		if err := os.WriteFile(".env.template", []byte(envTemplate), 0o644); err != nil {
			return fmt.Errorf("creating .env.template: %w", err)
		}
		fmt.Println("Created configuration template: .env.template")
	}

	fmt.Println("\nProject initialized.")
	fmt.Println("Next steps:")
	fmt.Println("1. Copy .env.template to .env")
	fmt.Println("2. Add your API key to the .env file")
	fmt.Println("3. Run: fileprompt scan")
	fmt.Println("4. Run: fileprompt process")
	return nil
}
