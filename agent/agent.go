// Package agent orchestrates file processing: it discovers input files,
// sends their content to the configured model, and aggregates the results.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/adorton/fileprompt/client"
	"github.com/adorton/fileprompt/config"
	"github.com/adorton/fileprompt/llm"
	"github.com/adorton/fileprompt/reader"
)

const systemPrompt = "You are a helpful AI assistant that analyzes and responds to text content provided by the user."

const contentPreamble = "Please analyze the following text content:\n\n"

// ProcessResult is the outcome of processing one file. A failed file is
// reported in Error; processing errors never abort a batch.
type ProcessResult struct {
	FilePath string        `json:"file_path"`
	FileSize int64         `json:"file_size"`
	Success  bool          `json:"success"`
	Response *llm.Response `json:"llm_response,omitempty"`
	Error    string        `json:"error,omitempty"`
	Elapsed  float64       `json:"processing_time"`
}

// FileError pairs a failed file with its error message.
type FileError struct {
	FilePath string `json:"file_path"`
	Error    string `json:"error"`
}

// BatchSummary aggregates a batch run.
type BatchSummary struct {
	TotalFiles            int             `json:"total_files"`
	Successful            int             `json:"successful"`
	Failed                int             `json:"failed"`
	TotalProcessingTime   float64         `json:"total_processing_time"`
	AverageProcessingTime float64         `json:"average_processing_time"`
	TotalTokens           int64           `json:"total_tokens"`
	Results               []ProcessResult `json:"results"`
	Errors                []FileError     `json:"errors"`
}

// Agent ties together the reader and an LLM client.
type Agent struct {
	cfg    *config.Config
	reader *reader.Reader
	client llm.Client
	logger zerolog.Logger
}

// New creates an Agent from configuration. The configuration must be
// complete enough to reach the configured provider.
func New(cfg *config.Config, logger zerolog.Logger) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c, err := client.FromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	return NewWithClient(cfg, c, logger)
}

// NewWithClient creates an Agent with an explicit llm.Client.
func NewWithClient(cfg *config.Config, c llm.Client, logger zerolog.Logger) (*Agent, error) {
	r, err := reader.New(cfg.Files, logger)
	if err != nil {
		return nil, err
	}

	return &Agent{
		cfg:    cfg,
		reader: r,
		client: c,
		logger: logger.With().Str("component", "agent").Logger(),
	}, nil
}

// Files lists the files the agent would process.
func (a *Agent) Files() ([]reader.FileEntry, error) {
	return a.reader.Scan()
}

// FilesSummary summarizes the input directory without processing anything.
func (a *Agent) FilesSummary() (*reader.Summary, error) {
	return a.reader.Summarize()
}

// buildRequest assembles the chat request for one file's content. An
// optional user prompt becomes a second user message after the content.
func (a *Agent) buildRequest(content, userPrompt string) *llm.Request {
	messages := []llm.Message{
		llm.NewTextMessage(llm.RoleUser, contentPreamble+content),
	}
	if userPrompt != "" {
		messages = append(messages, llm.NewTextMessage(llm.RoleUser, userPrompt))
	}

	temp := a.cfg.LLM.Temperature
	return &llm.Request{
		Model:       a.cfg.LLM.Model,
		System:      systemPrompt,
		Messages:    messages,
		MaxTokens:   a.cfg.LLM.MaxTokens,
		Temperature: &temp,
	}
}

// ProcessSingleFile reads one file and gets a synchronous model response.
// Failures are captured in the result rather than returned.
func (a *Agent) ProcessSingleFile(ctx context.Context, path, userPrompt string) ProcessResult {
	start := time.Now()
	result := ProcessResult{FilePath: path}

	fc, err := a.reader.Read(path)
	if err != nil {
		a.logger.Warn().Err(err).Str("path", path).Msg("Failed to read file")
		result.Error = err.Error()
		result.Elapsed = time.Since(start).Seconds()
		return result
	}
	result.FileSize = fc.Size

	resp, err := a.client.Synchronous(ctx, a.buildRequest(fc.Content, userPrompt))
	result.Elapsed = time.Since(start).Seconds()
	if err != nil {
		a.logger.Warn().Err(err).Str("path", path).Msg("Model call failed")
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Response = resp
	return result
}

// StreamSingleFile is like ProcessSingleFile but streams the response,
// invoking onChunk for each piece of content as it arrives. The final
// result carries the fully assembled response.
func (a *Agent) StreamSingleFile(ctx context.Context, path, userPrompt string, onChunk func(string)) ProcessResult {
	start := time.Now()
	result := ProcessResult{FilePath: path}

	fc, err := a.reader.Read(path)
	if err != nil {
		a.logger.Warn().Err(err).Str("path", path).Msg("Failed to read file")
		result.Error = err.Error()
		result.Elapsed = time.Since(start).Seconds()
		return result
	}
	result.FileSize = fc.Size

	stream, err := a.client.Stream(ctx, a.buildRequest(fc.Content, userPrompt))
	if err != nil {
		result.Error = err.Error()
		result.Elapsed = time.Since(start).Seconds()
		return result
	}

	resp, err := llm.Collect(stream, onChunk)
	result.Elapsed = time.Since(start).Seconds()
	if err != nil {
		a.logger.Warn().Err(err).Str("path", path).Msg("Stream failed")
		result.Error = err.Error()
		return result
	}

	resp.Model = a.cfg.LLM.Model
	resp.Provider = a.cfg.LLM.Provider
	result.Success = true
	result.Response = resp
	return result
}

// ProcessAllFiles processes every discovered file sequentially, in scan
// order. Per-file failures are recorded in their results; only discovery
// failure aborts the batch.
func (a *Agent) ProcessAllFiles(ctx context.Context, userPrompt string) ([]ProcessResult, error) {
	entries, err := a.reader.Scan()
	if err != nil {
		return nil, err
	}

	a.logger.Info().Int("count", len(entries)).Msg("Processing files")

	results := make([]ProcessResult, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, a.ProcessSingleFile(ctx, entry.Path, userPrompt))
	}
	return results, nil
}

// Summarize aggregates batch results.
func Summarize(results []ProcessResult) *BatchSummary {
	failed := lo.Filter(results, func(r ProcessResult, _ int) bool { return !r.Success })

	summary := &BatchSummary{
		TotalFiles: len(results),
		Successful: len(results) - len(failed),
		Failed:     len(failed),
		TotalProcessingTime: lo.SumBy(results, func(r ProcessResult) float64 {
			return r.Elapsed
		}),
		TotalTokens: lo.SumBy(results, func(r ProcessResult) int64 {
			if r.Response == nil || r.Response.Usage == nil {
				return 0
			}
			return r.Response.Usage.Total()
		}),
		Results: results,
		Errors: lo.Map(failed, func(r ProcessResult, _ int) FileError {
			return FileError{FilePath: r.FilePath, Error: r.Error}
		}),
	}
	if summary.TotalFiles > 0 {
		summary.AverageProcessingTime = summary.TotalProcessingTime / float64(summary.TotalFiles)
	}
	return summary
}

// SaveResults writes a batch summary as indented JSON.
func SaveResults(summary *BatchSummary, path string) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing results to %s: %w", path, err)
	}
	return nil
}
