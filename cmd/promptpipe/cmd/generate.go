package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/promptpipe/promptpipe/internal/core"
)

var (
	generateModel   string
	generateSystem  string
	generateTimeout time.Duration
	generateFiles   []string
	generateUsage   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [prompt]",
	Short: "Generate text from a prompt",
	Long: `Generate text from a prompt. The prompt is read from the argument,
or from stdin when no argument is given. With --file, each file is a
separate prompt and all of them run concurrently.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateModel, "model", "", "model identifier or alias")
	generateCmd.Flags().StringVar(&generateSystem, "system", "", "system prompt preamble")
	generateCmd.Flags().DurationVar(&generateTimeout, "timeout", 0, "per-invocation timeout (default from config)")
	generateCmd.Flags().StringArrayVar(&generateFiles, "file", nil, "prompt file; repeatable for concurrent batch runs")
	generateCmd.Flags().BoolVar(&generateUsage, "usage", false, "print cost metadata to stderr")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	provider := buildProvider(cfg, logger, generateTimeout)

	if len(generateFiles) > 0 {
		return runGenerateBatch(cmd, provider)
	}

	prompt, err := resolvePrompt(cmd, args)
	if err != nil {
		return err
	}

	result, err := provider.GenerateText(cmd.Context(), core.Request{
		Messages: buildMessages(generateSystem, prompt),
		Model:    generateModel,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Text)
	printUsage(cmd, result.Usage, result.Duration)
	return nil
}

// runGenerateBatch runs one generation per prompt file, concurrently.
// Results are printed in file order once all invocations settle.
func runGenerateBatch(cmd *cobra.Command, provider core.Provider) error {
	outputs := make([]string, len(generateFiles))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(4)

	for i, file := range generateFiles {
		i, file := i, file
		g.Go(func() error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading prompt file %s: %w", file, err)
			}
			result, err := provider.GenerateText(ctx, core.Request{
				Messages: buildMessages(generateSystem, string(data)),
				Model:    generateModel,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			mu.Lock()
			outputs[i] = result.Text
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for i, file := range generateFiles {
		fmt.Fprintf(cmd.OutOrStdout(), "==> %s\n%s\n", file, outputs[i])
	}
	return nil
}

// resolvePrompt takes the prompt from the argument or, failing that, stdin.
func resolvePrompt(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading prompt from stdin: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("no prompt given (pass an argument or pipe to stdin)")
	}
	return prompt, nil
}

func buildMessages(system, prompt string) []core.Message {
	var messages []core.Message
	if system != "" {
		messages = append(messages, core.Message{Role: core.RoleSystem, Content: system})
	}
	return append(messages, core.Message{Role: core.RoleUser, Content: prompt})
}

func printUsage(cmd *cobra.Command, usage core.Usage, duration time.Duration) {
	if !generateUsage {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "cost: $%.4f, duration: %s\n", usage.CostUSD, duration.Round(time.Millisecond))
}
