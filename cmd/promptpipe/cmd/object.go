package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/promptpipe/promptpipe/internal/core"
)

var (
	objectSchemaFile string
	objectModel      string
	objectSystem     string
	objectTimeout    time.Duration
)

var objectCmd = &cobra.Command{
	Use:   "object --schema <file> [prompt]",
	Short: "Generate a JSON object conforming to a schema",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runObject,
}

func init() {
	objectCmd.Flags().StringVar(&objectSchemaFile, "schema", "", "JSON schema file (required)")
	objectCmd.Flags().StringVar(&objectModel, "model", "", "model identifier or alias")
	objectCmd.Flags().StringVar(&objectSystem, "system", "", "system prompt preamble")
	objectCmd.Flags().DurationVar(&objectTimeout, "timeout", 0, "per-invocation timeout (default from config)")
	_ = objectCmd.MarkFlagRequired("schema")
	rootCmd.AddCommand(objectCmd)
}

func runObject(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	provider := buildProvider(cfg, logger, objectTimeout)

	schema, err := os.ReadFile(objectSchemaFile)
	if err != nil {
		return fmt.Errorf("reading schema file: %w", err)
	}

	prompt, err := resolvePrompt(cmd, args)
	if err != nil {
		return err
	}

	result, err := provider.GenerateObject(cmd.Context(), core.Request{
		Messages: buildMessages(objectSystem, prompt),
		Model:    objectModel,
		Schema:   string(schema),
	})
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(result.Object, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return nil
}
