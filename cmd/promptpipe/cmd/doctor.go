package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/promptpipe/promptpipe/internal/diagnostics"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the provider CLI is installed and usable",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	provider := buildProvider(cfg, logger, 0)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "provider: %s\n", provider.Name())

	if version, err := provider.Version(cmd.Context()); err == nil {
		fmt.Fprintf(out, "version:  %s\n", version)
	} else {
		fmt.Fprintf(out, "version:  unavailable (%v)\n", err)
	}

	healthy := true
	if err := provider.Ping(cmd.Context()); err == nil {
		fmt.Fprintln(out, "status:   ok")
	} else {
		healthy = false
		fmt.Fprintf(out, "status:   unavailable\n  %v\n", err)
	}

	result := diagnostics.NewPreflight(true, cfg.Preflight.MinFreeMemoryMB).Run()
	if result.AvailableMB > 0 {
		fmt.Fprintf(out, "memory:   %d MB free (%.1f%% used)\n",
			result.AvailableMB, result.UsedPercent)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(out, "warning:  %s\n", w)
	}
	for _, e := range result.Errors {
		healthy = false
		fmt.Fprintf(out, "error:    %s\n", e)
	}

	fmt.Fprintln(out, "\nconfig:")
	encoded, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	fmt.Fprint(out, string(encoded))

	if !healthy {
		return fmt.Errorf("doctor found problems")
	}
	return nil
}
