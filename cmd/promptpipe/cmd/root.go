package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/promptpipe/promptpipe/internal/adapters/cli"
	"github.com/promptpipe/promptpipe/internal/config"
	"github.com/promptpipe/promptpipe/internal/diagnostics"
	"github.com/promptpipe/promptpipe/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	quiet     bool

	// Version info - set via SetVersion()
	appVersion string
	appCommit  string
	appDate    string
)

var rootCmd = &cobra.Command{
	Use:   "promptpipe",
	Short: "Run prompts through a locally-installed AI CLI",
	Long: `promptpipe adapts a locally-installed AI command-line tool into a
scriptable completion interface. Prompts are delivered over stdin, the
tool's JSON output is validated and recovered from noisy text, and
failures are classified so they can be acted on.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initConfig()
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

func SetVersion(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: .promptpipe/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto",
		"log format (auto, text, json)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-essential output")

	// Bind flags to viper (errors are nil when flag exists)
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".promptpipe")
		viper.AddConfigPath("$HOME/.config/promptpipe")
	}

	viper.SetEnvPrefix("PROMPTPIPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env apply.
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	return nil
}

// loadConfig builds the validated configuration and a logger for it.
func loadConfig() (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Log.Level
	if quiet {
		level = "error"
	}
	logger := logging.New(logging.Config{
		Level:  level,
		Format: cfg.Log.Format,
	})

	return cfg, logger, nil
}

// buildProvider wires the provider from configuration.
func buildProvider(cfg *config.Config, logger *logging.Logger, timeout time.Duration) *cli.ClaudeProvider {
	providerTimeout := cfg.Provider.Timeout
	if timeout > 0 {
		providerTimeout = timeout
	}

	provider := cli.NewClaudeProvider(cli.ProviderConfig{
		Path:    cfg.Provider.Path,
		Model:   cfg.Provider.Model,
		Timeout: providerTimeout,
		WorkDir: cfg.Provider.WorkDir,
	}, logger)

	if cfg.Preflight.Enabled {
		provider.Launcher().WithPreflight(
			diagnostics.NewPreflight(true, cfg.Preflight.MinFreeMemoryMB))
	}

	return provider
}
