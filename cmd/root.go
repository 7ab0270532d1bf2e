package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/learninghub/internal/config"
	"github.com/abhisek/learninghub/internal/i18n"
	"github.com/abhisek/learninghub/internal/logging"
	"github.com/abhisek/learninghub/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "learninghub",
	Short: "AI learning hub in the terminal",
	Long:  "Learning Hub: learning paths, lessons and AI assessments about artificial intelligence, in your terminal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(backendCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// addGlobalFlags defines the flags every subcommand inherits.
func addGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("db", "", "Path to SQLite database file (overrides LEARNINGHUB_DB env var)")
	flags.String("config", "", "Path to config file (default $XDG_CONFIG_HOME/learninghub/config.yaml)")
	flags.String("api-url", "", "Backend base URL (overrides LEARNINGHUB_API_URL env var)")
	flags.String("lang", "", "UI language: es or en")
	flags.String("log-file", "", "Log file (default $XDG_STATE_HOME/learninghub/hub.log)")
}

// loadConfig resolves configuration with flags applied over the file and
// environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag string
		dst  *string
	}{
		{"db", &cfg.Store.Path},
		{"api-url", &cfg.API.BaseURL},
		{"lang", &cfg.Language},
		{"log-file", &cfg.Logging.File},
	}
	for _, o := range overrides {
		if v, _ := cmd.Flags().GetString(o.flag); v != "" {
			*o.dst = v
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the configured client database path, falling back
// to the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.Store.Path != "" {
		return cfg.Store.Path, config.EnsureDir(cfg.Store.Path)
	}
	return store.DefaultDBPath()
}

// newLogger builds the logger. toFile forces a log file for the TUI, which
// owns the terminal.
func newLogger(cfg *config.Config, toFile bool) (*zap.Logger, error) {
	lc := cfg.Logging
	if toFile && lc.File == "" {
		p, err := config.StatePath("hub.log")
		if err != nil {
			return nil, err
		}
		lc.File = p
	}
	return logging.New(lc)
}

func newTranslator(cfg *config.Config) (*i18n.Translator, error) {
	t, err := i18n.New(cfg.Language)
	if err != nil {
		return nil, fmt.Errorf("language: %w", err)
	}
	return t, nil
}
