package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/learninghub/internal/backend"
	"github.com/abhisek/learninghub/internal/config"
	"github.com/abhisek/learninghub/internal/llm"
	"github.com/abhisek/learninghub/internal/logging"
	"github.com/abhisek/learninghub/internal/store"
)

var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Serve the local Learning Hub backend",
	Long:  "Serves the auth, catalog and AI endpoints over a seeded SQLite catalog. AI content comes from the configured LLM provider, or an offline tutor when none is set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if v, _ := cmd.Flags().GetString("addr"); v != "" {
			cfg.Backend.Addr = v
		}
		if v, _ := cmd.Flags().GetString("provider"); v != "" {
			cfg.Backend.Provider = v
		}

		logger, err := newLogger(cfg, false)
		if err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		defer logger.Sync()

		dbPath := cfg.Backend.Path
		if dbPath == "" {
			if dbPath, err = store.DefaultBackendDBPath(); err != nil {
				return fmt.Errorf("resolve backend DB path: %w", err)
			}
		} else if err := config.EnsureDir(dbPath); err != nil {
			return err
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := backend.Seed(ctx, st, bcrypt.DefaultCost); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}

		opts := backend.Options{Store: st, Logger: logging.Component(logger, "backend")}
		llmCfg := llm.ConfigFromEnv()
		if cfg.Backend.Provider != "" {
			llmCfg.Provider = cfg.Backend.Provider
		}
		llmCfg = llmCfg.WithModel(cfg.Backend.Model)
		if llmCfg.Provider != llm.ProviderOffline {
			provider, err := llm.NewProvider(ctx, llmCfg, st.EventRepo(), logging.Component(logger, "llm"))
			if err != nil {
				fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
				fmt.Fprintln(os.Stderr, "Falling back to the offline tutor.")
			} else {
				opts.Tutor = backend.NewLLMTutor(provider)
			}
		}

		ready := make(chan string, 1)
		go func() {
			if addr, ok := <-ready; ok {
				fmt.Printf("Learning Hub backend %s listening on http://%s\n", backend.Version, addr)
			}
		}()
		return backend.ListenAndServe(ctx, cfg.Backend.Addr, backend.New(opts), logger, ready)
	},
}

func init() {
	backendCmd.Flags().String("addr", "", "Listen address (default 127.0.0.1:8787)")
	backendCmd.Flags().String("provider", "", "LLM provider: anthropic, openai, gemini, openrouter or offline")
}
