package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/learninghub/internal/a11y"
	"github.com/abhisek/learninghub/internal/api"
	"github.com/abhisek/learninghub/internal/app"
	"github.com/abhisek/learninghub/internal/auth"
	"github.com/abhisek/learninghub/internal/logging"
	"github.com/abhisek/learninghub/internal/screen"
	"github.com/abhisek/learninghub/internal/store"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, true)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logger.Sync()

	t, err := newTranslator(cfg)
	if err != nil {
		return err
	}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	var session *auth.Store
	client := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.GenerationRequestTimeout()),
		api.WithLogger(logging.Component(logger, "api")),
		api.WithTokenSource(func() string { return session.Token() }),
	)
	session = auth.NewStore(api.NewAuthClient(client), st.SessionRepo(), logging.Component(logger, "auth"))
	if err := session.Init(ctx); err != nil {
		// A broken session record means signing in again, not a fatal error.
		logger.Warn("restore session", zap.Error(err))
	}

	content := api.NewContentClient(client)
	if v, err := content.CheckVersion(ctx); err != nil {
		logger.Warn("backend version check", zap.String("url", cfg.API.BaseURL), zap.Error(err))
	} else {
		logger.Info("backend", zap.String("url", cfg.API.BaseURL), zap.String("version", v))
	}

	settings, err := a11y.Load(ctx, st.SettingsRepo(), logger)
	if err != nil {
		logger.Warn("load accessibility settings", zap.Error(err))
	}
	a11y.Apply(settings)

	deps := &screen.Deps{
		Content:           content,
		Session:           session,
		Results:           st.ResultRepo(),
		Settings:          st.SettingsRepo(),
		T:                 t,
		Logger:            logging.Component(logger, "ui"),
		A11y:              &settings,
		Timeout:           cfg.RequestTimeout(),
		GenerationTimeout: cfg.GenerationRequestTimeout(),
		Context:           ctx,
	}
	return app.Run(ctx, deps)
}
