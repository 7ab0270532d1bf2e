package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/learninghub/internal/a11y"
	"github.com/abhisek/learninghub/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Sign out and restore default accessibility settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
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

		ctx := cmd.Context()
		if err := st.SessionRepo().Clear(ctx); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		if err := a11y.Save(ctx, st.SettingsRepo(), a11y.Defaults()); err != nil {
			return err
		}
		fmt.Println("Session cleared and accessibility settings restored.")
		return nil
	},
}
