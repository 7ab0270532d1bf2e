package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/learninghub/internal/api"
	"github.com/abhisek/learninghub/internal/store"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke and forget the saved session",
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

		repo := st.SessionRepo()
		rec, err := repo.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		if rec == nil {
			fmt.Println("No saved session.")
			return nil
		}
		// Best effort: an unreachable backend must not keep the session.
		client := api.NewClient(cfg.API.BaseURL, api.WithTimeout(cfg.RequestTimeout()))
		if err := api.NewAuthClient(client).Logout(cmd.Context(), rec.Token); err != nil {
			fmt.Printf("Could not revoke the token on %s: %v\n", cfg.API.BaseURL, err)
		}
		if err := repo.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		fmt.Printf("Signed out %s.\n", rec.Email)
		return nil
	},
}
