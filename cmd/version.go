package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/learninghub/internal/api"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version and the backend's API version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("learninghub", version)

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()

		content := api.NewContentClient(api.NewClient(cfg.API.BaseURL))
		v, err := content.CheckVersion(ctx)
		switch {
		case v == "" && err != nil:
			fmt.Printf("backend %s unreachable: %s\n", cfg.API.BaseURL, api.Message(err))
		case err != nil:
			fmt.Printf("backend %s %s (incompatible: %v)\n", cfg.API.BaseURL, v, err)
		default:
			fmt.Printf("backend %s %s\n", cfg.API.BaseURL, v)
		}
		return nil
	},
}
