package cli

import (
	"fmt"

	"github.com/kiritoko1029/glmcode/internal/config"
	"github.com/kiritoko1029/glmcode/internal/platform"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Save --token and --base-url to the config file",
	Example: `  glm-usage init --token "$TOKEN" --base-url https://open.bigmodel.cn/api/anthropic`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.DefaultConfig()
		cfg.AuthToken = token
		cfg.BaseURL = baseURL

		target, err := platform.Resolve(cfg.Credentials())
		if err != nil {
			return err
		}

		path, err := config.Path(cfgFile)
		if err != nil {
			return err
		}
		if err := config.Save(cfg, path); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s configuration to %s\n", platform.DisplayName(target.Platform), path)
		return nil
	},
}
