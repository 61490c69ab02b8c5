package cmd

import (
	"fmt"

	"github.com/MinterTeam/incentives-engine/cmd/utils"
	"github.com/MinterTeam/incentives-engine/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfg *config.Config

var RootCmd = &cobra.Command{
	Use:           "incentives",
	Short:         "Incentive distribution engine",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		v.SetConfigFile(utils.GetConfigPath())
		cfg = config.GetConfig()

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}

		if err := v.Unmarshal(cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
		cfg.SetRoot(utils.GetHome())

		return cfg.ValidateBasic()
	},
}
