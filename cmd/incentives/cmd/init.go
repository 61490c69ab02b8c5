package cmd

import (
	"fmt"
	"time"

	"github.com/MinterTeam/incentives-engine/genesis"
	"github.com/spf13/cobra"
	tmos "github.com/tendermint/tendermint/libs/os"
)

var Init = &cobra.Command{
	Use:   "init",
	Short: "Write a default genesis file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.GenesisFile()
		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return err
		}
		if tmos.FileExists(path) && !force {
			return fmt.Errorf("%s already exists", path)
		}

		adminFlag, err := cmd.Flags().GetString("admin")
		if err != nil {
			return err
		}
		admin, err := parseAddress(adminFlag)
		if err != nil {
			return err
		}
		rootFlag, err := cmd.Flags().GetString("root")
		if err != nil {
			return err
		}
		root, err := parseAddress(rootFlag)
		if err != nil {
			return err
		}

		if err := genesis.Save(path, genesis.DefaultAppState(time.Now(), admin, root)); err != nil {
			return err
		}
		fmt.Println("genesis written to", path)

		return nil
	},
}

func init() {
	Init.Flags().String("admin", "@admin", "admin address")
	Init.Flags().String("root", "@root", "root account address")
	Init.Flags().Bool("force", false, "overwrite an existing genesis file")
}
