package cmd

import (
	"github.com/MinterTeam/incentives-engine/genesis"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"
)

var Export = &cobra.Command{
	Use:   "export [path]",
	Short: "Export the committed state as a genesis file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(log.NewNopLogger(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.engine.Audit(); err != nil {
			return err
		}

		appState, err := a.engine.Export()
		if err != nil {
			return err
		}

		return genesis.Save(args[0], appState)
	},
}
