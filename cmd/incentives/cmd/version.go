package cmd

import (
	"fmt"

	"github.com/MinterTeam/incentives-engine/version"
	"github.com/spf13/cobra"
)

var Version = &cobra.Command{
	Use:   "version",
	Short: "Show the engine version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("%s (state v%d)\n", version.Version, version.StateVer)
		return nil
	},
}
