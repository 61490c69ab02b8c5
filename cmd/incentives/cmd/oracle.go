package cmd

import (
	"fmt"
	"time"

	"github.com/MinterTeam/incentives-engine/core/oracle"
	"github.com/spf13/cobra"
)

var Oracle = &cobra.Command{
	Use:   "oracle",
	Short: "Native coin price",
}

func init() {
	Oracle.AddCommand(&cobra.Command{
		Use:   "set-price [rate]",
		Short: "Write the price file with reference units per native coin, scaled by 1e18",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.PriceFile()
			if path == "" {
				return fmt.Errorf("price_file is not configured")
			}
			rate, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			if rate.Sign() == 0 {
				return fmt.Errorf("rate must be positive")
			}

			return oracle.WritePriceFile(path, rate, time.Now())
		},
	})
}
