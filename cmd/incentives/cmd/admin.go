package cmd

import (
	"fmt"
	"strconv"

	"github.com/MinterTeam/incentives-engine/core/transaction"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/spf13/cobra"
)

var Admin = &cobra.Command{
	Use:   "admin",
	Short: "Administrative operations, restricted to the admin set",
}

func init() {
	Admin.AddCommand(
		txCommand("pause", "Block user operations", cobra.NoArgs,
			func(cmd *cobra.Command, args []string, a *app) (transaction.Data, error) {
				return &transaction.SetPauseData{Paused: true}, nil
			}),
		txCommand("unpause", "Resume user operations", cobra.NoArgs,
			func(cmd *cobra.Command, args []string, a *app) (transaction.Data, error) {
				return &transaction.SetPauseData{Paused: false}, nil
			}),
		txCommand("reset-breaker", "Clear a triggered circuit breaker", cobra.NoArgs,
			func(cmd *cobra.Command, args []string, a *app) (transaction.Data, error) {
				return &transaction.ResetCircuitBreakerData{}, nil
			}),
		txCommand("threshold [amount]", "Set the circuit breaker threshold, 0 disables it", cobra.ExactArgs(1),
			func(cmd *cobra.Command, args []string, a *app) (transaction.Data, error) {
				threshold, err := parseAmount(args[0])
				if err != nil {
					return nil, err
				}
				return &transaction.SetCircuitBreakerThresholdData{Threshold: threshold}, nil
			}),
		txCommand("limits [daily] [global-daily]", "Set per-account and global daily withdrawal limits", cobra.ExactArgs(2),
			func(cmd *cobra.Command, args []string, a *app) (transaction.Data, error) {
				daily, err := parseAmount(args[0])
				if err != nil {
					return nil, err
				}
				global, err := parseAmount(args[1])
				if err != nil {
					return nil, err
				}
				return &transaction.SetWithdrawalLimitsData{Daily: daily, GlobalDaily: global}, nil
			}),
		txCommand("blacklist [address] [true|false]", "Block or unblock an account", cobra.ExactArgs(2),
			func(cmd *cobra.Command, args []string, a *app) (transaction.Data, error) {
				address, err := parseAddress(args[0])
				if err != nil {
					return nil, err
				}
				blacklisted, err := strconv.ParseBool(args[1])
				if err != nil {
					return nil, fmt.Errorf("%q is not a boolean", args[1])
				}
				return &transaction.SetBlacklistedData{Address: address, Blacklisted: blacklisted}, nil
			}),
		txCommand("recipient [address]", "Set the platform fee recipient", cobra.ExactArgs(1),
			func(cmd *cobra.Command, args []string, a *app) (transaction.Data, error) {
				address, err := parseAddress(args[0])
				if err != nil {
					return nil, err
				}
				return &transaction.SetPlatformRecipientData{Address: address}, nil
			}),
		txCommand("fund [pool] [amount]", "Top up a pool from the sender's ledger balance", cobra.ExactArgs(2),
			func(cmd *cobra.Command, args []string, a *app) (transaction.Data, error) {
				pool, err := types.ParsePoolType(args[0])
				if err != nil {
					return nil, err
				}
				amount, err := parseAmount(args[1])
				if err != nil {
					return nil, err
				}
				return &transaction.FundPoolData{Pool: pool, Amount: amount}, nil
			}),
	)
}
