package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"
)

// Ledger manages the local ledger the engine collects payments from and
// pays withdrawals into.
var Ledger = &cobra.Command{
	Use:   "ledger",
	Short: "Local ledger balances and approvals",
}

func ledgerCommand(use string, short string, args cobra.PositionalArgs, run func(cmd *cobra.Command, a *app, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(log.NewNopLogger(), nil)
			if err != nil {
				return err
			}
			defer a.Close()

			return run(cmd, a, args)
		},
	}
}

func init() {
	Ledger.AddCommand(
		ledgerCommand("mint [coin] [owner] [amount]", "Credit an owner", cobra.ExactArgs(3),
			func(cmd *cobra.Command, a *app, args []string) error {
				coin, err := parseCoin(args[0])
				if err != nil {
					return err
				}
				owner, err := parseAddress(args[1])
				if err != nil {
					return err
				}
				amount, err := parseAmount(args[2])
				if err != nil {
					return err
				}
				return a.ledger.Mint(coin, owner, amount)
			}),
		ledgerCommand("approve [coin] [owner] [amount]", "Let the treasury collect up to amount from owner", cobra.ExactArgs(3),
			func(cmd *cobra.Command, a *app, args []string) error {
				coin, err := parseCoin(args[0])
				if err != nil {
					return err
				}
				owner, err := parseAddress(args[1])
				if err != nil {
					return err
				}
				amount, err := parseAmount(args[2])
				if err != nil {
					return err
				}
				return a.ledger.Approve(cmd.Context(), coin, owner, cfg.TreasuryAddress(), amount)
			}),
		ledgerCommand("balance [coin] [owner]", "Show a balance and the treasury allowance", cobra.ExactArgs(2),
			func(cmd *cobra.Command, a *app, args []string) error {
				coin, err := parseCoin(args[0])
				if err != nil {
					return err
				}
				owner, err := parseAddress(args[1])
				if err != nil {
					return err
				}
				balance, err := a.ledger.BalanceOf(cmd.Context(), coin, owner)
				if err != nil {
					return err
				}
				allowance, err := a.ledger.Allowance(cmd.Context(), coin, owner, cfg.TreasuryAddress())
				if err != nil {
					return err
				}
				return printJSON(map[string]string{
					"coin":      coin.String(),
					"owner":     owner.String(),
					"balance":   balance.String(),
					"allowance": allowance.String(),
				})
			}),
	)
}
