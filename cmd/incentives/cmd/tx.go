package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/MinterTeam/incentives-engine/core/transaction"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/MinterTeam/incentives-engine/log"
	"github.com/spf13/cobra"
)

// txCommand builds an operation command. Every operation command takes the
// sender and an optional slot.
func txCommand(use string, short string, args cobra.PositionalArgs, build txBuilder) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return deliver(cmd, args, build)
		},
	}
	cmd.Flags().String("from", "", "sender address, or @name for a derived address")
	cmd.Flags().Uint64("slot", 0, "ledger slot of the operation (default is the next state version)")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}

type txBuilder func(cmd *cobra.Command, args []string, a *app) (transaction.Data, error)

func deliver(cmd *cobra.Command, args []string, build txBuilder) error {
	from, err := cmd.Flags().GetString("from")
	if err != nil {
		return err
	}
	sender, err := parseAddress(from)
	if err != nil {
		return err
	}
	slot, err := cmd.Flags().GetUint64("slot")
	if err != nil {
		return err
	}

	logger, err := log.NewLogger(cfg)
	if err != nil {
		return err
	}

	a, err := openApp(logger, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := build(cmd, args, a)
	if err != nil {
		return err
	}

	if slot == 0 {
		slot = uint64(a.engine.Version()) + 1
	}

	tx, err := transaction.NewTransaction(sender, slot, data)
	if err != nil {
		return err
	}

	response := a.engine.Deliver(cmd.Context(), tx)
	if err := printJSON(response); err != nil {
		return err
	}
	if !response.IsOK() {
		return fmt.Errorf("%s rejected with code %d", tx.Type.Name(), response.Code)
	}

	return nil
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func paymentFlags(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().String("coin", "ref", "payment coin: ref or native")
	cmd.Flags().String("amount", "", "payment amount in base units (default is the package price)")
	return cmd
}

func payment(cmd *cobra.Command) (types.CoinID, string, error) {
	coinName, err := cmd.Flags().GetString("coin")
	if err != nil {
		return 0, "", err
	}
	coin, err := parseCoin(coinName)
	if err != nil {
		return 0, "", err
	}
	amount, err := cmd.Flags().GetString("amount")
	return coin, amount, err
}

func parseLevel(s string) (uint32, error) {
	var level uint32
	if _, err := fmt.Sscan(s, &level); err != nil {
		return 0, fmt.Errorf("%q is not a package level", s)
	}
	return level, nil
}

// packagePrice returns the price of level when the caller did not set an
// amount. Native payments need an explicit amount.
func packagePrice(a *app, coin types.CoinID, amount string, level uint32) (string, error) {
	if amount != "" {
		return amount, nil
	}
	if coin != types.ReferenceCoin {
		return "", fmt.Errorf("--amount is required for %s payments", coin)
	}

	p, err := a.engine.Package(level)
	if err != nil {
		return "", fmt.Errorf("package %d: %w", level, err)
	}
	return p.Price, nil
}

var Register = paymentFlags(txCommand("register [sponsor] [level]", "Register the sender under sponsor", cobra.ExactArgs(2),
	func(cmd *cobra.Command, args []string, a *app) (transaction.Data, error) {
		sponsor, err := parseAddress(args[0])
		if err != nil {
			return nil, err
		}
		level, err := parseLevel(args[1])
		if err != nil {
			return nil, err
		}
		coin, amount, err := payment(cmd)
		if err != nil {
			return nil, err
		}
		if amount, err = packagePrice(a, coin, amount, level); err != nil {
			return nil, err
		}
		value, err := parseAmount(amount)
		if err != nil {
			return nil, err
		}

		return &transaction.RegisterData{Sponsor: sponsor, PackageLevel: level, Coin: coin, Amount: value}, nil
	}))

var Upgrade = paymentFlags(txCommand("upgrade [level]", "Upgrade the sender's package", cobra.ExactArgs(1),
	func(cmd *cobra.Command, args []string, a *app) (transaction.Data, error) {
		level, err := parseLevel(args[0])
		if err != nil {
			return nil, err
		}
		coin, amount, err := payment(cmd)
		if err != nil {
			return nil, err
		}
		if amount, err = packagePrice(a, coin, amount, level); err != nil {
			return nil, err
		}
		value, err := parseAmount(amount)
		if err != nil {
			return nil, err
		}

		return &transaction.UpgradePackageData{NewLevel: level, Coin: coin, Amount: value}, nil
	}))

var Withdraw = txCommand("withdraw [amount]", "Withdraw from the sender's balance", cobra.ExactArgs(1),
	func(cmd *cobra.Command, args []string, a *app) (transaction.Data, error) {
		amount, err := parseAmount(args[0])
		if err != nil {
			return nil, err
		}

		return &transaction.WithdrawData{Amount: amount}, nil
	})

var Distribute = txCommand("distribute [pool]", "Start or continue a pool distribution cycle", cobra.ExactArgs(1),
	func(cmd *cobra.Command, args []string, a *app) (transaction.Data, error) {
		pool, err := types.ParsePoolType(args[0])
		if err != nil {
			return nil, err
		}

		return &transaction.DistributePoolData{Pool: pool}, nil
	})
