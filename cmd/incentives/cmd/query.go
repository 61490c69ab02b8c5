package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"
)

var Query = &cobra.Command{
	Use:   "query",
	Short: "Read the committed state",
}

// queryCommand opens the engine for one read and prints the result as JSON.
func queryCommand(use string, short string, args cobra.PositionalArgs, read func(a *app, args []string) (interface{}, error)) *cobra.Command {
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

			result, err := read(a, args)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
}

// resolveAccount accepts an address, @name or #id.
func resolveAccount(a *app, s string) (types.Address, error) {
	if strings.HasPrefix(s, "#") {
		id, err := strconv.ParseUint(s[1:], 10, 32)
		if err != nil {
			return types.Address{}, fmt.Errorf("%q is not an account id", s)
		}
		return a.engine.AccountByID(uint32(id))
	}
	return parseAddress(s)
}

func init() {
	Query.AddCommand(
		queryCommand("account [address|@name|#id]", "Show an account", cobra.ExactArgs(1),
			func(a *app, args []string) (interface{}, error) {
				address, err := resolveAccount(a, args[0])
				if err != nil {
					return nil, err
				}
				return a.engine.Account(address)
			}),
		queryCommand("package [level]", "Show one package or the whole table", cobra.MaximumNArgs(1),
			func(a *app, args []string) (interface{}, error) {
				if len(args) == 0 {
					return a.engine.Packages(), nil
				}
				level, err := parseLevel(args[0])
				if err != nil {
					return nil, err
				}
				return a.engine.Package(level)
			}),
		queryCommand("pool [name]", "Show a pool and its running cycle", cobra.MaximumNArgs(1),
			func(a *app, args []string) (interface{}, error) {
				if len(args) == 1 {
					pool, err := types.ParsePoolType(args[0])
					if err != nil {
						return nil, err
					}
					return a.engine.Pool(pool)
				}

				var pools []interface{}
				for _, pool := range types.PoolTypes {
					status, err := a.engine.Pool(pool)
					if err != nil {
						return nil, err
					}
					pools = append(pools, status)
				}
				return pools, nil
			}),
		queryCommand("network [address|@name|#id]", "Count accounts reachable through direct referrals", cobra.ExactArgs(1),
			func(a *app, args []string) (interface{}, error) {
				address, err := resolveAccount(a, args[0])
				if err != nil {
					return nil, err
				}
				return map[string]uint64{"network_size": a.engine.NetworkSize(address)}, nil
			}),
		queryCommand("team [address|@name|#id]", "Show the team size of an account", cobra.ExactArgs(1),
			func(a *app, args []string) (interface{}, error) {
				address, err := resolveAccount(a, args[0])
				if err != nil {
					return nil, err
				}
				size, err := a.engine.TeamSize(address)
				if err != nil {
					return nil, err
				}
				return map[string]uint64{"team_size": size}, nil
			}),
		queryCommand("withdrawal [address|@name|#id] [amount]", "Show the withdrawal rate and the split of amount", cobra.RangeArgs(1, 2),
			func(a *app, args []string) (interface{}, error) {
				address, err := resolveAccount(a, args[0])
				if err != nil {
					return nil, err
				}
				if len(args) == 1 {
					return map[string]uint64{"withdrawal_rate": a.engine.WithdrawalRate(address)}, nil
				}
				amount, err := parseAmount(args[1])
				if err != nil {
					return nil, err
				}
				return a.engine.PreviewWithdrawal(address, amount), nil
			}),
		queryCommand("guard", "Show pause, circuit breaker and withdrawal limits", cobra.NoArgs,
			func(a *app, args []string) (interface{}, error) {
				return a.engine.Guard(), nil
			}),
		queryCommand("totals", "Show the value ledger totals", cobra.NoArgs,
			func(a *app, args []string) (interface{}, error) {
				return a.engine.Totals(), nil
			}),
		queryCommand("audit", "Check the global invariants of the committed state", cobra.NoArgs,
			func(a *app, args []string) (interface{}, error) {
				if err := a.engine.Audit(); err != nil {
					return nil, err
				}
				return map[string]interface{}{"ok": true, "version": a.engine.Version()}, nil
			}),
		queryCommand("events [version]", "Show the events committed with a state version", cobra.ExactArgs(1),
			func(a *app, args []string) (interface{}, error) {
				version, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return nil, fmt.Errorf("%q is not a version", args[0])
				}
				return a.engine.Events(version)
			}),
	)
}
