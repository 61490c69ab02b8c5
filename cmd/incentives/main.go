package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/MinterTeam/incentives-engine/cmd/incentives/cmd"
	"github.com/MinterTeam/incentives-engine/cmd/utils"
)

func main() {
	rootCmd := cmd.RootCmd
	rootCmd.PersistentFlags().StringVar(&utils.Home, "home-dir", "", "base dir (default is $HOME/.incentives)")
	rootCmd.PersistentFlags().StringVar(&utils.Config, "config", "", "path to config (default is $(home-dir)/config/config.toml)")

	rootCmd.AddCommand(
		cmd.Init,
		cmd.RunNode,
		cmd.Register,
		cmd.Upgrade,
		cmd.Withdraw,
		cmd.Distribute,
		cmd.Admin,
		cmd.Query,
		cmd.Ledger,
		cmd.Oracle,
		cmd.Export,
		cmd.Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
