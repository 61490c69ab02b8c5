package vault

import (
	"context"
	"math/big"
	"testing"

	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/stretchr/testify/require"
	db "github.com/tendermint/tm-db"
)

func TestApproveThenTransferFrom(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v := NewMemory()
	payer, treasury := types.NameToAddress("payer"), types.NameToAddress("treasury")
	v.Mint(types.ReferenceCoin, payer, big.NewInt(100))

	err := v.TransferFrom(ctx, types.ReferenceCoin, treasury, payer, treasury, big.NewInt(30))
	require.ErrorIs(t, err, ErrInsufficientAllowance)

	require.NoError(t, v.Approve(ctx, types.ReferenceCoin, payer, treasury, big.NewInt(30)))
	require.NoError(t, v.TransferFrom(ctx, types.ReferenceCoin, treasury, payer, treasury, big.NewInt(30)))

	balance, err := v.BalanceOf(ctx, types.ReferenceCoin, treasury)
	require.NoError(t, err)
	require.Equal(t, "30", balance.String())

	allowance, err := v.Allowance(ctx, types.ReferenceCoin, payer, treasury)
	require.NoError(t, err)
	require.Equal(t, "0", allowance.String())

	// coins are kept apart
	balance, err = v.BalanceOf(ctx, types.NativeCoin, treasury)
	require.NoError(t, err)
	require.Equal(t, "0", balance.String())
}

func TestTransferInsufficientFunds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v := NewMemory()
	a, b := types.NameToAddress("a"), types.NameToAddress("b")
	v.Mint(types.ReferenceCoin, a, big.NewInt(5))

	require.ErrorIs(t, v.Transfer(ctx, types.ReferenceCoin, a, b, big.NewInt(6)), ErrInsufficientFunds)
	require.ErrorIs(t, v.Transfer(ctx, types.ReferenceCoin, a, b, big.NewInt(-1)), ErrInvalidAmount)
	require.NoError(t, v.Transfer(ctx, types.ReferenceCoin, a, b, big.NewInt(5)))

	balance, _ := v.BalanceOf(ctx, types.ReferenceCoin, b)
	require.Equal(t, "5", balance.String())
}

func TestLedgerPersists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	memDB := db.NewMemDB()
	payer, treasury := types.NameToAddress("payer"), types.NameToAddress("treasury")

	l := NewLedger(memDB)
	require.NoError(t, l.Mint(types.ReferenceCoin, payer, big.NewInt(100)))
	require.NoError(t, l.Approve(ctx, types.ReferenceCoin, payer, treasury, big.NewInt(40)))
	require.ErrorIs(t, l.TransferFrom(ctx, types.ReferenceCoin, treasury, payer, treasury, big.NewInt(41)), ErrInsufficientAllowance)
	require.NoError(t, l.TransferFrom(ctx, types.ReferenceCoin, treasury, payer, treasury, big.NewInt(40)))
	require.ErrorIs(t, l.Transfer(ctx, types.ReferenceCoin, treasury, payer, big.NewInt(41)), ErrInsufficientFunds)

	reopened := NewLedger(memDB)
	balance, err := reopened.BalanceOf(ctx, types.ReferenceCoin, payer)
	require.NoError(t, err)
	require.Equal(t, "60", balance.String())

	balance, err = reopened.BalanceOf(ctx, types.ReferenceCoin, treasury)
	require.NoError(t, err)
	require.Equal(t, "40", balance.String())

	allowance, err := reopened.Allowance(ctx, types.ReferenceCoin, payer, treasury)
	require.NoError(t, err)
	require.Equal(t, "0", allowance.String())

	require.NoError(t, reopened.Transfer(ctx, types.ReferenceCoin, treasury, treasury, big.NewInt(40)))
	balance, err = reopened.BalanceOf(ctx, types.ReferenceCoin, treasury)
	require.NoError(t, err)
	require.Equal(t, "40", balance.String())
}
