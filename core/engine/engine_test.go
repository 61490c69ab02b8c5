package engine

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/MinterTeam/incentives-engine/core/code"
	"github.com/MinterTeam/incentives-engine/core/events"
	"github.com/MinterTeam/incentives-engine/core/oracle"
	"github.com/MinterTeam/incentives-engine/core/state"
	"github.com/MinterTeam/incentives-engine/core/transaction"
	"github.com/MinterTeam/incentives-engine/core/types"
	"github.com/MinterTeam/incentives-engine/core/vault"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	db "github.com/tendermint/tm-db"
)

const genesisTime = 1700000000

var (
	admin    = types.NameToAddress("admin")
	platform = types.NameToAddress("platform")
	treasury = types.NameToAddress("treasury")
	root     = types.NameToAddress("root")
)

type hookVault struct {
	*vault.Memory
	onTransferFrom func()
}

func (v *hookVault) TransferFrom(ctx context.Context, coin types.CoinID, spender types.Address, from types.Address, to types.Address, amount *big.Int) error {
	if v.onTransferFrom != nil {
		v.onTransferFrom()
	}
	return v.Memory.TransferFrom(ctx, coin, spender, from, to, amount)
}

type testEngine struct {
	engine *Engine
	vault  *hookVault
	clock  *clockwork.FakeClock
	slot   uint64
}

func genesis() types.AppState {
	return types.AppState{
		GenesisTime:       genesisTime,
		Admins:            []types.Address{admin},
		PlatformRecipient: platform,
		Root:              root,
		RootLevel:         1,
		Packages: []types.Package{
			{Level: 1, Price: types.Units(30).String(), DirectBP: 4000, LevelBP: 1000, UplineBP: 1000, LeaderBP: 1000, HelpBP: 3000},
			{Level: 2, Price: types.Units(60).String(), DirectBP: 4000, LevelBP: 1000, UplineBP: 1000, LeaderBP: 1000, HelpBP: 2000, ClubBP: 1000},
		},
	}
}

func newTestEngine(t *testing.T, clock *clockwork.FakeClock, source oracle.Source) *testEngine {
	t.Helper()

	if clock == nil {
		clock = clockwork.NewFakeClockAt(time.Unix(genesisTime+60, 0))
	}

	st, err := state.NewState(0, db.NewMemDB(), events.NewEventsStore(db.NewMemDB()), 1024, 0)
	require.NoError(t, err)

	v := &hookVault{Memory: vault.NewMemory()}
	e, err := NewEngine(st, Options{
		Params:   types.DefaultParams(),
		Clock:    clock,
		Oracle:   source,
		Vault:    v,
		Treasury: treasury,
	})
	require.NoError(t, err)
	require.NoError(t, e.InitGenesis(genesis()))

	return &testEngine{engine: e, vault: v, clock: clock}
}

func (te *testEngine) deliver(t *testing.T, sender types.Address, data transaction.Data) transaction.Response {
	t.Helper()

	te.slot++
	tx, err := transaction.NewTransaction(sender, te.slot, data)
	require.NoError(t, err)

	return te.engine.Deliver(context.Background(), tx)
}

func (te *testEngine) fund(t *testing.T, coin types.CoinID, owner types.Address, amount *big.Int) {
	t.Helper()

	te.vault.Mint(coin, owner, amount)
	require.NoError(t, te.vault.Approve(context.Background(), coin, owner, treasury, amount))
}

func (te *testEngine) balance(t *testing.T, coin types.CoinID, owner types.Address) string {
	t.Helper()

	balance, err := te.vault.BalanceOf(context.Background(), coin, owner)
	require.NoError(t, err)

	return balance.String()
}

func (te *testEngine) register(t *testing.T, name string, sponsor types.Address) types.Address {
	t.Helper()

	address := types.NameToAddress(name)
	te.fund(t, types.ReferenceCoin, address, types.Units(30))
	response := te.deliver(t, address, &transaction.RegisterData{
		Sponsor:      sponsor,
		PackageLevel: 1,
		Coin:         types.ReferenceCoin,
		Amount:       types.Units(30),
	})
	require.Equal(t, code.OK, response.Code, response.Log)

	return address
}

func TestInitGenesisOnce(t *testing.T) {
	te := newTestEngine(t, nil, nil)

	require.Equal(t, int64(1), te.engine.Version())
	require.Error(t, te.engine.InitGenesis(genesis()))

	account, err := te.engine.Account(root)
	require.NoError(t, err)
	require.Equal(t, uint32(1), account.ID)
	require.Equal(t, types.Units(120).String(), account.EarningsCap)
}

func TestRegisterCollectsPayment(t *testing.T) {
	te := newTestEngine(t, nil, nil)

	alice := te.register(t, "alice", root)

	require.Equal(t, types.Units(30).String(), te.balance(t, types.ReferenceCoin, treasury))
	require.Equal(t, "0", te.balance(t, types.ReferenceCoin, alice))

	account, err := te.engine.Account(alice)
	require.NoError(t, err)
	require.Equal(t, uint32(2), account.ID)
	require.Equal(t, root, account.Sponsor)
	require.Equal(t, uint64(genesisTime+60), account.RegistrationTime)

	// direct 12, upline 3, level 0.3
	rootAccount, err := te.engine.Account(root)
	require.NoError(t, err)
	require.Equal(t, "15300000000000000000", rootAccount.Balance)
	require.Equal(t, uint64(1), rootAccount.DirectReferralCount)

	community, err := te.engine.Pool(types.PoolCommunity)
	require.NoError(t, err)
	require.Equal(t, types.Units(9).String(), community.Balance)

	address, err := te.engine.AccountByID(2)
	require.NoError(t, err)
	require.Equal(t, alice, address)

	require.Equal(t, int64(2), te.engine.Version())
	require.NoError(t, te.engine.Audit())

	list, err := te.engine.Events(2)
	require.NoError(t, err)
	found := false
	for _, event := range list {
		if event.Type() == events.TypeRegistrationEvent {
			found = true
		}
	}
	require.True(t, found)
}

func TestRegisterWithoutAllowanceLeavesNoTrace(t *testing.T) {
	te := newTestEngine(t, nil, nil)

	alice := types.NameToAddress("alice")
	te.vault.Mint(types.ReferenceCoin, alice, types.Units(30))

	response := te.deliver(t, alice, &transaction.RegisterData{
		Sponsor:      root,
		PackageLevel: 1,
		Coin:         types.ReferenceCoin,
		Amount:       types.Units(30),
	})
	require.Equal(t, code.TransferFailed, response.Code)

	_, err := te.engine.Account(alice)
	require.ErrorIs(t, err, ErrAccountNotFound)

	rootAccount, err := te.engine.Account(root)
	require.NoError(t, err)
	require.Equal(t, "0", rootAccount.Balance)
	require.Equal(t, int64(1), te.engine.Version())
	require.Equal(t, types.Units(30).String(), te.balance(t, types.ReferenceCoin, alice))
}

func TestNativePaymentUsesOraclePrice(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Unix(genesisTime+60, 0))
	te := newTestEngine(t, clock, oracle.NewStatic(types.Units(2), clock.Now()))

	alice := types.NameToAddress("alice")
	te.fund(t, types.NativeCoin, alice, types.Units(20))

	response := te.deliver(t, alice, &transaction.RegisterData{
		Sponsor:      root,
		PackageLevel: 1,
		Coin:         types.NativeCoin,
		Amount:       types.Units(14),
	})
	require.Equal(t, code.InsufficientPayment, response.Code)

	response = te.deliver(t, alice, &transaction.RegisterData{
		Sponsor:      root,
		PackageLevel: 1,
		Coin:         types.NativeCoin,
		Amount:       types.Units(20),
	})
	require.Equal(t, code.OK, response.Code, response.Log)

	require.Equal(t, types.Units(5).String(), te.balance(t, types.NativeCoin, alice))
	require.Equal(t, types.Units(15).String(), te.balance(t, types.NativeCoin, treasury))
}

func TestNativePaymentWithoutOracle(t *testing.T) {
	te := newTestEngine(t, nil, nil)

	alice := types.NameToAddress("alice")
	te.fund(t, types.NativeCoin, alice, types.Units(20))

	response := te.deliver(t, alice, &transaction.RegisterData{
		Sponsor:      root,
		PackageLevel: 1,
		Coin:         types.NativeCoin,
		Amount:       types.Units(20),
	})
	require.Equal(t, code.PriceUnavailable, response.Code)
}

func TestCircuitBreaker(t *testing.T) {
	te := newTestEngine(t, nil, nil)

	response := te.deliver(t, admin, &transaction.SetCircuitBreakerThresholdData{Threshold: types.Units(29)})
	require.Equal(t, code.OK, response.Code, response.Log)

	alice := types.NameToAddress("alice")
	te.fund(t, types.ReferenceCoin, alice, types.Units(30))
	register := &transaction.RegisterData{
		Sponsor:      root,
		PackageLevel: 1,
		Coin:         types.ReferenceCoin,
		Amount:       types.Units(30),
	}

	response = te.deliver(t, alice, register)
	require.Equal(t, code.CircuitBreakerActivated, response.Code)

	require.True(t, te.engine.Guard().BreakerTriggered)
	require.Equal(t, int64(3), te.engine.Version())
	_, err := te.engine.Account(alice)
	require.ErrorIs(t, err, ErrAccountNotFound)
	require.Equal(t, types.Units(30).String(), te.balance(t, types.ReferenceCoin, alice))

	list, err := te.engine.Events(3)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, events.TypeCircuitBreakerEvent, list[0].Type())

	response = te.deliver(t, alice, register)
	require.Equal(t, code.CircuitBreakerActivated, response.Code)

	response = te.deliver(t, alice, &transaction.ResetCircuitBreakerData{})
	require.Equal(t, code.NotAdmin, response.Code)

	response = te.deliver(t, admin, &transaction.ResetCircuitBreakerData{})
	require.Equal(t, code.OK, response.Code, response.Log)
	response = te.deliver(t, admin, &transaction.SetCircuitBreakerThresholdData{Threshold: types.Units(30)})
	require.Equal(t, code.OK, response.Code, response.Log)

	response = te.deliver(t, alice, register)
	require.Equal(t, code.OK, response.Code, response.Log)
	require.False(t, te.engine.Guard().BreakerTriggered)
}

func TestPauseBlocksUserOperations(t *testing.T) {
	te := newTestEngine(t, nil, nil)

	response := te.deliver(t, root, &transaction.SetPauseData{Paused: true})
	require.Equal(t, code.NotAdmin, response.Code)

	response = te.deliver(t, admin, &transaction.SetPauseData{Paused: true})
	require.Equal(t, code.OK, response.Code, response.Log)

	alice := types.NameToAddress("alice")
	te.fund(t, types.ReferenceCoin, alice, types.Units(30))
	register := &transaction.RegisterData{
		Sponsor:      root,
		PackageLevel: 1,
		Coin:         types.ReferenceCoin,
		Amount:       types.Units(30),
	}
	response = te.deliver(t, alice, register)
	require.Equal(t, code.SystemPaused, response.Code)

	response = te.deliver(t, admin, &transaction.SetWithdrawalLimitsData{Daily: types.Units(100), GlobalDaily: types.Units(1000)})
	require.Equal(t, code.OK, response.Code, response.Log)

	response = te.deliver(t, admin, &transaction.SetPauseData{Paused: false})
	require.Equal(t, code.OK, response.Code, response.Log)

	response = te.deliver(t, alice, register)
	require.Equal(t, code.OK, response.Code, response.Log)

	guard := te.engine.Guard()
	require.False(t, guard.Paused)
	require.Equal(t, types.Units(100).String(), guard.DailyWithdrawalLimit)
}

func TestSameSlotReplay(t *testing.T) {
	te := newTestEngine(t, nil, nil)
	ctx := context.Background()

	alice := types.NameToAddress("alice")
	te.fund(t, types.ReferenceCoin, alice, types.Units(90))

	tx, err := transaction.NewTransaction(alice, 7, &transaction.RegisterData{
		Sponsor:      root,
		PackageLevel: 1,
		Coin:         types.ReferenceCoin,
		Amount:       types.Units(30),
	})
	require.NoError(t, err)
	response := te.engine.Deliver(ctx, tx)
	require.Equal(t, code.OK, response.Code, response.Log)

	tx, err = transaction.NewTransaction(alice, 7, &transaction.UpgradePackageData{NewLevel: 2, Coin: types.ReferenceCoin, Amount: types.Units(60)})
	require.NoError(t, err)
	response = te.engine.Deliver(ctx, tx)
	require.Equal(t, code.SameSlotReplay, response.Code)

	tx, err = transaction.NewTransaction(alice, 8, &transaction.UpgradePackageData{NewLevel: 2, Coin: types.ReferenceCoin, Amount: types.Units(60)})
	require.NoError(t, err)
	response = te.engine.Deliver(ctx, tx)
	require.Equal(t, code.OK, response.Code, response.Log)

	tx, err = transaction.NewTransaction(root, 9, &transaction.DistributePoolData{Pool: types.PoolCommunity})
	require.NoError(t, err)
	response = te.engine.Deliver(ctx, tx)
	require.Equal(t, code.OK, response.Code, response.Log)

	tx, err = transaction.NewTransaction(alice, 9, &transaction.DistributePoolData{Pool: types.PoolLeadership})
	require.NoError(t, err)
	response = te.engine.Deliver(ctx, tx)
	require.Equal(t, code.SameSlotReplay, response.Code)
}

func TestReentrantCallIsRejected(t *testing.T) {
	te := newTestEngine(t, nil, nil)

	var nested transaction.Response
	te.vault.onTransferFrom = func() {
		te.vault.onTransferFrom = nil
		tx, err := transaction.NewTransaction(root, 100, &transaction.DistributePoolData{Pool: types.PoolCommunity})
		require.NoError(t, err)
		nested = te.engine.Deliver(context.Background(), tx)
	}

	te.register(t, "alice", root)
	require.Equal(t, code.ReentrantCall, nested.Code)

	community, err := te.engine.Pool(types.PoolCommunity)
	require.NoError(t, err)
	require.Equal(t, types.Units(9).String(), community.Balance)
}

func TestWithdrawPaysFromTreasury(t *testing.T) {
	te := newTestEngine(t, nil, nil)
	te.register(t, "alice", root)

	preview := te.engine.PreviewWithdrawal(root, types.Units(10))
	require.Equal(t, types.Units(7).String(), preview.Withdrawable.String())

	response := te.deliver(t, root, &transaction.WithdrawData{Amount: types.Units(10)})
	require.Equal(t, code.OK, response.Code, response.Log)

	require.Equal(t, "6650000000000000000", te.balance(t, types.ReferenceCoin, root))
	require.Equal(t, "350000000000000000", te.balance(t, types.ReferenceCoin, platform))
	require.Equal(t, types.Units(23).String(), te.balance(t, types.ReferenceCoin, treasury))

	account, err := te.engine.Account(root)
	require.NoError(t, err)
	require.Equal(t, "5300000000000000000", account.Balance)

	totals := te.engine.Totals()
	require.Equal(t, types.Units(7).String(), totals.Withdrawn)
	require.NoError(t, te.engine.Audit())
}

func TestWithdrawNeedsTreasury(t *testing.T) {
	te := newTestEngine(t, nil, nil)
	te.register(t, "alice", root)

	require.NoError(t, te.vault.Transfer(context.Background(), types.ReferenceCoin, treasury, admin, types.Units(25)))

	response := te.deliver(t, root, &transaction.WithdrawData{Amount: types.Units(10)})
	require.Equal(t, code.InsufficientTreasury, response.Code)

	account, err := te.engine.Account(root)
	require.NoError(t, err)
	require.Equal(t, "15300000000000000000", account.Balance)
}

func TestDistributionCycleThroughEngine(t *testing.T) {
	te := newTestEngine(t, nil, nil)
	alice := te.register(t, "alice", root)

	response := te.deliver(t, alice, &transaction.DistributePoolData{Pool: types.PoolCommunity})
	require.Equal(t, code.OK, response.Code, response.Log)

	account, err := te.engine.Account(alice)
	require.NoError(t, err)
	require.Equal(t, "4500000000000000000", account.Balance)

	response = te.deliver(t, alice, &transaction.DistributePoolData{Pool: types.PoolCommunity})
	require.Equal(t, code.CycleNotDue, response.Code)

	te.clock.Advance(25 * time.Hour)
	response = te.deliver(t, alice, &transaction.DistributePoolData{Pool: types.PoolCommunity})
	require.Equal(t, code.PoolEmpty, response.Code)

	status, err := te.engine.Pool(types.PoolCommunity)
	require.NoError(t, err)
	require.Equal(t, "0", status.Balance)
	require.Equal(t, types.Units(9).String(), status.TotalDistributed)
	require.Equal(t, uint64(genesisTime+60), status.LastDistributionTime)
	require.Nil(t, status.Cursor)
	require.NoError(t, te.engine.Audit())
}

func TestEngineTimeNeverGoesBack(t *testing.T) {
	te := newTestEngine(t, clockwork.NewFakeClockAt(time.Unix(1000, 0)), nil)

	alice := te.register(t, "alice", root)

	account, err := te.engine.Account(alice)
	require.NoError(t, err)
	require.Equal(t, uint64(genesisTime), account.RegistrationTime)
}

func TestFundPoolByAdmin(t *testing.T) {
	te := newTestEngine(t, nil, nil)
	te.fund(t, types.ReferenceCoin, admin, types.Units(50))

	response := te.deliver(t, admin, &transaction.FundPoolData{Pool: types.PoolClub, Amount: types.Units(50)})
	require.Equal(t, code.OK, response.Code, response.Log)

	status, err := te.engine.Pool(types.PoolClub)
	require.NoError(t, err)
	require.Equal(t, types.Units(50).String(), status.Balance)
	require.Equal(t, types.Units(50).String(), te.balance(t, types.ReferenceCoin, treasury))
	require.Equal(t, types.Units(50).String(), te.engine.Totals().Inflow)
	require.NoError(t, te.engine.Audit())
}
