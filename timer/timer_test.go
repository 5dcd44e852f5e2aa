package timer

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{
		BaseTurn:          20 * time.Millisecond,
		InitialBank:       30 * time.Millisecond,
		MaxBank:           50 * time.Millisecond,
		RoundBonus:        10 * time.Millisecond,
		MeldDecision:      20 * time.Millisecond,
		RoundAdvanceDelay: 20 * time.Millisecond,
	}
}

func TestTurnFiresOnDeadline(t *testing.T) {
	var fired int32
	turn := NewTurn(fastConfig(), 10*time.Millisecond)
	turn.StartTurn(func() { atomic.AddInt32(&fired, 1) })

	require.Eventually(t, func() bool { return atomic.LoadInt32(&fired) == 1 }, time.Second, time.Millisecond)
}

func TestTurnStopBeforeDeadlineDoesNotFire(t *testing.T) {
	var fired int32
	turn := NewTurn(fastConfig(), 10*time.Millisecond)
	turn.StartTurn(func() { atomic.AddInt32(&fired, 1) })
	turn.Stop()

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(0), atomic.LoadInt32(&fired))
}

func TestTurnStopDeductsElapsedOverageFromBank(t *testing.T) {
	cfg := fastConfig()
	turn := NewTurn(cfg, 30*time.Millisecond)
	turn.StartTurn(func() {})
	time.Sleep(cfg.BaseTurn + 10*time.Millisecond)
	turn.Stop()

	require.Less(t, turn.Bank(), 30*time.Millisecond, "time spent past BaseTurn should be deducted")
}

func TestTurnStopWithinBaseTurnLeavesBankUntouched(t *testing.T) {
	cfg := fastConfig()
	turn := NewTurn(cfg, 30*time.Millisecond)
	turn.StartTurn(func() {})
	turn.Stop()

	require.Equal(t, 30*time.Millisecond, turn.Bank())
}

func TestTurnAddRoundBonusCapsAtMaxBank(t *testing.T) {
	cfg := fastConfig()
	turn := NewTurn(cfg, cfg.MaxBank-5*time.Millisecond)
	turn.AddRoundBonus()
	require.Equal(t, cfg.MaxBank, turn.Bank(), "bonus should clamp at MaxBank")
}

func TestBankCreateSeatsAndStopIsolatesFirers(t *testing.T) {
	cfg := fastConfig()
	var mu sync.Mutex
	out := map[int]TimeoutKind{}
	bank := NewBank(cfg, func(seat int, kind TimeoutKind) {
		mu.Lock()
		out[seat] = kind
		mu.Unlock()
	})
	bank.CreateSeats([]int{0, 1, 2, 3})
	bank.StartTurn(1)
	bank.Stop(1)

	time.Sleep(cfg.BaseTurn + cfg.InitialBank + 20*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Empty(t, out, "a stopped seat must never fire")
}

func TestBankCancelOthersStopsEverySeatButOne(t *testing.T) {
	cfg := fastConfig()
	var fired sync.Map
	bank := NewBank(cfg, func(seat int, kind TimeoutKind) { fired.Store(seat, kind) })
	bank.CreateSeats([]int{0, 1, 2, 3})
	for s := 0; s < 4; s++ {
		bank.StartMeld(s)
	}
	bank.CancelOthers(2)

	time.Sleep(cfg.MeldDecision + 20*time.Millisecond)
	_, fired0 := fired.Load(0)
	_, fired2 := fired.Load(2)
	require.False(t, fired0, "seat 0 was cancelled by CancelOthers")
	require.True(t, fired2, "the excluded seat's timer should still fire")
}

func TestBankRemoveSeatReturnsTimerForBankStash(t *testing.T) {
	cfg := fastConfig()
	bank := NewBank(cfg, func(int, TimeoutKind) {})
	bank.CreateSeats([]int{0})

	turn := bank.RemoveSeat(0)
	require.NotNil(t, turn)
	require.Equal(t, cfg.InitialBank, turn.Bank())
	require.Nil(t, bank.RemoveSeat(0), "a second removal finds nothing left")
}

func TestBankAddSeatPreservesBankAcrossReconnect(t *testing.T) {
	cfg := fastConfig()
	bank := NewBank(cfg, func(int, TimeoutKind) {})
	bank.AddSeat(2, 7*time.Millisecond)
	require.Equal(t, 0.007, bank.BankSeconds(2))
}

func TestRoundAdvanceTrackerAllAIAdvancesImmediately(t *testing.T) {
	tr := NewRoundAdvanceTracker()
	immediate := tr.Setup("g1", []int{0, 1, 2, 3})
	require.True(t, immediate)
	require.False(t, tr.IsPending("g1"))
}

func TestRoundAdvanceTrackerWaitsForEveryHumanSeat(t *testing.T) {
	tr := NewRoundAdvanceTracker()
	immediate := tr.Setup("g1", []int{2, 3})
	require.False(t, immediate)
	require.True(t, tr.IsPending("g1"))

	all, ok := tr.Confirm("g1", 0)
	require.True(t, ok)
	require.False(t, all)

	all, ok = tr.Confirm("g1", 1)
	require.True(t, ok)
	require.True(t, all)
	require.False(t, tr.IsPending("g1"), "tracker cleans itself up once everyone confirms")
}

func TestRoundAdvanceTrackerRejectsAISeatConfirmation(t *testing.T) {
	tr := NewRoundAdvanceTracker()
	tr.Setup("g1", []int{3})

	_, ok := tr.Confirm("g1", 3)
	require.False(t, ok, "an AI seat is not a required confirmer")
}

func TestRoundAdvanceTrackerConfirmWithoutSetupIsNoop(t *testing.T) {
	tr := NewRoundAdvanceTracker()
	all, ok := tr.Confirm("missing", 0)
	require.False(t, all)
	require.False(t, ok)
}

func TestRoundAdvanceTrackerCleanup(t *testing.T) {
	tr := NewRoundAdvanceTracker()
	tr.Setup("g1", []int{})
	require.True(t, tr.IsPending("g1"))
	tr.Cleanup("g1")
	require.False(t, tr.IsPending("g1"))
}
