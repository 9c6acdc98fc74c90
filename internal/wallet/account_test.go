package wallet

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/xtding233/plinko-backend/internal/plinko"
)

func TestRequestWager(t *testing.T) {
	a := NewAccount(1000)
	if a.RequestWager(1500) {
		t.Fatalf("wager above balance must be refused")
	}
	if a.Balance() != 1000 {
		t.Fatalf("refused wager changed balance: %d", a.Balance())
	}
	if !a.RequestWager(400) || a.Balance() != 600 || a.InFlight() != 1 {
		t.Fatalf("balance=%d inflight=%d", a.Balance(), a.InFlight())
	}
	if a.RequestWager(0) || a.RequestWager(-1) {
		t.Fatalf("non-positive wagers must be refused")
	}
}

func TestReportOutcome(t *testing.T) {
	a := NewAccount(1000)
	a.RequestWager(1000)
	a.ReportOutcome(0)
	if a.Balance() != 0 || a.InFlight() != 0 {
		t.Fatalf("loss: balance=%d inflight=%d", a.Balance(), a.InFlight())
	}
	if err := a.Deposit(500); err != nil {
		t.Fatal(err)
	}
	a.RequestWager(500)
	a.ReportOutcome(1500)
	if a.Balance() != 1500 {
		t.Fatalf("win: balance=%d", a.Balance())
	}
	if err := a.Deposit(-5); !errors.Is(err, plinko.ErrInvalidAmount) {
		t.Fatalf("want ErrInvalidAmount, got %v", err)
	}
}

func TestConcurrentWagers(t *testing.T) {
	a := NewAccount(10_000)
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if a.RequestWager(100) {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if accepted != 100 || a.Balance() != 0 {
		t.Fatalf("accepted=%d balance=%d", accepted, a.Balance())
	}
}

func TestDepositOverflowRejected(t *testing.T) {
	big, err := plinko.ParseAmount("90000000000000000")
	if err != nil {
		t.Fatal(err)
	}
	a := NewAccount(0)
	if err := a.Deposit(big); err != nil {
		t.Fatal(err)
	}
	if err := a.Deposit(big); !errors.Is(err, plinko.ErrInvalidAmount) {
		t.Fatalf("want ErrInvalidAmount, got %v", err)
	}
	if a.Balance() != big {
		t.Fatalf("rejected deposit changed balance: %s", a.Balance())
	}
	if !a.RequestWager(1000) {
		t.Fatalf("wager refused after a rejected deposit")
	}
}

func TestReportOutcomeSaturates(t *testing.T) {
	a := NewAccount(math.MaxInt64 - 10)
	if !a.RequestWager(10) {
		t.Fatal("wager refused")
	}
	a.ReportOutcome(1000)
	if a.Balance() != math.MaxInt64 {
		t.Fatalf("balance=%d, want saturated", a.Balance())
	}
	if a.InFlight() != 0 {
		t.Fatalf("inflight=%d", a.InFlight())
	}
}
