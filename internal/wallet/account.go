package wallet

import (
	"fmt"
	"math"
	"sync"

	"github.com/xtding233/plinko-backend/internal/plinko"
)

// Account is an in-memory balance. It satisfies engine.Wallet.
type Account struct {
	mu       sync.Mutex
	balance  plinko.Amount
	inFlight int
}

func NewAccount(start plinko.Amount) *Account {
	if start < 0 {
		start = 0
	}
	return &Account{balance: start}
}

func (a *Account) Balance() plinko.Amount {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// InFlight counts accepted wagers not yet reported.
func (a *Account) InFlight() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inFlight
}

func (a *Account) Deposit(amount plinko.Amount) error {
	if amount <= 0 {
		return fmt.Errorf("%w: deposit must be positive", plinko.ErrInvalidAmount)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if amount > math.MaxInt64-a.balance {
		return fmt.Errorf("%w: deposit would overflow the balance", plinko.ErrInvalidAmount)
	}
	a.balance += amount
	return nil
}

// RequestWager debits amount if the balance covers it.
func (a *Account) RequestWager(amount plinko.Amount) bool {
	if amount <= 0 {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if amount > a.balance {
		return false
	}
	a.balance -= amount
	a.inFlight++
	return true
}

// ReportOutcome credits a settled ball's payout; 0 is a loss. The balance
// saturates at the largest Amount.
func (a *Account) ReportOutcome(amount plinko.Amount) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case amount <= 0:
	case amount > math.MaxInt64-a.balance:
		a.balance = math.MaxInt64
	default:
		a.balance += amount
	}
	if a.inFlight > 0 {
		a.inFlight--
	}
}
