package ledger

import (
	"fmt"
	"sync"
)

// Bank moves native units between accounts. A Transfer either completes
// in full or returns an error with no movement; the ledger treats an
// error as grounds to abort and roll back the surrounding call.
type Bank interface {
	Transfer(from, to Account, amount uint64) error
}

// MemoryBank is an in-process Bank keeping integer balances. Accounts
// are funded with Deposit; a Transfer exceeding the sender's balance
// fails.
type MemoryBank struct {
	mu       sync.Mutex
	balances map[Account]uint64
}

// NewMemoryBank creates an empty bank.
func NewMemoryBank() *MemoryBank {
	return &MemoryBank{balances: make(map[Account]uint64)}
}

// Deposit credits the account out of thin air (test and dev funding).
func (b *MemoryBank) Deposit(account Account, amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[account] += amount
}

// Balance returns the account's current balance.
func (b *MemoryBank) Balance(account Account) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[account]
}

// Transfer debits from and credits to atomically.
func (b *MemoryBank) Transfer(from, to Account, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.balances[from] < amount {
		return fmt.Errorf("bank: account %s holds %d, needs %d", from, b.balances[from], amount)
	}
	b.balances[from] -= amount
	b.balances[to] += amount
	return nil
}
