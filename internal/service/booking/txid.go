package booking

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// TransactionIDs hands out TXN-<unixMillis>-<n> identifiers. The millisecond
// part never repeats within a process, so ids stay unique even when many are
// requested inside the same wall-clock millisecond.
type TransactionIDs struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewTransactionIDs() *TransactionIDs {
	return &TransactionIDs{now: time.Now}
}

func (g *TransactionIDs) Next() string {
	g.mu.Lock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	g.mu.Unlock()

	return fmt.Sprintf("TXN-%d-%d", ms, rand.IntN(10000))
}
