package chain

import (
	"sync"
	"time"
)

// Ledger holds the ordered sequence of blocks, leaf first, plus the
// replicated balance table over them. It is the state the protocol engine
// in package ledger protects with its mutex and replication handshake.
type Ledger struct {
	mutex   *sync.RWMutex
	blocks  []Block
	Balance *BalanceTable
}

// New creates a ledger seeded with a genesis block timestamped at
// genesisTimestamp (a fixed Unix time shared across the cluster, not each
// peer's own wall clock — see NewGenesisBlock in block.go) and the given
// initial balances.
func New(genesisTimestamp int64, initial map[AccountID]Amount) (*Ledger, error) {
	genesis, err := NewGenesisBlock(genesisTimestamp)
	if err != nil {
		return nil, err
	}
	return &Ledger{
		mutex:   &sync.RWMutex{},
		blocks:  []Block{genesis},
		Balance: NewBalanceTable(initial),
	}, nil
}

// Append constructs a new block for txn, chained onto the current head,
// appends it, and returns it. It does not check or mutate balances — the
// caller (the protocol engine's commit guard) must have already run
// CanDebit and must apply Debit/Credit itself once replication completes.
func (l *Ledger) Append(txn Transaction) (Block, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	head := l.blocks[len(l.blocks)-1]
	block, err := newBlock(uint64(len(l.blocks)), head.Hash, txn, time.Now().UnixNano())
	if err != nil {
		return Block{}, err
	}
	l.blocks = append(l.blocks, block)
	return block, nil
}

// ApplyRemote validates block's index and previous_hash against the local
// chain and appends it. It never validates balances: under the mutex
// protocol, BLOCK_UPDATE is authoritative for ordering and the originator
// has already balance-checked (spec §4.3/§7).
func (l *Ledger) ApplyRemote(block Block) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	head := l.blocks[len(l.blocks)-1]
	if block.Index != uint64(len(l.blocks)) || block.PreviousHash != head.Hash {
		return ErrChainMismatch
	}
	if ok, err := block.Verify(); err != nil {
		return err
	} else if !ok {
		return ErrChainMismatch
	}
	l.blocks = append(l.blocks, block)
	return nil
}

// SnapshotChain returns a read-only copy of the full chain, leaf first.
func (l *Ledger) SnapshotChain() []Block {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	out := make([]Block, len(l.blocks))
	copy(out, l.blocks)
	return out
}

// Len reports the number of blocks in the chain, genesis included.
func (l *Ledger) Len() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return len(l.blocks)
}

// Replay recomputes a balance table from genesis against initial, applying
// every non-genesis block's transaction in order. This is the "replay
// determinism" law from spec §8: recomputing from an identical chain must
// yield the same table as the peer's live one.
func Replay(chain []Block, initial map[AccountID]Amount) *BalanceTable {
	table := NewBalanceTable(initial)
	for _, block := range chain[1:] {
		table.Debit(block.Transaction.Sender, block.Transaction.Amount)
		table.Credit(block.Transaction.Receiver, block.Transaction.Amount)
	}
	return table
}
