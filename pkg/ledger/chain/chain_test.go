package chain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func initialBalances() map[AccountID]Amount {
	return map[AccountID]Amount{"A": 10, "B": 10, "C": 10}
}

func TestGenesisIsFixedAcrossConstruction(t *testing.T) {
	l1, err := New(0, initialBalances())
	require.NoError(t, err)
	l2, err := New(0, initialBalances())
	require.NoError(t, err)

	require.Equal(t, l1.SnapshotChain()[0], l2.SnapshotChain()[0])
}

func TestAppendChainsOntoPreviousHash(t *testing.T) {
	l, err := New(0, initialBalances())
	require.NoError(t, err)

	block, err := l.Append(Transaction{Sender: "A", Receiver: "B", Amount: 3})
	require.NoError(t, err)

	genesis := l.SnapshotChain()[0]
	require.Equal(t, uint64(1), block.Index)
	require.Equal(t, genesis.Hash, block.PreviousHash)

	ok, err := block.Verify()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestApplyRemoteRejectsWrongIndex(t *testing.T) {
	l, err := New(0, initialBalances())
	require.NoError(t, err)

	bad := Block{Index: 5, PreviousHash: l.SnapshotChain()[0].Hash, Transaction: Transaction{Sender: "A", Receiver: "B", Amount: 1}}
	bad.Hash, _ = computeHash(bad.Index, bad.PreviousHash, bad.Transaction, bad.Timestamp)

	err = l.ApplyRemote(bad)
	require.ErrorIs(t, err, ErrChainMismatch)
}

func TestApplyRemoteRejectsTamperedHash(t *testing.T) {
	l, err := New(0, initialBalances())
	require.NoError(t, err)

	genesis := l.SnapshotChain()[0]
	block, err := newBlock(1, genesis.Hash, Transaction{Sender: "A", Receiver: "B", Amount: 1}, 42)
	require.NoError(t, err)
	block.Hash = "tampered"

	err = l.ApplyRemote(block)
	require.ErrorIs(t, err, ErrChainMismatch)
}

func TestApplyRemoteDoesNotCheckBalances(t *testing.T) {
	l, err := New(0, initialBalances())
	require.NoError(t, err)

	genesis := l.SnapshotChain()[0]
	block, err := newBlock(1, genesis.Hash, Transaction{Sender: "A", Receiver: "B", Amount: 1000}, 1)
	require.NoError(t, err)

	require.NoError(t, l.ApplyRemote(block))
	require.Equal(t, 2, l.Len())
}

func TestBalanceTableConservation(t *testing.T) {
	table := NewBalanceTable(initialBalances())
	before := table.Total()

	table.Debit("A", 3)
	table.Credit("B", 3)

	require.Equal(t, before, table.Total())
	require.Equal(t, Amount(7), table.Balance("A"))
	require.Equal(t, Amount(13), table.Balance("B"))
}

func TestCanDebit(t *testing.T) {
	table := NewBalanceTable(initialBalances())
	require.True(t, table.CanDebit("A", 10))
	require.False(t, table.CanDebit("A", 11))
}

func TestReplayDeterminism(t *testing.T) {
	l, err := New(0, initialBalances())
	require.NoError(t, err)

	_, err = l.Append(Transaction{Sender: "A", Receiver: "B", Amount: 2})
	require.NoError(t, err)
	l.Balance.Debit("A", 2)
	l.Balance.Credit("B", 2)

	_, err = l.Append(Transaction{Sender: "B", Receiver: "C", Amount: 5})
	require.NoError(t, err)
	l.Balance.Debit("B", 5)
	l.Balance.Credit("C", 5)

	replayed := Replay(l.SnapshotChain(), initialBalances())
	require.Equal(t, l.Balance.Snapshot(), replayed.Snapshot())
}

func TestHashLinkageAcrossChain(t *testing.T) {
	l, err := New(0, initialBalances())
	require.NoError(t, err)
	_, err = l.Append(Transaction{Sender: "A", Receiver: "B", Amount: 1})
	require.NoError(t, err)
	_, err = l.Append(Transaction{Sender: "B", Receiver: "C", Amount: 1})
	require.NoError(t, err)

	blocks := l.SnapshotChain()
	for i := 1; i < len(blocks); i++ {
		require.Equal(t, blocks[i-1].Hash, blocks[i].PreviousHash)
		ok, err := blocks[i].Verify()
		require.NoError(t, err)
		require.True(t, ok)
	}
}
