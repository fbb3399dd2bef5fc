package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueueOrdersByTimestampThenPeer(t *testing.T) {
	q := NewRequestQueue()
	q.Insert("C", 5)
	q.Insert("A", 5)
	q.Insert("B", 2)

	head, ok := q.Peek()
	require.True(t, ok)
	require.Equal(t, PendingRequest{Peer: "B", Timestamp: 2}, head)

	q.RemoveByPeer("B")
	head, ok = q.Peek()
	require.True(t, ok)
	require.Equal(t, PendingRequest{Peer: "A", Timestamp: 5}, head)
}

func TestRemoveByPeerIsIdempotent(t *testing.T) {
	q := NewRequestQueue()
	q.RemoveByPeer("nobody-waiting")
	require.Equal(t, 0, q.Len())

	q.Insert("A", 1)
	q.RemoveByPeer("A")
	q.RemoveByPeer("A")
	require.Equal(t, 0, q.Len())
}

func TestPeekOnEmptyQueue(t *testing.T) {
	q := NewRequestQueue()
	_, ok := q.Peek()
	require.False(t, ok)
}
