package ledger

import (
	"container/heap"
	"sync"
)

// PeerID identifies one replica in the cluster.
type PeerID string

// PendingRequest is a single outstanding critical-section request, ordered
// lexicographically by (Timestamp, Peer) as required by the mutex
// algorithm: smaller timestamp first, ties broken by peer id.
type PendingRequest struct {
	Peer      PeerID
	Timestamp uint64
}

// less reports whether r sorts before other under the (timestamp, peer-id)
// total order used by the mutex algorithm.
func (r PendingRequest) less(other PendingRequest) bool {
	if r.Timestamp != other.Timestamp {
		return r.Timestamp < other.Timestamp
	}
	return r.Peer < other.Peer
}

// requestHeap is the container/heap.Interface backing RequestQueue. Heap
// order gives O(log n) insert and O(log n) removal-of-min; removal by peer
// id is a linear scan, which is fine at the cluster sizes this protocol is
// built for (a handful of peers, at most one pending request each).
type requestHeap []PendingRequest

func (h requestHeap) Len() int            { return len(h) }
func (h requestHeap) Less(i, j int) bool  { return h[i].less(h[j]) }
func (h requestHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *requestHeap) Push(x interface{}) { *h = append(*h, x.(PendingRequest)) }
func (h *requestHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// RequestQueue is the priority queue of pending critical-section requests
// described in spec §4.2. At most one request per peer id should be
// present at any time under correct operation; Insert is otherwise
// idempotent only on the exact (peer, timestamp) pair.
type RequestQueue interface {
	// Insert adds a pending request for peer at the given timestamp.
	Insert(peer PeerID, timestamp uint64)

	// Peek returns the smallest entry and true, or the zero value and
	// false if the queue is empty.
	Peek() (PendingRequest, bool)

	// RemoveByPeer deletes every entry belonging to peer. Idempotent: a
	// RemoveByPeer with no matching entry is a no-op, satisfying the
	// idempotent-RELEASE law from spec §8.
	RemoveByPeer(peer PeerID)

	// Len reports the number of pending requests.
	Len() int
}

type requestQueue struct {
	mutex *sync.Mutex
	heap  *requestHeap
}

// NewRequestQueue creates an empty RequestQueue.
func NewRequestQueue() RequestQueue {
	h := &requestHeap{}
	heap.Init(h)
	return &requestQueue{mutex: &sync.Mutex{}, heap: h}
}

func (q *requestQueue) Insert(peer PeerID, timestamp uint64) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	request := PendingRequest{Peer: peer, Timestamp: timestamp}
	for _, r := range *q.heap {
		if r == request {
			return
		}
	}
	heap.Push(q.heap, request)
}

func (q *requestQueue) Peek() (PendingRequest, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.heap.Len() == 0 {
		return PendingRequest{}, false
	}
	return (*q.heap)[0], true
}

func (q *requestQueue) RemoveByPeer(peer PeerID) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	kept := (*q.heap)[:0]
	for _, r := range *q.heap {
		if r.Peer != peer {
			kept = append(kept, r)
		}
	}
	*q.heap = kept
	heap.Init(q.heap)
}

func (q *requestQueue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.heap.Len()
}
