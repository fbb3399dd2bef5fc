// Package test provides cluster-of-peers test scaffolding, grounded on
// the teacher's test.CreateCluster/UnityCluster helpers: spin up N
// in-process peers wired through the real TCP transport, then assert
// they agree.
package test

import (
	"fmt"
	"net"
	"sync/atomic"
	"testing"

	"github.com/ledgermesh/ledgermesh/internal/transport"
	"github.com/ledgermesh/ledgermesh/pkg/ledger"
	"github.com/ledgermesh/ledgermesh/pkg/ledger/chain"
)

// testLogger satisfies ledger.Logger without exiting the process on
// Fatalf: a ChainMismatch in these tests is a test failure, not a
// process-halting event, and Fatalf may be invoked from a goroutine the
// testing package does not allow to call t.Fatal directly.
type testLogger struct {
	t      *testing.T
	fatal  int32
	fatalf string
}

func (l *testLogger) Infof(format string, v ...interface{})  { l.t.Logf("INFO: "+format, v...) }
func (l *testLogger) Warnf(format string, v ...interface{})  { l.t.Logf("WARN: "+format, v...) }
func (l *testLogger) Errorf(format string, v ...interface{}) { l.t.Logf("ERROR: "+format, v...) }
func (l *testLogger) Debugf(format string, v ...interface{}) {}
func (l *testLogger) Fatalf(format string, v ...interface{}) {
	atomic.StoreInt32(&l.fatal, 1)
	l.fatalf = fmt.Sprintf(format, v...)
	l.t.Logf("FATAL: "+format, v...)
}

// AssertNoFatal fails the test if the peer's logger ever saw a fatal
// condition (spec §7's ChainMismatch invariant violation).
func (l *testLogger) AssertNoFatal() {
	if atomic.LoadInt32(&l.fatal) != 0 {
		l.t.Fatalf("peer hit a fatal condition: %s", l.fatalf)
	}
}

// Harness is one running peer in a test cluster.
type Harness struct {
	ID        ledger.PeerID
	Addr      string
	Peer      *ledger.Peer
	Transport *transport.TCPTransport
	Logger    *testLogger
}

// Cluster is a set of in-process peers wired through real TCP transports
// on localhost, each with its own ledger seeded from the same initial
// balances.
type Cluster struct {
	t       *testing.T
	Peers   map[ledger.PeerID]*Harness
	Order   []ledger.PeerID
}

func freePort(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed reserving a port: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}

// NewCluster starts one peer per name, all sharing initialBalances.
func NewCluster(t *testing.T, names []string, initialBalances map[chain.AccountID]chain.Amount) *Cluster {
	t.Helper()

	addrs := make(map[ledger.PeerID]string, len(names))
	for _, name := range names {
		addrs[ledger.PeerID(name)] = freePort(t)
	}

	cluster := &Cluster{t: t, Peers: make(map[ledger.PeerID]*Harness, len(names))}
	for _, name := range names {
		id := ledger.PeerID(name)
		others := make(map[ledger.PeerID]string, len(names)-1)
		var otherIDs []ledger.PeerID
		for _, other := range names {
			if other != name {
				otherIDs = append(otherIDs, ledger.PeerID(other))
				others[ledger.PeerID(other)] = addrs[ledger.PeerID(other)]
			}
		}

		log := &testLogger{t: t}
		trans, err := transport.Listen(id, addrs[id], others, log)
		if err != nil {
			t.Fatalf("failed starting transport for %s: %v", id, err)
		}

		ledgerState, err := chain.New(0, initialBalances)
		if err != nil {
			t.Fatalf("failed building ledger for %s: %v", id, err)
		}

		peer := ledger.NewPeer(id, otherIDs, ledgerState, trans, log)
		cluster.Peers[id] = &Harness{ID: id, Addr: addrs[id], Peer: peer, Transport: trans, Logger: log}
		cluster.Order = append(cluster.Order, id)
	}
	return cluster
}

// Shutdown stops every peer and closes every transport.
func (c *Cluster) Shutdown() {
	for _, h := range c.Peers {
		h.Logger.AssertNoFatal()
		h.Peer.Stop()
		h.Transport.Close()
	}
}
