package transport

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgermesh/ledgermesh/pkg/ledger"
	"github.com/ledgermesh/ledgermesh/pkg/ledger/chain"
)

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Fatalf(string, ...interface{}) {}

func freeAddr(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestTCPTransportDeliversProtocolMessage(t *testing.T) {
	addrA := freeAddr(t)
	addrB := freeAddr(t)

	a, err := Listen("A", addrA, map[ledger.PeerID]string{"B": addrB}, nopLogger{})
	require.NoError(t, err)
	defer a.Close()

	b, err := Listen("B", addrB, map[ledger.PeerID]string{"A": addrA}, nopLogger{})
	require.NoError(t, err)
	defer b.Close()

	err = a.Send(context.Background(), "B", ledger.Envelope{Type: ledger.KindRequest, Sender: "A", Timestamp: 7})
	require.NoError(t, err)

	select {
	case env := <-b.Inbox():
		require.Equal(t, ledger.KindRequest, env.Type)
		require.Equal(t, ledger.PeerID("A"), env.Sender)
		require.Equal(t, uint64(7), env.Timestamp)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestTCPTransportDeliversBlockUpdate(t *testing.T) {
	addrA := freeAddr(t)
	addrB := freeAddr(t)

	a, err := Listen("A", addrA, map[ledger.PeerID]string{"B": addrB}, nopLogger{})
	require.NoError(t, err)
	defer a.Close()

	b, err := Listen("B", addrB, map[ledger.PeerID]string{"A": addrA}, nopLogger{})
	require.NoError(t, err)
	defer b.Close()

	block := chain.Block{Index: 1, PreviousHash: "abc", Transaction: chain.Transaction{Sender: "A", Receiver: "B", Amount: 3}}
	err = a.Send(context.Background(), "B", ledger.Envelope{Type: ledger.KindBlockUpdate, Sender: "A", Timestamp: 2, Block: &block})
	require.NoError(t, err)

	select {
	case env := <-b.Inbox():
		require.Equal(t, ledger.KindBlockUpdate, env.Type)
		require.NotNil(t, env.Block)
		require.Equal(t, block.Transaction, env.Block.Transaction)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for block update")
	}
}

func TestTCPTransportCommandRoundTrip(t *testing.T) {
	addr := freeAddr(t)
	tr, err := Listen("A", addr, nil, nopLogger{})
	require.NoError(t, err)
	defer tr.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case cmd := <-tr.Commands():
			require.Equal(t, ledger.CommandBalance, cmd.Envelope.Command)
			require.NoError(t, cmd.Respond(ledger.CommandResult{Success: true, Balance: map[chain.AccountID]chain.Amount{"A": 10}}))
		case <-time.After(2 * time.Second):
			t.Error("timed out waiting for command")
		}
	}()

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, json.NewEncoder(conn).Encode(ledger.CommandEnvelope{Type: ledger.KindCommandEnvel, Command: ledger.CommandBalance}))

	var result ledger.CommandResult
	require.NoError(t, json.NewDecoder(conn).Decode(&result))
	require.True(t, result.Success)
	require.Equal(t, chain.Amount(10), result.Balance["A"])

	<-done
}
