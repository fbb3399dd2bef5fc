// Package transport implements ledger.Transport over plain TCP with a
// JSON body, one short-lived connection per message — the reference
// transport named in spec §4.5/§6, grounded directly on
// original_source/client.py's send_message/receive_message pair and on
// the teacher's core.Transport interface shape.
package transport

import (
	"context"
	"encoding/json"
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/ledgermesh/ledgermesh/pkg/ledger"
	"github.com/ledgermesh/ledgermesh/pkg/ledger/chain"
)

// dialTimeout bounds how long Send waits to establish a connection to a
// peer before reporting a TransportFailure.
const dialTimeout = 2 * time.Second

// wireMessage is the union of every field either envelope kind can carry.
// Each connection holds exactly one JSON document (original_source's
// sendall/recv-once model), so it is decoded once and then split into a
// protocol Envelope or a CommandEnvelope by its "type" field, exactly as
// original_source/client.py's process_message dispatches on message["type"].
type wireMessage struct {
	Type        ledger.MessageKind `json:"type"`
	Sender      ledger.PeerID      `json:"sender"`
	Timestamp   uint64             `json:"timestamp,omitempty"`
	Block       *chain.Block       `json:"block,omitempty"`
	Command     ledger.CommandName `json:"command,omitempty"`
	Transaction *chain.Transaction `json:"transaction,omitempty"`
}

// TCPTransport is the default ledger.Transport: every peer listens on one
// TCP address and accepts both protocol messages and CLI COMMAND
// envelopes on it, distinguishing them by the "type" field.
type TCPTransport struct {
	self      ledger.PeerID
	addresses map[ledger.PeerID]string
	log       ledger.Logger

	listener net.Listener
	inbox    chan ledger.Envelope
	commands chan ledger.CommandRequest

	ctx    context.Context
	cancel context.CancelFunc
}

// Listen binds addr and starts accepting connections. addresses maps
// every other peer id to its own TCP endpoint, used by Send.
func Listen(self ledger.PeerID, addr string, addresses map[ledger.PeerID]string, log ledger.Logger) (*TCPTransport, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listening on %s", addr)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &TCPTransport{
		self:      self,
		addresses: addresses,
		log:       log,
		listener:  listener,
		inbox:     make(chan ledger.Envelope, 256),
		commands:  make(chan ledger.CommandRequest, 16),
		ctx:       ctx,
		cancel:    cancel,
	}
	go t.acceptLoop()
	return t, nil
}

// acceptLoop forks a goroutine per inbound connection, mirroring
// original_source/client.py's receive_message/handle_connection split.
func (t *TCPTransport) acceptLoop() {
	for {
		conn, err := t.listener.Accept()
		if err != nil {
			select {
			case <-t.ctx.Done():
				return
			default:
				t.log.Errorf("accept failed: %v", err)
				return
			}
		}
		go t.handleConnection(conn)
	}
}

func (t *TCPTransport) handleConnection(conn net.Conn) {
	var wire wireMessage
	if err := json.NewDecoder(conn).Decode(&wire); err != nil {
		t.log.Errorf("malformed message from %s: %v", conn.RemoteAddr(), err)
		conn.Close()
		return
	}

	if wire.Type == ledger.KindCommandEnvel {
		t.handleCommand(conn, wire)
		return
	}

	defer conn.Close()
	env := ledger.Envelope{
		Type:      wire.Type,
		Sender:    wire.Sender,
		Timestamp: wire.Timestamp,
		Block:     wire.Block,
	}

	select {
	case t.inbox <- env:
	case <-time.After(250 * time.Millisecond):
		t.log.Warnf("dropping message, inbox full: %#v", env)
	case <-t.ctx.Done():
	}
}

func (t *TCPTransport) handleCommand(conn net.Conn, wire wireMessage) {
	env := ledger.CommandEnvelope{
		Type:        wire.Type,
		Command:     wire.Command,
		Transaction: wire.Transaction,
	}

	respond := func(result ledger.CommandResult) error {
		defer conn.Close()
		return json.NewEncoder(conn).Encode(result)
	}

	select {
	case t.commands <- ledger.CommandRequest{Envelope: env, Respond: respond}:
	case <-t.ctx.Done():
		conn.Close()
	}
}

// Send implements ledger.Transport.
func (t *TCPTransport) Send(ctx context.Context, peer ledger.PeerID, msg ledger.Envelope) error {
	addr, ok := t.addresses[peer]
	if !ok {
		return errors.Errorf("unknown peer %s", peer)
	}

	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "dialing peer %s at %s", peer, addr)
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(msg); err != nil {
		return errors.Wrapf(err, "sending %s to %s", msg.Type, peer)
	}
	return nil
}

// Inbox implements ledger.Transport.
func (t *TCPTransport) Inbox() <-chan ledger.Envelope { return t.inbox }

// Commands implements ledger.Transport.
func (t *TCPTransport) Commands() <-chan ledger.CommandRequest { return t.commands }

// Close implements ledger.Transport.
func (t *TCPTransport) Close() error {
	t.cancel()
	return t.listener.Close()
}
