package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/ledgermesh/ledgermesh/pkg/ledger/chain"
)

// DefaultWaitTimeout bounds each of the three SubmitTransfer suspension
// points. The reference protocol assumes all peers are live and never
// times out (spec §5/§9); this implementation adds a timeout per the
// spec's explicit MAY, since an unbounded wait with no recovery path is a
// worse failure mode than a loud, fatal one.
const DefaultWaitTimeout = 10 * time.Second

// heartbeatInterval is how often the peer's condition variable is woken
// up so that waiters can re-check their deadline even with no state
// change to signal on.
const heartbeatInterval = 20 * time.Millisecond

// TransferResult is what SubmitTransfer reports back to the command
// caller: SUCCESS or FAILED per spec §4.4/§7.
type TransferResult struct {
	Success bool
	Err     error
}

// Peer is the protocol engine for a single replica: it owns the clock,
// request queue, ledger, and drives the Ricart–Agrawala-style mutex plus
// the BLOCK_UPDATE/ACK replication handshake. Grounded on the teacher's
// core.Peer — a single long-lived poll loop dispatching inbound messages
// by kind, plus a Command-shaped entry point that suspends until the
// protocol delivers a result.
type Peer struct {
	ID     PeerID
	Others []PeerID

	clock     LogicalClock
	queue     RequestQueue
	Ledger    *chain.Ledger
	transport Transport
	log       Logger
	waitFor   time.Duration

	// submitGuard serializes SubmitTransfer calls issued locally at this
	// peer: the CLI collaborator issues one transfer command at a time,
	// and the mutex protocol itself only ever tracks one outstanding
	// request per peer (spec §4.2).
	submitGuard sync.Mutex

	// ledgerGuard serializes SubmitTransfer's ledger mutations (steps 5-6,
	// balance check and append; step 8, apply) with the BLOCK_UPDATE
	// handler, which also appends and mutates the balance table (spec
	// §5). It is held only across non-suspending operations, never
	// across a wait: it is released during step 7's wait for acks, so
	// steps 5-8 are not one atomic section. Inbound REQUEST/REPLY/RELEASE
	// processing never takes it.
	ledgerGuard sync.Mutex

	// mu/cond guard replies and ackCount, the two shared counters the
	// submitter task suspends on, plus wake waiters blocked on the
	// queue head condition whenever the queue changes.
	mu       sync.Mutex
	cond     *sync.Cond
	replies  map[PeerID]struct{}
	ackCount int

	ctx    context.Context
	cancel context.CancelFunc
}

// NewPeer constructs a peer and starts its poll loop and heartbeat. The
// caller owns transport and ledger lifecycle beyond Stop().
func NewPeer(id PeerID, others []PeerID, ledger *chain.Ledger, transport Transport, log Logger) *Peer {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Peer{
		ID:        id,
		Others:    others,
		clock:     NewLogicalClock(),
		queue:     NewRequestQueue(),
		Ledger:    ledger,
		transport: transport,
		log:       log,
		waitFor:   DefaultWaitTimeout,
		replies:   make(map[PeerID]struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
	p.cond = sync.NewCond(&p.mu)
	go p.poll()
	go p.heartbeat()
	return p
}

// Stop shuts the peer's poll loop and heartbeat down. It does not close
// the transport; the owner of the transport does that.
func (p *Peer) Stop() {
	p.cancel()
}

func (p *Peer) notify() {
	p.mu.Lock()
	p.cond.Broadcast()
	p.mu.Unlock()
}

// heartbeat periodically wakes every waiter blocked in waitUntil so a
// deadline can be re-checked even when nothing else changes state.
func (p *Peer) heartbeat() {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.notify()
		}
	}
}

// waitUntil blocks until condFn reports true or the deadline passes,
// returning false on timeout. condFn is evaluated with mu held.
func (p *Peer) waitUntil(condFn func() bool) bool {
	deadline := time.Now().Add(p.waitFor)
	p.mu.Lock()
	defer p.mu.Unlock()
	for !condFn() {
		if time.Now().After(deadline) {
			return false
		}
		p.cond.Wait()
	}
	return true
}

// poll is the peer's single inbound dispatch loop: one handler task is
// spawned per arriving message, per spec §4.5/§5, so no single slow
// message delays the rest.
func (p *Peer) poll() {
	for {
		select {
		case <-p.ctx.Done():
			return
		case env, ok := <-p.transport.Inbox():
			if !ok {
				return
			}
			go p.handleInbound(env)
		case cmd, ok := <-p.transport.Commands():
			if !ok {
				return
			}
			go p.handleCommand(cmd)
		}
	}
}

// handleInbound observes the clock against the message timestamp, then
// dispatches by kind, per spec §4.4.
func (p *Peer) handleInbound(env Envelope) {
	p.clock.Observe(env.Timestamp)

	switch env.Type {
	case KindRequest:
		p.queue.Insert(env.Sender, env.Timestamp)
		p.notify()
		p.send(env.Sender, Envelope{Type: KindReply, Sender: p.ID, Timestamp: p.clock.Tock()})

	case KindReply:
		p.mu.Lock()
		p.replies[env.Sender] = struct{}{}
		p.cond.Broadcast()
		p.mu.Unlock()

	case KindRelease:
		p.queue.RemoveByPeer(env.Sender)
		p.notify()

	case KindBlockUpdate:
		if env.Block == nil {
			p.log.Errorf("BLOCK_UPDATE from %s missing block", env.Sender)
			return
		}
		p.ledgerGuard.Lock()
		err := p.Ledger.ApplyRemote(*env.Block)
		if err == nil {
			p.Ledger.Balance.Debit(env.Block.Transaction.Sender, env.Block.Transaction.Amount)
			p.Ledger.Balance.Credit(env.Block.Transaction.Receiver, env.Block.Transaction.Amount)
		}
		p.ledgerGuard.Unlock()
		if err != nil {
			p.log.Fatalf("chain mismatch applying block from %s: %v", env.Sender, err)
			return
		}
		p.send(env.Sender, Envelope{Type: KindAck, Sender: p.ID, Timestamp: p.clock.Tock()})

	case KindAck:
		p.mu.Lock()
		p.ackCount++
		p.cond.Broadcast()
		p.mu.Unlock()

	default:
		p.log.Warnf("dropping malformed message from %s: unknown type %q", env.Sender, env.Type)
	}
}

// send delivers msg to peer, logging (not escalating) a TransportFailure
// per spec §7.
func (p *Peer) send(peer PeerID, msg Envelope) {
	if err := p.transport.Send(p.ctx, peer, msg); err != nil {
		p.log.Errorf("failed sending %s to %s: %v", msg.Type, peer, err)
	}
}

func (p *Peer) broadcast(msg Envelope) {
	for _, peer := range p.Others {
		p.send(peer, msg)
	}
}

// SubmitTransfer runs the full mutex-acquisition, commit, replication and
// release sequence for txn, per spec §4.4's nine steps.
func (p *Peer) SubmitTransfer(txn chain.Transaction) TransferResult {
	p.submitGuard.Lock()
	defer p.submitGuard.Unlock()

	// Step 1: enter request phase.
	t := p.clock.Tick()
	p.queue.Insert(p.ID, t)
	p.mu.Lock()
	p.replies = make(map[PeerID]struct{})
	p.ackCount = 0
	p.mu.Unlock()
	p.broadcast(Envelope{Type: KindRequest, Sender: p.ID, Timestamp: t})

	result := p.criticalSection(txn)

	// Step 9: release, regardless of the commit outcome.
	p.queue.RemoveByPeer(p.ID)
	p.mu.Lock()
	p.replies = make(map[PeerID]struct{})
	p.ackCount = 0
	p.mu.Unlock()
	p.broadcast(Envelope{Type: KindRelease, Sender: p.ID, Timestamp: p.clock.Tock()})

	return result
}

// criticalSection runs steps 2-8: waiting for mutex acquisition, then the
// balance-checked commit and replication handshake.
func (p *Peer) criticalSection(txn chain.Transaction) TransferResult {
	// Step 2: wait for quorum of replies.
	if !p.waitUntil(func() bool { return len(p.replies) >= len(p.Others) }) {
		return TransferResult{Success: false, Err: ErrWaitTimeout}
	}

	// Step 3: wait for queue head to be self.
	if !p.waitUntil(func() bool {
		head, ok := p.queue.Peek()
		return ok && head.Peer == p.ID
	}) {
		return TransferResult{Success: false, Err: ErrWaitTimeout}
	}

	// Step 4: commit guard. Steps 5-6 and step 8 each run under
	// ledgerGuard, excluding the BLOCK_UPDATE handler; the guard is not
	// held during step 7's wait. It never blocks inbound REQUEST/REPLY/
	// RELEASE processing since ledgerGuard is unrelated to those paths.
	p.ledgerGuard.Lock()

	// Step 5: balance check.
	if !p.Ledger.Balance.CanDebit(txn.Sender, txn.Amount) {
		p.ledgerGuard.Unlock()
		return TransferResult{Success: false, Err: chain.ErrInsufficientFunds}
	}

	// Step 6: local append.
	block, err := p.Ledger.Append(txn)
	if err != nil {
		p.ledgerGuard.Unlock()
		return TransferResult{Success: false, Err: err}
	}
	p.ledgerGuard.Unlock()

	// Step 7: replicate and wait for N-1 acks.
	p.broadcast(Envelope{Type: KindBlockUpdate, Sender: p.ID, Timestamp: p.clock.Tock(), Block: &block})
	if !p.waitUntil(func() bool { return p.ackCount >= len(p.Others) }) {
		return TransferResult{Success: false, Err: ErrWaitTimeout}
	}

	// Step 8: apply balance change.
	p.ledgerGuard.Lock()
	p.Ledger.Balance.Debit(txn.Sender, txn.Amount)
	p.Ledger.Balance.Credit(txn.Receiver, txn.Amount)
	p.ledgerGuard.Unlock()

	return TransferResult{Success: true}
}

// Balance returns the balance of this peer's own account; handleCommand
// wraps it in the single-entry mapping of the "balance" command (spec §6).
func (p *Peer) Balance() chain.Amount {
	return p.Ledger.Balance.Balance(chain.AccountID(p.ID))
}

// BalanceTable returns the full balance table snapshot for the
// "balance_table" command.
func (p *Peer) BalanceTable() map[chain.AccountID]chain.Amount {
	return p.Ledger.Balance.Snapshot()
}

// Blockchain returns the ordered block snapshot for the "blockchain"
// command.
func (p *Peer) Blockchain() []chain.Block {
	return p.Ledger.SnapshotChain()
}
