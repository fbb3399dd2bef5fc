package ledger

import "context"

// CommandRequest couples an inbound CommandEnvelope with a function to
// write the synchronous response back on the connection it arrived on.
// Unlike protocol messages, commands are request/response: the CLI
// collaborator blocks on the reply (spec §6/original_source/master.py).
type CommandRequest struct {
	Envelope CommandEnvelope
	Respond  func(CommandResult) error
}

// Transport is the point-to-point message delivery collaborator consumed
// by the protocol engine (spec §4.5). Implementations must deliver
// messages reliably and in order per destination; arbitrary delay is
// permitted, loss is not, in the regime this protocol is specified for.
type Transport interface {
	// Send delivers msg to peer. Best-effort and reliable: failures are
	// reported to the caller (the protocol engine logs them), but must
	// not themselves mutate protocol state (spec §7 TransportFailure).
	Send(ctx context.Context, peer PeerID, msg Envelope) error

	// Inbox yields protocol messages as they arrive, one per arriving
	// message, dispatched on a concurrent worker per spec §4.5.
	Inbox() <-chan Envelope

	// Commands yields COMMAND envelopes arriving from the CLI
	// collaborator, paired with a way to respond synchronously.
	Commands() <-chan CommandRequest

	// Close shuts the transport down for sending and receiving.
	Close() error
}
