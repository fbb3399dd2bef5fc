package ledger

import "github.com/ledgermesh/ledgermesh/pkg/ledger/chain"

// MessageKind enumerates the protocol message types exchanged between
// peers, per spec §4.4/§6.
type MessageKind string

const (
	KindRequest      MessageKind = "REQUEST"
	KindReply        MessageKind = "REPLY"
	KindRelease      MessageKind = "RELEASE"
	KindBlockUpdate  MessageKind = "BLOCK_UPDATE"
	KindAck          MessageKind = "ACK"
	KindCommandEnvel MessageKind = "COMMAND"
)

// Envelope is the wire message exchanged by the transport. Every protocol
// message carries the sender's current Lamport clock value; BLOCK_UPDATE
// additionally carries the replicated Block.
type Envelope struct {
	Type      MessageKind  `json:"type"`
	Sender    PeerID       `json:"sender"`
	Timestamp uint64       `json:"timestamp,omitempty"`
	Block     *chain.Block `json:"block,omitempty"`
}

// CommandName enumerates the operator commands consumed from the CLI
// collaborator, per spec §6.
type CommandName string

const (
	CommandTransfer     CommandName = "transfer"
	CommandBalance      CommandName = "balance"
	CommandBalanceTable CommandName = "balance_table"
	CommandBlockchain   CommandName = "blockchain"
)

// CommandEnvelope is the COMMAND message a peer receives from the CLI
// collaborator.
type CommandEnvelope struct {
	Type        MessageKind        `json:"type"`
	Command     CommandName        `json:"command"`
	Transaction *chain.Transaction `json:"transaction,omitempty"`
}

// CommandResult is the response a peer writes back on a command
// connection.
type CommandResult struct {
	Success bool                              `json:"success"`
	Error   string                            `json:"error,omitempty"`
	Balance map[chain.AccountID]chain.Amount  `json:"balance,omitempty"`
	Chain   []chain.Block                     `json:"chain,omitempty"`
}
