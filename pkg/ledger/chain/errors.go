package chain

import "github.com/pkg/errors"

var (
	// ErrInsufficientFunds is raised only by the originator during its
	// own commit (spec §7). It never reaches a remote peer: remote
	// peers apply BLOCK_UPDATE unconditionally.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrChainMismatch signals that a BLOCK_UPDATE failed its index or
	// previous-hash check against the local chain, or that its hash does
	// not match its contents. Per spec §7 this
	// must not occur under the protocol; observing it is a fatal
	// invariant violation, not a recoverable error.
	ErrChainMismatch = errors.New("chain mismatch applying remote block")
)
