// Package cliclient is the thin client side of the COMMAND envelope
// protocol spec §6 describes: it dials a peer's TCP listener, writes one
// COMMAND envelope, and decodes the synchronous CommandResult response.
// It plays the role original_source/master.py's inline socket calls play,
// factored out so both the ledgerctl CLI and its tests can reuse it.
package cliclient

import (
	"encoding/json"
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/ledgermesh/ledgermesh/pkg/ledger"
	"github.com/ledgermesh/ledgermesh/pkg/ledger/chain"
)

const dialTimeout = 2 * time.Second

// Send dials addr, sends a COMMAND envelope, and returns the peer's
// response.
func Send(addr string, command ledger.CommandName, txn *chain.Transaction) (ledger.CommandResult, error) {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return ledger.CommandResult{}, errors.Wrapf(err, "dialing %s", addr)
	}
	defer conn.Close()

	envelope := ledger.CommandEnvelope{
		Type:        ledger.KindCommandEnvel,
		Command:     command,
		Transaction: txn,
	}
	if err := json.NewEncoder(conn).Encode(envelope); err != nil {
		return ledger.CommandResult{}, errors.Wrapf(err, "sending command to %s", addr)
	}

	var result ledger.CommandResult
	if err := json.NewDecoder(conn).Decode(&result); err != nil {
		return ledger.CommandResult{}, errors.Wrapf(err, "reading response from %s", addr)
	}
	return result, nil
}
