package ledger

import "github.com/ledgermesh/ledgermesh/pkg/ledger/chain"

// handleCommand dispatches a COMMAND envelope from the CLI collaborator,
// per spec §6. It runs on its own goroutine (spawned by poll), so a
// blocking "transfer" command never stalls inbound protocol message
// processing.
func (p *Peer) handleCommand(req CommandRequest) {
	var result CommandResult
	switch req.Envelope.Command {
	case CommandTransfer:
		if req.Envelope.Transaction == nil {
			result = CommandResult{Success: false, Error: "transfer command missing transaction"}
			break
		}
		outcome := p.SubmitTransfer(*req.Envelope.Transaction)
		if outcome.Success {
			result = CommandResult{Success: true}
		} else {
			result = CommandResult{Success: false, Error: outcome.Err.Error()}
		}

	case CommandBalance:
		result = CommandResult{
			Success: true,
			Balance: map[chain.AccountID]chain.Amount{chain.AccountID(p.ID): p.Balance()},
		}

	case CommandBalanceTable:
		result = CommandResult{Success: true, Balance: p.BalanceTable()}

	case CommandBlockchain:
		result = CommandResult{Success: true, Chain: p.Blockchain()}

	default:
		result = CommandResult{Success: false, Error: "unknown command"}
	}

	if req.Respond != nil {
		if err := req.Respond(result); err != nil {
			p.log.Errorf("failed responding to command %s: %v", req.Envelope.Command, err)
		}
	}
}
