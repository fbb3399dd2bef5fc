// Package chain holds the replicated state the mutex and replication
// protocol in package ledger protects: the hash-chained block log and the
// balance table over a fixed set of accounts.
package chain

// AccountID identifies an account in the fixed set known to every peer at
// startup.
type AccountID string

// Amount is a non-negative integer unit of value.
type Amount uint64

// Transaction is a single transfer of Amount units from Sender to
// Receiver. The genesis block carries the sentinel transaction
// {sender: "None", receiver: "None", amount: 0}.
type Transaction struct {
	Sender   AccountID `json:"sender"`
	Receiver AccountID `json:"receiver"`
	Amount   Amount    `json:"amount"`
}

// NoneAccount is the sentinel sender/receiver used by the genesis
// transaction.
const NoneAccount AccountID = "None"

func genesisTransaction() Transaction {
	return Transaction{Sender: NoneAccount, Receiver: NoneAccount, Amount: 0}
}
