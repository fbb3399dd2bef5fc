package chain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// GenesisPreviousHash is the previous_hash sentinel of the genesis block.
const GenesisPreviousHash = "0"

// Hash is a hex-encoded SHA-256 digest.
type Hash string

// Block is one entry in the hash-linked ledger.
//
// Hash is computed over the canonical JSON encoding of the other four
// fields: compact JSON with every object's keys, nested ones included,
// in sorted order (see computeHash).
type Block struct {
	Index        uint64      `json:"index"`
	PreviousHash Hash        `json:"previous_hash"`
	Transaction  Transaction `json:"transaction"`
	Timestamp    int64       `json:"timestamp"`
	Hash         Hash        `json:"hash"`
}

// hashableBlock is Block without the Hash field, the payload that gets
// digested to produce it.
type hashableBlock struct {
	Index        uint64      `json:"index"`
	PreviousHash Hash        `json:"previous_hash"`
	Transaction  Transaction `json:"transaction"`
	Timestamp    int64       `json:"timestamp"`
}

func computeHash(index uint64, previousHash Hash, txn Transaction, timestamp int64) (Hash, error) {
	payload := hashableBlock{
		Index:        index,
		PreviousHash: previousHash,
		Transaction:  txn,
		Timestamp:    timestamp,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	// Re-encode through a generic value: encoding/json writes map keys in
	// sorted order, and UseNumber keeps integers exactly as written.
	var generic interface{}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	if err := decoder.Decode(&generic); err != nil {
		return "", err
	}
	encoded, err = json.Marshal(generic)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(encoded)
	return Hash(hex.EncodeToString(sum[:])), nil
}

// newBlock builds a block at index, chained from previousHash, and
// computes its digest. It does not validate balances; that is the
// caller's responsibility (spec §4.3: Append does not check or mutate
// balances).
func newBlock(index uint64, previousHash Hash, txn Transaction, timestamp int64) (Block, error) {
	h, err := computeHash(index, previousHash, txn, timestamp)
	if err != nil {
		return Block{}, err
	}
	return Block{
		Index:        index,
		PreviousHash: previousHash,
		Transaction:  txn,
		Timestamp:    timestamp,
		Hash:         h,
	}, nil
}

// NewGenesisBlock builds index-0 with the sentinel transaction. timestamp
// is fixed by the caller (the ledger constructor uses a single value,
// shared identically across all peers at startup) rather than each peer's
// own wall clock, so genesis hashes are identical cluster-wide — this
// resolves the open question in spec §9/§3.
func NewGenesisBlock(timestamp int64) (Block, error) {
	return newBlock(0, GenesisPreviousHash, genesisTransaction(), timestamp)
}

// Verify recomputes b's hash and reports whether it matches b.Hash.
func (b Block) Verify() (bool, error) {
	h, err := computeHash(b.Index, b.PreviousHash, b.Transaction, b.Timestamp)
	if err != nil {
		return false, err
	}
	return h == b.Hash, nil
}
