// Package config loads the static cluster configuration spec §6 requires
// at startup: the listening endpoint of every peer and the initial balance
// table. A process's own peer id is not part of the file; ledgerd takes it
// from its -id flag. None of this is derivable from the protocol itself —
// it is seeded once, outside the core.
package config

import (
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ledgermesh/ledgermesh/pkg/ledger"
	"github.com/ledgermesh/ledgermesh/pkg/ledger/chain"
)

// PeerAddress is a host:port TCP endpoint.
type PeerAddress string

// Cluster is the static deployment description: every peer's id,
// listening address, and the shared initial balance table.
type Cluster struct {
	Peers            map[ledger.PeerID]PeerAddress `yaml:"peers"`
	InitialBalances  map[chain.AccountID]chain.Amount `yaml:"initial_balances"`
}

// Load reads a Cluster from a YAML file at path.
func Load(path string) (*Cluster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading cluster config %s", path)
	}
	var cluster Cluster
	if err := yaml.Unmarshal(data, &cluster); err != nil {
		return nil, errors.Wrapf(err, "parsing cluster config %s", path)
	}
	if len(cluster.Peers) == 0 {
		return nil, errors.New("cluster config has no peers")
	}
	return &cluster, nil
}

// OthersOf returns every peer id other than self, in a stable order.
func (c *Cluster) OthersOf(self ledger.PeerID) []ledger.PeerID {
	var others []ledger.PeerID
	for id := range c.Peers {
		if id != self {
			others = append(others, id)
		}
	}
	sort.Slice(others, func(i, j int) bool { return others[i] < others[j] })
	return others
}

// Default returns the reference three-peer deployment named in spec §2:
// accounts/peers {A, B, C}, each seeded at 10 units, listening on
// successive localhost ports.
func Default() *Cluster {
	return &Cluster{
		Peers: map[ledger.PeerID]PeerAddress{
			"A": "127.0.0.1:6000",
			"B": "127.0.0.1:6001",
			"C": "127.0.0.1:6002",
		},
		InitialBalances: map[chain.AccountID]chain.Amount{
			"A": 10,
			"B": 10,
			"C": 10,
		},
	}
}
