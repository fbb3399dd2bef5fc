// Command ledgerd runs a single peer of the replicated ledger: it loads
// the static cluster configuration, brings up the TCP transport, and
// starts the protocol engine. It is the process wrapper around package
// ledger; the protocol itself is out of scope for this file.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ledgermesh/ledgermesh/internal/config"
	"github.com/ledgermesh/ledgermesh/internal/logging"
	"github.com/ledgermesh/ledgermesh/internal/transport"
	"github.com/ledgermesh/ledgermesh/pkg/ledger"
	"github.com/ledgermesh/ledgermesh/pkg/ledger/chain"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML cluster config (falls back to the reference A/B/C deployment)")
		peerID     = flag.String("id", "", "this process's peer id, must be a key in the cluster config")
	)
	flag.Parse()

	if *peerID == "" {
		fmt.Fprintln(os.Stderr, "ledgerd: -id is required")
		os.Exit(2)
	}

	cluster := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ledgerd: %v\n", err)
			os.Exit(1)
		}
		cluster = loaded
	}

	self := ledger.PeerID(*peerID)
	addr, ok := cluster.Peers[self]
	if !ok {
		fmt.Fprintf(os.Stderr, "ledgerd: peer %s not present in cluster config\n", self)
		os.Exit(2)
	}

	log := logging.New(*peerID)

	others := cluster.OthersOf(self)
	addresses := make(map[ledger.PeerID]string, len(others))
	for _, id := range others {
		addresses[id] = string(cluster.Peers[id])
	}

	trans, err := transport.Listen(self, string(addr), addresses, log)
	if err != nil {
		log.Fatalf("failed starting transport: %v", err)
	}

	genesisTimestamp := int64(0) // fixed across the cluster, see chain.NewGenesisBlock.
	ledgerState, err := chain.New(genesisTimestamp, cluster.InitialBalances)
	if err != nil {
		log.Fatalf("failed building ledger: %v", err)
	}

	peer := ledger.NewPeer(self, others, ledgerState, trans, log)
	log.Infof("peer %s listening on %s, peers %v", self, addr, others)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Infof("shutting down")
	peer.Stop()
	trans.Close()
}
