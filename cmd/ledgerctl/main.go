// Command ledgerctl is the operator CLI for the replicated ledger: it
// submits transfer commands and queries balances/the chain, preserving
// the exact command surface and output shape of original_source/master.py
// while replacing its input()-loop with a proper cobra command tree.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ledgermesh/ledgermesh/internal/cliclient"
	"github.com/ledgermesh/ledgermesh/internal/config"
	"github.com/ledgermesh/ledgermesh/pkg/ledger"
	"github.com/ledgermesh/ledgermesh/pkg/ledger/chain"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "operator CLI for the replicated transfer ledger",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML cluster config (falls back to the reference A/B/C deployment)")

	root.AddCommand(transferCmd(), balanceCmd(), balanceTableCmd(), blockchainCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadCluster() *config.Cluster {
	if configPath == "" {
		return config.Default()
	}
	cluster, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ledgerctl: %v\n", err)
		os.Exit(1)
	}
	return cluster
}

func transferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <sender> <receiver> <amount>",
		Short: "submit a transfer command to the sender's peer",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			amount, err := strconv.ParseUint(args[2], 10, 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "ledgerctl: invalid amount %q: %v\n", args[2], err)
				os.Exit(2)
			}

			cluster := loadCluster()
			sender := ledger.PeerID(args[0])
			addr, ok := cluster.Peers[sender]
			if !ok {
				fmt.Fprintf(os.Stderr, "ledgerctl: unknown sender %s\n", sender)
				os.Exit(2)
			}

			txn := &chain.Transaction{
				Sender:   chain.AccountID(args[0]),
				Receiver: chain.AccountID(args[1]),
				Amount:   chain.Amount(amount),
			}
			result, err := cliclient.Send(string(addr), ledger.CommandTransfer, txn)
			if err != nil {
				fmt.Fprintf(os.Stderr, "ledgerctl: %v\n", err)
				os.Exit(1)
			}
			if result.Success {
				fmt.Printf("SUCCESS: %s -> %s %d\n", args[0], args[1], amount)
			} else {
				fmt.Printf("FAILED: %s\n", result.Error)
			}
		},
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "aggregate each peer's own balance, one query per peer",
		Run: func(cmd *cobra.Command, args []string) {
			cluster := loadCluster()
			fmt.Println("Balances:")
			for id, addr := range cluster.Peers {
				result, err := cliclient.Send(string(addr), ledger.CommandBalance, nil)
				if err != nil {
					fmt.Fprintf(os.Stderr, "ledgerctl: failed querying %s: %v\n", id, err)
					continue
				}
				fmt.Printf("%s: $%d\n", id, result.Balance[chain.AccountID(id)])
			}
		},
	}
}

func balanceTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance_table",
		Short: "print every peer's full balance table",
		Run: func(cmd *cobra.Command, args []string) {
			cluster := loadCluster()
			fmt.Println("Balance Tables:")
			for id, addr := range cluster.Peers {
				result, err := cliclient.Send(string(addr), ledger.CommandBalanceTable, nil)
				if err != nil {
					fmt.Fprintf(os.Stderr, "ledgerctl: failed querying %s: %v\n", id, err)
					continue
				}
				fmt.Printf("Client %s: %v\n", id, result.Balance)
			}
		},
	}
}

func blockchainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blockchain",
		Short: "print every peer's chain",
		Run: func(cmd *cobra.Command, args []string) {
			cluster := loadCluster()
			fmt.Println("Blockchains:")
			for id, addr := range cluster.Peers {
				result, err := cliclient.Send(string(addr), ledger.CommandBlockchain, nil)
				if err != nil {
					fmt.Fprintf(os.Stderr, "ledgerctl: failed querying %s: %v\n", id, err)
					continue
				}
				fmt.Printf("Client %s:\n", id)
				for _, block := range result.Chain {
					fmt.Printf("  Block %d: %+v (Hash: %s)\n", block.Index, block.Transaction, block.Hash)
				}
			}
		},
	}
}
