// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Command msctl is a node-operator diagnostic: it describes a currency's
// capability bitmask and checks which transaction subtypes it would accept,
// without touching any running node. Adapted from the teacher's
// pkg/core/transactor/commands.go one-function-per-subcommand dispatch
// idiom (there implemented as *Transactor methods invoked off an RPC
// command queue); here there is no daemon to dispatch to, so main()
// dispatches directly off os.Args.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/monetary-system/msnode/pkg/core/transactions"
	"github.com/monetary-system/msnode/pkg/money/capability"
	"github.com/monetary-system/msnode/pkg/money/currency"
	"github.com/monetary-system/msnode/pkg/money/hashalgo"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "currency":
		if len(os.Args) < 4 || os.Args[2] != "describe" {
			usage()
			os.Exit(1)
		}
		if err := describeCurrency(os.Args[3]); err != nil {
			fmt.Fprintln(os.Stderr, "msctl:", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: msctl currency describe <type-bitmask>")
}

// describeCurrency prints which of the six capability flags a type bitmask
// sets, and which transaction subtypes the capability validator would
// accept or reject when no currency record exists yet (nil currency) — a diagnostic
// for operators investigating a NotValid/NotCurrentlyValid rejection, not a
// change to validation semantics.
func describeCurrency(typeArg string) error {
	bits, err := strconv.ParseUint(typeArg, 0, 32)
	if err != nil {
		return fmt.Errorf("invalid type bitmask %q: %w", typeArg, err)
	}
	typeBits := uint32(bits)

	fmt.Printf("type = 0x%02x\n\n", typeBits)

	for _, f := range currency.OrderedFlags {
		present := uint32(f)&typeBits != 0
		fmt.Printf("  %-14s %v\n", f, present)
	}

	fmt.Println()
	fmt.Println("self-validation probe (height 0, currency not yet on ledger):")

	ctx := capability.Context{
		CurrentHeight:       0,
		MonetarySystemBlock: 0,
		ResolveAlgorithm:    hashalgo.Known,
	}

	probe := []struct {
		label string
		tx    *transactions.Transaction
	}{
		{"ISSUANCE (height 0)", &transactions.Transaction{
			Subtype:    transactions.Issuance,
			Attachment: transactions.IssuanceAttachment{Type: typeBits},
		}},
		{"TRANSFER", &transactions.Transaction{Subtype: transactions.Transfer}},
		{"RESERVE_INCREASE", &transactions.Transaction{Subtype: transactions.ReserveIncrease}},
		{"RESERVE_CLAIM", &transactions.Transaction{Subtype: transactions.ReserveClaim}},
		{"MINTING", &transactions.Transaction{Subtype: transactions.Minting}},
		{"PUBLISH_OFFER", &transactions.Transaction{Subtype: transactions.PublishOffer}},
	}

	for _, p := range probe {
		err := capability.Validate(ctx, typeBits, nil, p.tx)
		if err == nil {
			fmt.Printf("  %-20s accepted\n", p.label)
		} else {
			fmt.Printf("  %-20s rejected: %v\n", p.label, err)
		}
	}

	return nil
}
