// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package money wires the capability and naming validators together into
// the transaction-level SelfValidator TransactionProcessor expects: full
// transaction self-validation, including capability and naming rules where
// applicable.
package money

import (
	"github.com/monetary-system/msnode/pkg/core/transactions"
	"github.com/monetary-system/msnode/pkg/money/capability"
	"github.com/monetary-system/msnode/pkg/money/currency"
	"github.com/monetary-system/msnode/pkg/money/naming"
)

// IssuanceNaming is provided alongside an IssuanceAttachment when a
// transaction publishes name/code/description for a new currency; it is
// not part of transactions.IssuanceAttachment because naming is only
// relevant at issuance time, not on every Monetary System transaction.
type IssuanceNaming struct {
	Name        string
	Code        string
	Description string
}

// NamingLookup lets the caller attach naming fields to an issuance
// transaction id for validation, since transactions.Transaction itself
// only models the fields §4.1 needs.
type NamingLookup func(txID uint64) (IssuanceNaming, bool)

// Validator is the TransactionProcessor.SelfValidator implementation for
// Monetary System transactions.
type Validator struct {
	CapabilityCtx capability.Context
	Registry      currency.Registry
	NameCfg       naming.Validator
	LookupNaming  NamingLookup
}

// NewValidator builds a Validator bound to the given capability context,
// currency registry, and naming validator.
func NewValidator(ctx capability.Context, registry currency.Registry, nameValidator *naming.Validator, lookup NamingLookup) *Validator {
	return &Validator{
		CapabilityCtx: ctx,
		Registry:      registry,
		NameCfg:       *nameValidator,
		LookupNaming:  lookup,
	}
}

// Validate runs capability validation for any transaction that carries a
// currency.Currency-typed attachment, and naming validation additionally
// for issuances. Transactions outside the Monetary System's scope (no
// recognized attachment) pass through untouched — this subsystem does not
// specify the full transaction type registry.
func (v *Validator) Validate(tx *transactions.Transaction) error {
	att, ok := tx.Attachment.(transactions.IssuanceAttachment)
	if !ok {
		return v.validateNonIssuance(tx)
	}

	if err := capability.Validate(v.CapabilityCtx, att.Type, nil, tx); err != nil {
		return err
	}

	if v.LookupNaming == nil {
		return nil
	}
	if n, ok := v.LookupNaming(tx.ID); ok {
		return v.NameCfg.Validate(n.Name, n.Code, n.Description)
	}
	return nil
}

func (v *Validator) validateNonIssuance(tx *transactions.Transaction) error {
	switch tx.Subtype {
	case transactions.Transfer, transactions.ReserveIncrease, transactions.ReserveClaim,
		transactions.Minting, transactions.PublishOffer,
		transactions.ExchangeOffer, transactions.ExchangeBuy, transactions.ExchangeSell:
		// These reference an existing currency by id; resolve it and run
		// capability validation against its stored type bitmask.
		cur, err := v.currencyFor(tx)
		if err != nil {
			return err
		}
		if cur == nil {
			return nil
		}
		return capability.Validate(v.CapabilityCtx, cur.Type, cur, tx)
	default:
		return nil
	}
}

func (v *Validator) currencyFor(tx *transactions.Transaction) (*currency.Currency, error) {
	if v.Registry == nil {
		return nil, nil
	}

	var id uint64
	switch att := tx.Attachment.(type) {
	case transactions.TransferAttachment:
		id = att.CurrencyID
	case transactions.ReserveIncreaseAttachment:
		id = att.CurrencyID
	case transactions.ReserveClaimAttachment:
		id = att.CurrencyID
	case transactions.MintingAttachment:
		id = att.CurrencyID
	case transactions.PublishOfferAttachment:
		id = att.CurrencyID
	default:
		return nil, nil
	}

	return v.Registry.ByID(id)
}
