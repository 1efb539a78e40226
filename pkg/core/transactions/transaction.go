// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package transactions defines the Transaction data model consumed by the
// mempool and its validators, and its canonical binary encoding. The
// marshal/unmarshal shape (bytes.Buffer + binary.Write/Read, an Equals
// method) follows the teacher's pkg/core/data/transactions/output.go idiom;
// the fields themselves are transparent account/amount/fee, not the
// teacher's confidential-output commitments, since amount and fee here are
// plain integer quanta rather than Pedersen commitments — see DESIGN.md for
// that divergence.
package transactions

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// Subtype discriminates the Monetary System transaction subtypes the
// capability validator dispatches on.
type Subtype byte

const (
	Issuance Subtype = iota
	Transfer
	ReserveIncrease
	ReserveClaim
	Minting
	ExchangeOffer
	ExchangeBuy
	ExchangeSell
	PublishOffer
	Other
)

func (s Subtype) IsExchange() bool {
	return s == ExchangeOffer || s == ExchangeBuy || s == ExchangeSell
}

// IssuanceAttachment describes a currency-issuance transaction.
type IssuanceAttachment struct {
	CurrencyID     uint64
	Type           uint32
	IssuanceHeight uint64
	CurrentSupply  uint64
	// MinDifficulty/MaxDifficulty/Algorithm are only meaningful when
	// MINTABLE is set; zero otherwise.
	MinDifficulty uint64
	MaxDifficulty uint64
	Algorithm     uint32
}

// TransferAttachment describes a currency transfer.
type TransferAttachment struct {
	CurrencyID uint64
	Units      uint64
}

// ReserveIncreaseAttachment describes a reserve contribution.
type ReserveIncreaseAttachment struct {
	CurrencyID uint64
	Amount     uint64
}

// ReserveClaimAttachment describes a reserve redemption.
type ReserveClaimAttachment struct {
	CurrencyID uint64
	Units      uint64
}

// MintingAttachment describes a proof-of-work mint.
type MintingAttachment struct {
	CurrencyID uint64
	Nonce      uint64
	Units      uint64
}

// PublishOfferAttachment describes an exchange-offer publication.
type PublishOfferAttachment struct {
	CurrencyID uint64
}

// Attachment is the tagged payload describing the transaction's type.
// Concrete types above satisfy it; Other-typed transactions carry nil.
type Attachment interface {
	subtype() Subtype
}

func (IssuanceAttachment) subtype() Subtype        { return Issuance }
func (TransferAttachment) subtype() Subtype        { return Transfer }
func (ReserveIncreaseAttachment) subtype() Subtype { return ReserveIncrease }
func (ReserveClaimAttachment) subtype() Subtype    { return ReserveClaim }
func (MintingAttachment) subtype() Subtype         { return Minting }
func (PublishOfferAttachment) subtype() Subtype    { return PublishOffer }

// Transaction is the unconfirmed transaction as consumed by the core; full
// wire encoding beyond what this subsystem needs is external.
type Transaction struct {
	ID          uint64
	SenderID    uint64
	RecipientID uint64
	Amount      uint64
	Fee         uint64
	Timestamp   int64
	DeadlineMin int64 // minutes
	Version     byte
	ECBlockHeight uint64
	ECBlockID     uint64
	Attachment  Attachment
	Subtype     Subtype
	Signature   []byte
	Bytes       []byte
}

// Expiration returns timestamp + deadline*60.
func (t *Transaction) Expiration() int64 {
	return t.Timestamp + t.DeadlineMin*60
}

// HasECBlock reports whether the EC-block fields are present, true for
// version >= 1.
func (t *Transaction) HasECBlock() bool {
	return t.Version >= 1
}

// Equals reports equality of ID and the encoded fields; Attachment, Subtype
// and Bytes are not compared.
func (t *Transaction) Equals(o *Transaction) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.ID == o.ID &&
		t.SenderID == o.SenderID &&
		t.RecipientID == o.RecipientID &&
		t.Amount == o.Amount &&
		t.Fee == o.Fee &&
		t.Timestamp == o.Timestamp &&
		t.DeadlineMin == o.DeadlineMin &&
		t.Version == o.Version &&
		t.ECBlockHeight == o.ECBlockHeight &&
		t.ECBlockID == o.ECBlockID &&
		bytes.Equal(t.Signature, o.Signature)
}

// Marshal writes the canonical encoding of t to w. Id is not part of the
// encoding: it is derived from the encoded bytes by the caller.
func Marshal(w *bytes.Buffer, t *Transaction) error {
	if err := binary.Write(w, binary.BigEndian, t.SenderID); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, t.RecipientID); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, t.Amount); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, t.Fee); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, t.Timestamp); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, t.DeadlineMin); err != nil {
		return err
	}
	if err := w.WriteByte(t.Version); err != nil {
		return err
	}
	if t.HasECBlock() {
		if err := binary.Write(w, binary.BigEndian, t.ECBlockHeight); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, t.ECBlockID); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(t.Signature))); err != nil {
		return err
	}
	if _, err := w.Write(t.Signature); err != nil {
		return err
	}
	return nil
}

// Unmarshal parses a Transaction from r in the format written by Marshal.
// Attachment and Subtype are not part of the canonical wire encoding this
// subsystem reproduces and must be set by the caller from the parsed
// type-specific payload.
func Unmarshal(r *bytes.Reader) (*Transaction, error) {
	t := &Transaction{}
	if err := binary.Read(r, binary.BigEndian, &t.SenderID); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &t.RecipientID); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &t.Amount); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &t.Fee); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &t.Timestamp); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &t.DeadlineMin); err != nil {
		return nil, err
	}
	version, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	t.Version = version
	if t.HasECBlock() {
		if err := binary.Read(r, binary.BigEndian, &t.ECBlockHeight); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &t.ECBlockID); err != nil {
			return nil, err
		}
	}
	var sigLen uint32
	if err := binary.Read(r, binary.BigEndian, &sigLen); err != nil {
		return nil, err
	}
	if sigLen > 0 {
		t.Signature = make([]byte, sigLen)
		if _, err := r.Read(t.Signature); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ErrShortBuffer is a sentinel for truncated input, distinct from
// io.ErrUnexpectedEOF. Unmarshal returns the underlying io error itself, and
// no code in this module returns ErrShortBuffer.
var ErrShortBuffer = errors.New("transactions: short buffer")
