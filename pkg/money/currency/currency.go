// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package currency defines the Monetary System currency data model and its
// capability-flag bitmask.
package currency

// Flag is a single bit of a currency's type bitmask.
type Flag uint32

// The closed set of six capability flags. Iteration order in the
// validator's dispatch table follows this declaration order, which is
// fixed by the enumeration above.
const (
	Exchangeable Flag = 0x01
	Controllable Flag = 0x02
	Reservable   Flag = 0x04
	Claimable    Flag = 0x08
	Mintable     Flag = 0x10
	Shuffleable  Flag = 0x20
)

// OrderedFlags lists the six flags in the fixed dispatch order.
var OrderedFlags = [...]Flag{
	Exchangeable, Controllable, Reservable, Claimable, Mintable, Shuffleable,
}

func (f Flag) String() string {
	switch f {
	case Exchangeable:
		return "EXCHANGEABLE"
	case Controllable:
		return "CONTROLLABLE"
	case Reservable:
		return "RESERVABLE"
	case Claimable:
		return "CLAIMABLE"
	case Mintable:
		return "MINTABLE"
	case Shuffleable:
		return "SHUFFLEABLE"
	default:
		return "UNKNOWN"
	}
}

// Currency is the on-chain Monetary System currency record as consumed by
// the validator.
type Currency struct {
	ID             uint64
	AccountID      uint64
	Name           string
	Code           string
	Description    string
	Type           uint32
	CurrentSupply  uint64
	IssuanceHeight uint64
}

// IsActive reports whether the currency has reached its issuance height,
// i.e. is_active ⇔ current height ≥ issuance_height.
func (c *Currency) IsActive(currentHeight uint64) bool {
	return currentHeight >= c.IssuanceHeight
}

// Has reports whether flag f is set in the currency's type bitmask.
func (c *Currency) Has(f Flag) bool {
	return uint32(f)&c.Type != 0
}

// Validators computes the set of capability flags set in typeBits.
func Validators(typeBits uint32) map[Flag]bool {
	out := make(map[Flag]bool, len(OrderedFlags))
	for _, f := range OrderedFlags {
		if uint32(f)&typeBits != 0 {
			out[f] = true
		}
	}
	return out
}

// Registry is the read-only view into active currencies the naming and
// capability validators consult for uniqueness and activation checks. No
// concrete implementation lives in this module: it is supplied by the
// out-of-scope ledger applier (cmd/msnoded wires an empty stand-in), and
// from this package's perspective it is read-only.
type Registry interface {
	// ByID looks up a currency by id. Returns (nil, nil) if not found.
	ByID(id uint64) (*Currency, error)
	// ByLowercaseName looks up an active currency whose lowercase name
	// matches name. Returns (nil, nil) if not found.
	ByLowercaseName(name string) (*Currency, error)
	// ByCode looks up an active currency by its (uppercase) code. Returns
	// (nil, nil) if not found.
	ByCode(code string) (*Currency, error)
}
