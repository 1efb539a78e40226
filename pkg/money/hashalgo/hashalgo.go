// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package hashalgo registers the hash-function identities a MINTABLE
// currency's proof-of-work may be computed against, the "algorithm" field
// on an issuance attachment. The capability validator only needs to know
// whether an id is known at all; this package is where that id space is
// actually populated, against real hash constructors instead of a bare
// id-in-range check.
package hashalgo

import (
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Algorithm ids, assigned in the order they were added to this registry.
// Zero is deliberately unassigned so a zero-value issuance attachment
// (non-mintable currencies never populate this field) never resolves.
const (
	SHA3_256 uint32 = iota + 1
	SHA3_512
	Blake2b256
	Blake2b512
)

var constructors = map[uint32]func() hash.Hash{
	SHA3_256:   sha3.New256,
	SHA3_512:   sha3.New512,
	Blake2b256: mustBlake2b256,
	Blake2b512: mustBlake2b512,
}

func mustBlake2b256() hash.Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only errors on a bad key, and nil is always valid.
		panic(err)
	}
	return h
}

func mustBlake2b512() hash.Hash {
	h, err := blake2b.New512(nil)
	if err != nil {
		panic(err)
	}
	return h
}

// Known reports whether id names a registered hash algorithm. It has the
// shape of capability.HashAlgorithmResolver so it can be passed directly.
func Known(id uint32) bool {
	_, ok := constructors[id]
	return ok
}

// New returns a fresh hash.Hash for id, or nil if id is not registered.
func New(id uint32) hash.Hash {
	ctor, ok := constructors[id]
	if !ok {
		return nil
	}
	return ctor()
}
