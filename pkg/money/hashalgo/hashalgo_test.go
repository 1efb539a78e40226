// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package hashalgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnownRecognizesRegisteredAlgorithms(t *testing.T) {
	assert.True(t, Known(SHA3_256))
	assert.True(t, Known(SHA3_512))
	assert.True(t, Known(Blake2b256))
	assert.True(t, Known(Blake2b512))
}

func TestKnownRejectsZeroAndUnregisteredIDs(t *testing.T) {
	assert.False(t, Known(0))
	assert.False(t, Known(9999))
}

func TestNewReturnsAWorkingHashForEachRegisteredAlgorithm(t *testing.T) {
	for _, id := range []uint32{SHA3_256, SHA3_512, Blake2b256, Blake2b512} {
		h := New(id)
		require.NotNil(t, h)
		_, err := h.Write([]byte("probe"))
		require.NoError(t, err)
		require.NotEmpty(t, h.Sum(nil))
	}
}

func TestNewReturnsNilForUnregisteredID(t *testing.T) {
	assert.Nil(t, New(0))
}
