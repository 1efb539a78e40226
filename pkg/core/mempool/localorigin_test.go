// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package mempool

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/monetary-system/msnode/pkg/core/transactions"
)

func TestLocalOriginTrackerPutContainsRemove(t *testing.T) {
	tr := NewLocalOriginTracker()
	tx := &transactions.Transaction{ID: 7}

	assert.False(t, tr.Contains(7))
	tr.Put(tx)
	assert.True(t, tr.Contains(7))
	assert.Equal(t, 1, tr.Len())

	tr.Remove(7)
	assert.False(t, tr.Contains(7))
	assert.Equal(t, 0, tr.Len())
}

func TestLocalOriginTrackerSnapshotIsACopy(t *testing.T) {
	tr := NewLocalOriginTracker()
	tr.Put(&transactions.Transaction{ID: 1})
	tr.Put(&transactions.Transaction{ID: 2})

	snap := tr.Snapshot()
	assert.Len(t, snap, 2)

	tr.Remove(1)
	assert.Len(t, snap, 2, "snapshot must not reflect later mutation")
	assert.Equal(t, 1, tr.Len())
}

func TestLocalOriginTrackerRemoveMissingIsNoop(t *testing.T) {
	tr := NewLocalOriginTracker()
	tr.Remove(999)
	assert.Equal(t, 0, tr.Len())
}
