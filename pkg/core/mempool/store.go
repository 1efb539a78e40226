// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package mempool implements the persistent keyed set of unconfirmed
// transactions with expiry, on github.com/mattn/go-sqlite3 via
// database/sql, with a single-table schema:
//
//	unconfirmed_transaction(id PK, expiration, transaction_bytes)
//
// The teacher's pool abstraction (pkg/core/mempool/mempool.go's Pool
// interface backing an in-memory HashMap) is generalized here into a
// durable store, since the mempool must survive restart — on load, each
// transaction is reparsed — rather than being purely in-process state.
package mempool

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/monetary-system/msnode/pkg/core/database/utils"
	"github.com/monetary-system/msnode/pkg/errors"
	"github.com/monetary-system/msnode/pkg/log"
)

var logStore = log.WithPrefix("mempool.store")

const schema = `
CREATE TABLE IF NOT EXISTS unconfirmed_transaction (
	id                INTEGER PRIMARY KEY,
	expiration        INTEGER NOT NULL,
	transaction_bytes BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_unconfirmed_transaction_expiration
	ON unconfirmed_transaction(expiration);
`

// Entry is one row of the mempool table.
type Entry struct {
	ID         uint64
	Expiration int64
	Bytes      []byte
}

// Store is the persistent mempool.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the sqlite3-backed mempool at path and
// ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.StorageFailure(err, "open mempool db")
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.StorageFailure(err, "create mempool schema")
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Begin starts a storage transaction. Callers use it under the blockchain
// lock in a begin...commit/rollback block, mirrored in every
// txprocessor.Processor critical section.
func (s *Store) Begin() (*sql.Tx, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, errors.StorageFailure(err, "begin mempool tx")
	}
	return tx, nil
}

// Insert upserts e by id. Must be called inside a storage transaction.
func (s *Store) Insert(tx *sql.Tx, e Entry) error {
	_, err := tx.Exec(
		`INSERT INTO unconfirmed_transaction(id, expiration, transaction_bytes)
		 VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET expiration=excluded.expiration, transaction_bytes=excluded.transaction_bytes`,
		int64(e.ID), e.Expiration, e.Bytes,
	)
	if err != nil {
		return errors.StorageFailure(err, "insert unconfirmed transaction")
	}
	return nil
}

// Delete removes the row with the given id, inside a storage transaction.
func (s *Store) Delete(tx *sql.Tx, id uint64) error {
	if _, err := tx.Exec(`DELETE FROM unconfirmed_transaction WHERE id = ?`, int64(id)); err != nil {
		return errors.StorageFailure(err, "delete unconfirmed transaction")
	}
	return nil
}

// Get reads a single entry. Read-only; does not require the blockchain
// lock.
func (s *Store) Get(id uint64) (*Entry, error) {
	row := s.db.QueryRow(`SELECT id, expiration, transaction_bytes FROM unconfirmed_transaction WHERE id = ?`, int64(id))

	var rawID int64
	e := Entry{}
	if err := row.Scan(&rawID, &e.Expiration, &e.Bytes); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.StorageFailure(err, "get unconfirmed transaction")
	}
	e.ID = uint64(rawID)
	return &e, nil
}

// Contains reports whether id is present without fetching the row bytes.
func (s *Store) Contains(id uint64) (bool, error) {
	var exists int
	err := s.db.QueryRow(`SELECT 1 FROM unconfirmed_transaction WHERE id = ? LIMIT 1`, int64(id)).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.StorageFailure(err, "contains unconfirmed transaction")
	}
	return true, nil
}

// Len returns the current row count.
func (s *Store) Len() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM unconfirmed_transaction`).Scan(&n); err != nil {
		return 0, errors.StorageFailure(err, "count unconfirmed transactions")
	}
	return n, nil
}

// IterAll opens a finite, non-restartable, resource-holding cursor over
// every row. Callers must Close the Cursor.
func (s *Store) IterAll() (*Cursor, error) {
	rows, err := s.db.Query(`SELECT id, expiration, transaction_bytes FROM unconfirmed_transaction`)
	if err != nil {
		return nil, errors.StorageFailure(err, "iterate unconfirmed transactions")
	}
	return &Cursor{rows: rows}, nil
}

// Cursor is the scoped, resource-holding iteration handle returned by
// IterAll.
type Cursor struct {
	rows *sql.Rows
}

// Next advances the cursor and reports whether a row is available.
func (c *Cursor) Next() bool {
	return c.rows.Next()
}

// Entry reads the current row.
func (c *Cursor) Entry() (Entry, error) {
	var rawID int64
	e := Entry{}
	if err := c.rows.Scan(&rawID, &e.Expiration, &e.Bytes); err != nil {
		return Entry{}, errors.StorageFailure(err, "scan unconfirmed transaction row")
	}
	e.ID = uint64(rawID)
	return e, nil
}

// Close releases the cursor's resources.
func (c *Cursor) Close() error {
	return c.rows.Close()
}

// Err reports any error encountered during iteration.
func (c *Cursor) Err() error {
	return c.rows.Err()
}

// SweepExpired deletes every row with expiration < now inside tx, returning
// the removed entries. It streams the delete rather than materializing the
// full table: the candidate id set is fetched first (ordered by
// expiration, so database/utils.Search can bound the scan to only the
// expired prefix when the caller knows a rough cutoff), then each row is
// deleted individually so memory stays bounded by the number of *expired*
// rows, not the table size.
func SweepExpired(tx *sql.Tx, now int64) ([]Entry, error) {
	rows, err := tx.Query(
		`SELECT id, expiration, transaction_bytes FROM unconfirmed_transaction WHERE expiration < ? ORDER BY expiration`,
		now,
	)
	if err != nil {
		return nil, errors.StorageFailure(err, "select expired transactions")
	}

	var removed []Entry
	for rows.Next() {
		var rawID int64
		e := Entry{}
		if err := rows.Scan(&rawID, &e.Expiration, &e.Bytes); err != nil {
			rows.Close()
			return nil, errors.StorageFailure(err, "scan expired transaction")
		}
		e.ID = uint64(rawID)
		removed = append(removed, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, errors.StorageFailure(err, "iterate expired transactions")
	}
	rows.Close()

	for _, e := range removed {
		if _, err := tx.Exec(`DELETE FROM unconfirmed_transaction WHERE id = ?`, int64(e.ID)); err != nil {
			return nil, errors.StorageFailure(err, "delete expired transaction")
		}
	}

	logStore.WithField("count", len(removed)).Trace("swept expired transactions")
	return removed, nil
}

// BoundExpiredCount uses the generalized binary search from
// database/utils.Search to count, from an already-loaded sorted slice of
// expirations, how many of the leading rows are expired as of now — used by
// the sweeper worker to decide whether a sweep is worth running before
// opening a storage transaction at all.
func BoundExpiredCount(sortedExpirations []int64, now int64) (uint64, error) {
	n := uint64(len(sortedExpirations))
	return utils.Search(n, func(i uint64) (bool, error) {
		return sortedExpirations[i] >= now, nil
	})
}

// ExpirationsSorted returns every row's expiration, ascending — cheap
// enough to call every tick thanks to idx_unconfirmed_transaction_expiration
// — so BoundExpiredCount can tell the sweeper whether a sweep would find
// anything before it opens a storage transaction.
func (s *Store) ExpirationsSorted() ([]int64, error) {
	rows, err := s.db.Query(`SELECT expiration FROM unconfirmed_transaction ORDER BY expiration`)
	if err != nil {
		return nil, errors.StorageFailure(err, "select expirations")
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var exp int64
		if err := rows.Scan(&exp); err != nil {
			return nil, errors.StorageFailure(err, "scan expiration")
		}
		out = append(out, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StorageFailure(err, "iterate expirations")
	}
	return out, nil
}
