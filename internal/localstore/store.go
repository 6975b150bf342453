package localstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NayandG07/LifeSync-AI-sub001/internal/record"
)

// Key builds the per-user namespace key for a record collection,
// e.g. "water_u-123". Mirrors the remote store's collection addressing.
func Key(collection, userID string) string {
	return fmt.Sprintf("%s_%s", collection, userID)
}

// Append validates rec and adds it to the user's collection array.
// The read-modify-write runs in a transaction so concurrent appends from
// independent callers cannot lose records.
func (db *DB) Append(collection, userID string, rec record.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	key := Key(collection, userID)
	recs, err := readArray(tx.QueryRow(`SELECT value FROM fallback WHERE key = ?`, key))
	if err != nil {
		return err
	}
	recs = append(recs, rec)

	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	now := time.Now().UnixMilli()
	if _, err := tx.Exec(`
		INSERT INTO fallback (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), now); err != nil {
		return fmt.Errorf("write fallback: %w", err)
	}
	return tx.Commit()
}

// ReadAll returns every record stored for the user's collection.
// A missing key yields an empty slice, not an error.
func (db *DB) ReadAll(collection, userID string) ([]record.Record, error) {
	return readArray(db.QueryRow(`SELECT value FROM fallback WHERE key = ?`, Key(collection, userID)))
}

// Remove deletes the record with the given id from the user's collection.
// Returns whether a record was removed. Removing an absent id is a no-op.
func (db *DB) Remove(collection, userID, id string) (bool, error) {
	tx, err := db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	key := Key(collection, userID)
	recs, err := readArray(tx.QueryRow(`SELECT value FROM fallback WHERE key = ?`, key))
	if err != nil {
		return false, err
	}

	kept := recs[:0]
	removed := false
	for _, r := range recs {
		if r.ID == id {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	if !removed {
		return false, nil
	}

	data, err := json.Marshal(kept)
	if err != nil {
		return false, fmt.Errorf("marshal records: %w", err)
	}
	now := time.Now().UnixMilli()
	if _, err := tx.Exec(`UPDATE fallback SET value = ?, updated_at = ? WHERE key = ?`,
		string(data), now, key); err != nil {
		return false, fmt.Errorf("write fallback: %w", err)
	}
	return true, tx.Commit()
}

// Clear drops the user's entire collection.
func (db *DB) Clear(collection, userID string) error {
	_, err := db.Exec(`DELETE FROM fallback WHERE key = ?`, Key(collection, userID))
	return err
}

// SetMeta stores a small agent-level value, e.g. the last known
// connection state used for fast initial status display.
func (db *DB) SetMeta(key, value string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO meta (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now)
	return err
}

// GetMeta retrieves a stored meta value. Missing keys yield "".
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func readArray(row *sql.Row) ([]record.Record, error) {
	var raw string
	err := row.Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var recs []record.Record
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, fmt.Errorf("decode fallback array: %w", err)
	}
	return recs, nil
}
