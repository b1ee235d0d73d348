package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists objects and states in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS objects (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		common TEXT NOT NULL,
		native TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS states (
		id TEXT PRIMARY KEY,
		val TEXT,
		ack INTEGER NOT NULL DEFAULT 0,
		ts INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) EnsureObject(ctx context.Context, id string, obj Object) error {
	if err := validID(id); err != nil {
		return err
	}
	common, err := json.Marshal(obj.Common)
	if err != nil {
		return fmt.Errorf("encoding common for %s: %w", id, err)
	}
	native, err := json.Marshal(obj.Native)
	if err != nil {
		return fmt.Errorf("encoding native for %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO objects (id, type, common, native) VALUES (?,?,?,?)`,
		id, obj.Type, string(common), string(native))
	if err != nil {
		return fmt.Errorf("inserting object %s: %w", id, err)
	}
	created, _ := res.RowsAffected()

	if created == 1 && obj.Type == TypeState && obj.Common.Def != nil {
		val, err := json.Marshal(obj.Common.Def)
		if err != nil {
			return fmt.Errorf("encoding default for %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO states (id, val, ack, ts) VALUES (?,?,1,?)`,
			id, string(val), time.Now().UnixMilli()); err != nil {
			return fmt.Errorf("seeding default for %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing tx: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetState(ctx context.Context, id string) (*State, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	var (
		raw sql.NullString
		ack bool
		ts  int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT val, ack, ts FROM states WHERE id = ?`, id).Scan(&raw, &ack, &ts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading state %s: %w", id, err)
	}
	return decodeState(raw, ack, ts)
}

func (s *SQLiteStore) SetState(ctx context.Context, id string, val any, ack bool) error {
	if err := validID(id); err != nil {
		return err
	}
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("encoding state %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO states (id, val, ack, ts) VALUES (?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET val = excluded.val, ack = excluded.ack, ts = excluded.ts`,
		id, string(data), ack, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("writing state %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, prefix string) ([]Entry, error) {
	self, below := prefix, prefix+"."
	if prefix == "" || strings.HasSuffix(prefix, ".") {
		self, below = "", prefix
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.type, o.common, o.native, st.val, st.ack, st.ts
		FROM objects o LEFT JOIN states st ON st.id = o.id
		WHERE o.id = ? OR substr(o.id, 1, length(?)) = ?
		ORDER BY o.id`, self, below, below)
	if err != nil {
		return nil, fmt.Errorf("listing objects: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e              Entry
			common, native sql.NullString
			val            sql.NullString
			ack            sql.NullBool
			ts             sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.Object.Type, &common, &native, &val, &ack, &ts); err != nil {
			return nil, fmt.Errorf("scanning object: %w", err)
		}
		if common.Valid {
			if err := json.Unmarshal([]byte(common.String), &e.Object.Common); err != nil {
				return nil, fmt.Errorf("decoding common for %s: %w", e.ID, err)
			}
		}
		if native.Valid && native.String != "null" {
			json.Unmarshal([]byte(native.String), &e.Object.Native)
		}
		if ts.Valid {
			st, err := decodeState(val, ack.Bool, ts.Int64)
			if err != nil {
				return nil, err
			}
			e.State = st
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of stored states.
func (s *SQLiteStore) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM states").Scan(&count)
	return count, err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func decodeState(raw sql.NullString, ack bool, ts int64) (*State, error) {
	st := &State{Ack: ack, Ts: time.UnixMilli(ts)}
	if raw.Valid {
		if err := json.Unmarshal([]byte(raw.String), &st.Val); err != nil {
			return nil, fmt.Errorf("decoding state value: %w", err)
		}
	}
	return st, nil
}
