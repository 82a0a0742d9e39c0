// Package store persists parsed dumps and their decode results in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/irdump/internal/irdecode"
	"github.com/banshee-data/irdump/internal/irdump"
	"github.com/banshee-data/irdump/internal/monitoring"
	"github.com/banshee-data/irdump/internal/timeutil"
)

// ErrDumpNotFound is returned when a dump id has no stored dump.
var ErrDumpNotFound = errors.New("store: dump not found")

// Store is a SQLite database of imported dumps.
type Store struct {
	*sql.DB
	clock timeutil.Clock
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for import timestamps.
func WithClock(c timeutil.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// Open opens (creating if needed) the database at path and migrates it to
// the latest schema.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{DB: db, clock: timeutil.RealClock{}}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	monitoring.Debugf("opened store %s", path)
	return s, nil
}

// DumpRecord describes one imported dump.
type DumpRecord struct {
	ID          string
	Source      string
	Version     uint32
	SignalCount int
	ImportedAt  time.Time
}

// StoredSignal is one signal of an imported dump together with its decode
// outcome. Packets is nil and DecodeError is set when decoding failed.
type StoredSignal struct {
	Index       int
	Name        string
	Kind        string
	Frequency   uint32
	DutyCycle   float32
	Data        []uint32
	Packets     []string
	DecodeError string
}

// Decoded reports whether the signal decoded successfully.
func (s StoredSignal) Decoded() bool {
	return s.DecodeError == ""
}

// SaveDump stores dump and, aligned by index, its decode results in one
// transaction and returns the new dump id. results may be nil when the
// dump was not decoded; otherwise it must hold one Result per signal.
func (s *Store) SaveDump(ctx context.Context, source string, dump irdump.DumpFile, results []irdecode.Result) (string, error) {
	if results != nil && len(results) != len(dump.Signals) {
		return "", fmt.Errorf("store: %d results for %d signals", len(results), len(dump.Signals))
	}

	id := uuid.NewString()
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO dumps (dump_id, source, version, signal_count, imported_unix_nanos)
		VALUES (?, ?, ?, ?, ?)
	`, id, source, dump.Version, len(dump.Signals), s.clock.Now().UnixNano())
	if err != nil {
		return "", fmt.Errorf("failed to insert dump: %w", err)
	}

	for i, sig := range dump.Signals {
		durations, err := json.Marshal(sig.Data)
		if err != nil {
			return "", fmt.Errorf("failed to encode durations of %q: %w", sig.Name, err)
		}

		var decodeErr sql.NullString
		var packets []string
		if results != nil {
			if r := results[i]; r.Err != nil {
				decodeErr = sql.NullString{String: r.Err.Error(), Valid: true}
			} else {
				packets = r.Signal.PacketStrings()
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO signals (dump_id, signal_index, name, kind, frequency, duty_cycle, durations, decode_error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, id, i, sig.Name, sig.Kind.String(), sig.Frequency, float64(sig.DutyCycle), string(durations), decodeErr)
		if err != nil {
			return "", fmt.Errorf("failed to insert signal %d: %w", i, err)
		}

		for j, bits := range packets {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO packets (dump_id, signal_index, packet_index, bits)
				VALUES (?, ?, ?, ?)
			`, id, i, j, bits)
			if err != nil {
				return "", fmt.Errorf("failed to insert packet %d of signal %d: %w", j, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit dump: %w", err)
	}
	monitoring.Logf("stored dump %s from %s (%d signals)", id, source, len(dump.Signals))
	return id, nil
}

// Dumps lists imported dumps, oldest first.
func (s *Store) Dumps(ctx context.Context) ([]DumpRecord, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT dump_id, source, version, signal_count, imported_unix_nanos
		FROM dumps
		ORDER BY imported_unix_nanos, dump_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dumps: %w", err)
	}
	defer rows.Close()

	var out []DumpRecord
	for rows.Next() {
		var d DumpRecord
		var nanos int64
		if err := rows.Scan(&d.ID, &d.Source, &d.Version, &d.SignalCount, &nanos); err != nil {
			return nil, fmt.Errorf("failed to scan dump: %w", err)
		}
		d.ImportedAt = time.Unix(0, nanos).UTC()
		out = append(out, d)
	}
	return out, rows.Err()
}

// Signals returns the signals of dump id in dump order.
func (s *Store) Signals(ctx context.Context, id string) ([]StoredSignal, error) {
	var exists int
	err := s.QueryRowContext(ctx, `SELECT COUNT(*) FROM dumps WHERE dump_id = ?`, id).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up dump: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDumpNotFound, id)
	}

	packets, err := s.packets(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.QueryContext(ctx, `
		SELECT signal_index, name, kind, frequency, duty_cycle, durations, decode_error
		FROM signals
		WHERE dump_id = ?
		ORDER BY signal_index
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer rows.Close()

	out := []StoredSignal{}
	for rows.Next() {
		var sig StoredSignal
		var dutyCycle float64
		var durations string
		var decodeErr sql.NullString
		if err := rows.Scan(&sig.Index, &sig.Name, &sig.Kind, &sig.Frequency, &dutyCycle, &durations, &decodeErr); err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}
		sig.DutyCycle = float32(dutyCycle)
		if err := json.Unmarshal([]byte(durations), &sig.Data); err != nil {
			return nil, fmt.Errorf("failed to decode durations of signal %d: %w", sig.Index, err)
		}
		sig.DecodeError = decodeErr.String
		if !decodeErr.Valid {
			sig.Packets = packets[sig.Index]
			if sig.Packets == nil {
				sig.Packets = []string{}
			}
		}
		out = append(out, sig)
	}
	return out, rows.Err()
}

func (s *Store) packets(ctx context.Context, id string) (map[int][]string, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT signal_index, bits
		FROM packets
		WHERE dump_id = ?
		ORDER BY signal_index, packet_index
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query packets: %w", err)
	}
	defer rows.Close()

	out := make(map[int][]string)
	for rows.Next() {
		var idx int
		var bits string
		if err := rows.Scan(&idx, &bits); err != nil {
			return nil, fmt.Errorf("failed to scan packet: %w", err)
		}
		out[idx] = append(out[idx], bits)
	}
	return out, rows.Err()
}

// DeleteDump removes a dump with its signals and packets.
func (s *Store) DeleteDump(ctx context.Context, id string) error {
	res, err := s.ExecContext(ctx, `DELETE FROM dumps WHERE dump_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dump: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete dump: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrDumpNotFound, id)
	}
	return nil
}
