package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"intervaltimer/internal/core/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps presets in a WAL-mode SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and applies the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

func (store *SQLiteStore) Close() error { return store.db.Close() }

func (store *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS presets (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS phases (
		preset_id        TEXT NOT NULL REFERENCES presets(id) ON DELETE CASCADE,
		position         INTEGER NOT NULL,
		id               TEXT NOT NULL,
		name             TEXT NOT NULL,
		duration_seconds INTEGER NOT NULL CHECK (duration_seconds >= 0),
		PRIMARY KEY (preset_id, position)
	);
	`
	_, err := store.db.Exec(schema)
	return err
}

func (store *SQLiteStore) All() ([]model.Preset, error) {
	rows, err := store.db.Query(`SELECT id, name FROM presets ORDER BY seq`)
	if err != nil {
		return nil, wrapOp("list", "", err)
	}
	defer rows.Close()

	var presets []model.Preset
	for rows.Next() {
		var preset model.Preset
		if err := rows.Scan(&preset.ID, &preset.Name); err != nil {
			return nil, wrapOp("list", "", err)
		}
		presets = append(presets, preset)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapOp("list", "", err)
	}
	rows.Close()

	phasesByPreset, err := store.allPhases()
	if err != nil {
		return nil, wrapOp("list", "", err)
	}
	for index := range presets {
		presets[index].SetPhases(phasesByPreset[presets[index].ID])
	}
	return presets, nil
}

func (store *SQLiteStore) Get(id string) (model.Preset, error) {
	preset := model.Preset{ID: id}
	err := store.db.QueryRow(`SELECT name FROM presets WHERE id = ?`, id).Scan(&preset.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Preset{}, wrapOp("get", id, ErrNotFound)
	}
	if err != nil {
		return model.Preset{}, wrapOp("get", id, err)
	}

	phases, err := store.phasesOf(id)
	if err != nil {
		return model.Preset{}, wrapOp("get", id, err)
	}
	preset.SetPhases(phases)
	return preset, nil
}

func (store *SQLiteStore) Add(preset model.Preset) error {
	if err := checkNewPreset(preset); err != nil {
		return wrapOp("add", preset.ID, err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	err := retryOnContention(func() error {
		return store.inTx(func(tx *sql.Tx) error {
			var exists int
			err := tx.QueryRow(`SELECT COUNT(*) FROM presets WHERE id = ?`, preset.ID).Scan(&exists)
			if err != nil {
				return err
			}
			if exists > 0 {
				return ErrDuplicateID
			}
			if _, err := tx.Exec(
				`INSERT INTO presets (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
				preset.ID, preset.Name, now, now,
			); err != nil {
				return err
			}
			return insertPhases(tx, preset.ID, preset.Phases)
		})
	})
	return wrapOp("add", preset.ID, err)
}

func (store *SQLiteStore) Update(id, name string, phases []model.Phase) (model.Preset, error) {
	updated, err := rebuild(id, name, phases)
	if err != nil {
		return model.Preset{}, wrapOp("update", id, err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	err = retryOnContention(func() error {
		return store.inTx(func(tx *sql.Tx) error {
			result, err := tx.Exec(`UPDATE presets SET name = ?, updated_at = ? WHERE id = ?`, name, now, id)
			if err != nil {
				return err
			}
			if affected, err := result.RowsAffected(); err != nil {
				return err
			} else if affected == 0 {
				return ErrNotFound
			}
			if _, err := tx.Exec(`DELETE FROM phases WHERE preset_id = ?`, id); err != nil {
				return err
			}
			return insertPhases(tx, id, updated.Phases)
		})
	})
	if err != nil {
		return model.Preset{}, wrapOp("update", id, err)
	}
	return updated, nil
}

func (store *SQLiteStore) Remove(id string) error {
	err := retryOnContention(func() error {
		return store.inTx(func(tx *sql.Tx) error {
			if _, err := tx.Exec(`DELETE FROM phases WHERE preset_id = ?`, id); err != nil {
				return err
			}
			result, err := tx.Exec(`DELETE FROM presets WHERE id = ?`, id)
			if err != nil {
				return err
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrNotFound
			}
			return nil
		})
	})
	return wrapOp("remove", id, err)
}

func (store *SQLiteStore) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := store.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func insertPhases(tx *sql.Tx, presetID string, phases []model.Phase) error {
	stmt, err := tx.Prepare(
		`INSERT INTO phases (preset_id, position, id, name, duration_seconds) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for position, phase := range phases {
		if _, err := stmt.Exec(presetID, position, phase.ID, phase.Name, phase.DurationSeconds); err != nil {
			return fmt.Errorf("insert phase %d: %w", position, err)
		}
	}
	return nil
}

func (store *SQLiteStore) phasesOf(presetID string) ([]model.Phase, error) {
	rows, err := store.db.Query(
		`SELECT id, name, duration_seconds FROM phases WHERE preset_id = ? ORDER BY position`, presetID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phases []model.Phase
	for rows.Next() {
		var phase model.Phase
		if err := rows.Scan(&phase.ID, &phase.Name, &phase.DurationSeconds); err != nil {
			return nil, err
		}
		phases = append(phases, phase)
	}
	return phases, rows.Err()
}

func (store *SQLiteStore) allPhases() (map[string][]model.Phase, error) {
	rows, err := store.db.Query(
		`SELECT preset_id, id, name, duration_seconds FROM phases ORDER BY preset_id, position`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	phases := make(map[string][]model.Phase)
	for rows.Next() {
		var presetID string
		var phase model.Phase
		if err := rows.Scan(&presetID, &phase.ID, &phase.Name, &phase.DurationSeconds); err != nil {
			return nil, err
		}
		phases[presetID] = append(phases[presetID], phase)
	}
	return phases, rows.Err()
}
