package mockhub

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists mutable hub state between restarts: shade positions,
// thermostat settings and scene activation. Fixture data stays in code;
// the store only holds the values control calls have changed.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore opens (or creates) the state database at dbPath. Use ":memory:"
// for a throwaway store.
func NewStore(ctx context.Context, dbPath string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	store := &Store{db: db, logger: logger}
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		`PRAGMA journal_mode = WAL;`,
		`CREATE TABLE IF NOT EXISTS shade_positions (
			id INTEGER PRIMARY KEY,
			position INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS thermostat_state (
			id INTEGER PRIMARY KEY,
			mode TEXT,
			fan_mode TEXT,
			setpoint_type TEXT,
			setpoint_temperature INTEGER,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS scene_status (
			id INTEGER PRIMARY KEY,
			active INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate failed: %w", err)
		}
	}
	return nil
}

// ShadePositions returns every persisted shade position keyed by id.
func (s *Store) ShadePositions(ctx context.Context) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, position FROM shade_positions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := map[int]int{}
	for rows.Next() {
		var id, position int
		if err := rows.Scan(&id, &position); err != nil {
			return nil, err
		}
		result[id] = position
	}
	return result, rows.Err()
}

func (s *Store) SetShadePosition(ctx context.Context, id, position int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shade_positions (id, position, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			position=excluded.position,
			updated_at=excluded.updated_at`,
		id, position, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// ThermostatState is the persisted mutable slice of one thermostat.
type ThermostatState struct {
	ID                  int
	Mode                string
	FanMode             string
	SetpointType        string
	SetpointTemperature int
}

// ThermostatStates returns every persisted thermostat override keyed by id.
func (s *Store) ThermostatStates(ctx context.Context) (map[int]ThermostatState, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mode, fan_mode, setpoint_type, setpoint_temperature
		FROM thermostat_state`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := map[int]ThermostatState{}
	for rows.Next() {
		var (
			state                       ThermostatState
			mode, fanMode, setpointType sql.NullString
			setpointTemperature         sql.NullInt64
		)
		if err := rows.Scan(&state.ID, &mode, &fanMode, &setpointType, &setpointTemperature); err != nil {
			return nil, err
		}
		state.Mode = mode.String
		state.FanMode = fanMode.String
		state.SetpointType = setpointType.String
		state.SetpointTemperature = int(setpointTemperature.Int64)
		result[state.ID] = state
	}
	return result, rows.Err()
}

func (s *Store) SetThermostatMode(ctx context.Context, id int, mode string) error {
	return s.upsertThermostat(ctx, id, `mode=?`, mode)
}

func (s *Store) SetThermostatFanMode(ctx context.Context, id int, fanMode string) error {
	return s.upsertThermostat(ctx, id, `fan_mode=?`, fanMode)
}

func (s *Store) SetThermostatSetpoint(ctx context.Context, id int, setpointType string, temperature int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO thermostat_state (id, setpoint_type, setpoint_temperature, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			setpoint_type=excluded.setpoint_type,
			setpoint_temperature=excluded.setpoint_temperature,
			updated_at=excluded.updated_at`,
		id, setpointType, temperature, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (s *Store) upsertThermostat(ctx context.Context, id int, assignment string, value string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO thermostat_state (id, updated_at) VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING`,
		id, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE thermostat_state SET `+assignment+`, updated_at=? WHERE id=?`,
		value, time.Now().UTC().Format(time.RFC3339Nano), id); err != nil {
		return err
	}
	return tx.Commit()
}

// SceneStatuses returns persisted scene activation flags keyed by id.
func (s *Store) SceneStatuses(ctx context.Context) (map[int]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, active FROM scene_status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := map[int]bool{}
	for rows.Next() {
		var (
			id     int
			active bool
		)
		if err := rows.Scan(&id, &active); err != nil {
			return nil, err
		}
		result[id] = active
	}
	return result, rows.Err()
}

// ToggleScene flips and returns the persisted activation flag for id.
func (s *Store) ToggleScene(ctx context.Context, id int) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var active bool
	err = tx.QueryRowContext(ctx, `SELECT active FROM scene_status WHERE id=?`, id).Scan(&active)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	active = !active

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO scene_status (id, active, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			active=excluded.active,
			updated_at=excluded.updated_at`,
		id, active, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return false, err
	}
	return active, tx.Commit()
}
