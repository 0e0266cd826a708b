package persistence

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/meshguard/sentinel/pkg/logx"
)

// TowerLedger is a long-horizon, append-only record of every cell tower
// observation, independent of the trust model's bounded in-memory table.
// It exists for operator-level review, not for the engine's own scoring,
// and is modeled on the teacher codebase's pkg/gps/local_cell_database.go.
type TowerLedger struct {
	db     *sql.DB
	logger *logx.Logger
}

// TowerObservation is a single append-only ledger row.
type TowerObservation struct {
	Timestamp time.Time
	CellID    int64
	MCC       string
	MNC       string
	LAC       int32
	TAC       int32
	SignalDBM int
	Lat       float64
	Lon       float64
}

// OpenTowerLedger opens (creating if necessary) a sqlite3-backed ledger at
// path; honors ephemeral mode by writing to an in-memory database when
// ephemeral is true.
func OpenTowerLedger(path string, ephemeral bool, logger *logx.Logger) (*TowerLedger, error) {
	dsn := path
	if ephemeral {
		dsn = ":memory:"
	} else if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ledger: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("ledger: open database: %w", err)
	}

	l := &TowerLedger{db: db, logger: logger}
	if err := l.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

func (l *TowerLedger) initSchema() error {
	const createTableSQL = `
	CREATE TABLE IF NOT EXISTS tower_observations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		cell_id INTEGER NOT NULL,
		mcc TEXT NOT NULL,
		mnc TEXT NOT NULL,
		lac INTEGER,
		tac INTEGER,
		signal_dbm INTEGER,
		lat REAL,
		lon REAL
	);
	CREATE INDEX IF NOT EXISTS idx_tower_observations_cell ON tower_observations(cell_id);
	CREATE INDEX IF NOT EXISTS idx_tower_observations_timestamp ON tower_observations(timestamp);
	`
	_, err := l.db.Exec(createTableSQL)
	if err != nil {
		return fmt.Errorf("ledger: init schema: %w", err)
	}
	return nil
}

// Record appends one observation; failures are logged and swallowed per
// spec.md §7 (persistence errors never propagate to the engine).
func (l *TowerLedger) Record(obs TowerObservation) {
	_, err := l.db.Exec(
		`INSERT INTO tower_observations (timestamp, cell_id, mcc, mnc, lac, tac, signal_dbm, lat, lon)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		obs.Timestamp, obs.CellID, obs.MCC, obs.MNC, obs.LAC, obs.TAC, obs.SignalDBM, obs.Lat, obs.Lon,
	)
	if err != nil {
		l.logger.Warn("tower ledger insert failed", "error", err.Error())
	}
}

// PruneOlderThan deletes rows older than cutoff, bounding ledger growth.
func (l *TowerLedger) PruneOlderThan(cutoff time.Time) {
	if _, err := l.db.Exec(`DELETE FROM tower_observations WHERE timestamp < ?`, cutoff); err != nil {
		l.logger.Warn("tower ledger prune failed", "error", err.Error())
	}
}

// Close closes the underlying database handle.
func (l *TowerLedger) Close() error { return l.db.Close() }
