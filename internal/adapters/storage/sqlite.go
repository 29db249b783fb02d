package storage

// sqlite.go: histórico de comprobaciones de elegibilidad.
//
// Estrategia:
//   - `checks`: una fila por batch (id uuid, fecha, nº de direcciones).
//   - `results`: una fila por dirección y batch. Sugerencias y riesgos como JSON.
//   - Los resultados `unavailable` también se guardan: el histórico refleja
//     lo que vio el usuario.
//   - Prune automático al arrancar: checks > 90d junto con sus resultados.

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/polydrop/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS checks (
    id            TEXT PRIMARY KEY,
    checked_at    DATETIME NOT NULL,
    address_count INTEGER  NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS results (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    check_id         TEXT     NOT NULL REFERENCES checks(id),
    address          TEXT     NOT NULL,
    status           TEXT     NOT NULL,
    tier             TEXT     NOT NULL,
    percentile       INTEGER  NOT NULL DEFAULT 0,
    alloc_min        INTEGER  NOT NULL DEFAULT 0,
    alloc_max        INTEGER  NOT NULL DEFAULT 0,
    total_volume     REAL     NOT NULL DEFAULT 0,
    pnl              REAL     NOT NULL DEFAULT 0,
    active_days      INTEGER  NOT NULL DEFAULT 0,
    unique_markets   INTEGER  NOT NULL DEFAULT 0,
    total_trades     INTEGER  NOT NULL DEFAULT 0,
    closed_positions INTEGER  NOT NULL DEFAULT 0,
    consistency      REAL     NOT NULL DEFAULT 0,
    avg_trade_size   REAL     NOT NULL DEFAULT 0,
    suggestions      TEXT     NOT NULL DEFAULT '[]',
    risk_factors     TEXT     NOT NULL DEFAULT '[]',
    checked_at       DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_checks_at      ON checks(checked_at DESC);
CREATE INDEX IF NOT EXISTS idx_results_addr   ON results(address, checked_at DESC);
CREATE INDEX IF NOT EXISTS idx_results_check  ON results(check_id);
`

const (
	retentionChecks     = 90 * 24 * time.Hour
	defaultHistoryLimit = 10

	// Formato fijo UTC con milisegundos: ordena lexicográficamente igual que en el tiempo.
	timeLayout = "2006-01-02T15:04:05.000Z"
)

// SQLiteStorage implementa ports.ResultStore usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia comprobaciones antiguas.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	if err := s.pruneOld(context.Background(), time.Now()); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: %w", err)
	}
	return s, nil
}

// SaveCheck persiste un batch completo en una transacción.
func (s *SQLiteStorage) SaveCheck(ctx context.Context, checkID string, results []domain.EligibilityResult) error {
	if len(results) == 0 {
		return nil
	}

	checkedAt := results[0].CheckedAt
	if checkedAt.IsZero() {
		checkedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveCheck: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO checks (id, checked_at, address_count) VALUES (?, ?, ?)`,
		checkID, formatTime(checkedAt), len(results),
	); err != nil {
		return fmt.Errorf("storage.SaveCheck: insert check %s: %w", checkID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results
			(check_id, address, status, tier, percentile, alloc_min, alloc_max,
			 total_volume, pnl, active_days, unique_markets, total_trades,
			 closed_positions, consistency, avg_trade_size, suggestions,
			 risk_factors, checked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveCheck: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		suggestions, err := encodeList(r.Suggestions)
		if err != nil {
			return fmt.Errorf("storage.SaveCheck: %s suggestions: %w", r.Address, err)
		}
		risks, err := encodeList(r.RiskFactors)
		if err != nil {
			return fmt.Errorf("storage.SaveCheck: %s risk factors: %w", r.Address, err)
		}
		at := r.CheckedAt
		if at.IsZero() {
			at = checkedAt
		}

		m := r.Metrics
		if _, err := stmt.ExecContext(ctx,
			checkID,
			r.Address,
			string(r.Status),
			string(r.Tier),
			r.Percentile,
			r.Allocation.Min,
			r.Allocation.Max,
			m.TotalVolume,
			m.PnL,
			m.ActiveDays,
			m.UniqueMarkets,
			m.TotalTrades,
			m.ClosedPositions,
			m.Consistency,
			m.AvgTradeSize,
			suggestions,
			risks,
			formatTime(at),
		); err != nil {
			return fmt.Errorf("storage.SaveCheck: insert %s: %w", r.Address, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveCheck: commit: %w", err)
	}
	return nil
}

// GetHistory devuelve los últimos resultados de una dirección, los más recientes primero.
// limit <= 0 usa el valor por defecto.
func (s *SQLiteStorage) GetHistory(ctx context.Context, address string, limit int) ([]domain.EligibilityResult, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT address, status, tier, percentile, alloc_min, alloc_max,
		       total_volume, pnl, active_days, unique_markets, total_trades,
		       closed_positions, consistency, avg_trade_size, suggestions,
		       risk_factors, checked_at
		FROM results
		WHERE address = ?
		ORDER BY checked_at DESC, id DESC
		LIMIT ?
	`, address, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.GetHistory: query: %w", err)
	}
	defer rows.Close()

	var history []domain.EligibilityResult
	for rows.Next() {
		var r domain.EligibilityResult
		var status, tier, suggestions, risks string
		var checkedAt any

		if err := rows.Scan(
			&r.Address,
			&status,
			&tier,
			&r.Percentile,
			&r.Allocation.Min,
			&r.Allocation.Max,
			&r.Metrics.TotalVolume,
			&r.Metrics.PnL,
			&r.Metrics.ActiveDays,
			&r.Metrics.UniqueMarkets,
			&r.Metrics.TotalTrades,
			&r.Metrics.ClosedPositions,
			&r.Metrics.Consistency,
			&r.Metrics.AvgTradeSize,
			&suggestions,
			&risks,
			&checkedAt,
		); err != nil {
			return nil, fmt.Errorf("storage.GetHistory: scan row: %w", err)
		}

		r.Status = domain.Status(status)
		r.Tier = domain.Tier(tier)
		at, err := parseTime(checkedAt)
		if err != nil {
			return nil, fmt.Errorf("storage.GetHistory: checked_at: %w", err)
		}
		r.CheckedAt = at
		if err := json.Unmarshal([]byte(suggestions), &r.Suggestions); err != nil {
			return nil, fmt.Errorf("storage.GetHistory: decode suggestions: %w", err)
		}
		if err := json.Unmarshal([]byte(risks), &r.RiskFactors); err != nil {
			return nil, fmt.Errorf("storage.GetHistory: decode risk factors: %w", err)
		}
		history = append(history, r)
	}

	return history, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

// pruneOld elimina comprobaciones anteriores a la retención y sus resultados.
func (s *SQLiteStorage) pruneOld(ctx context.Context, now time.Time) error {
	cutoff := formatTime(now.Add(-retentionChecks))
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM results WHERE check_id IN (SELECT id FROM checks WHERE checked_at < ?)`, cutoff,
	); err != nil {
		return fmt.Errorf("prune results: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM checks WHERE checked_at < ?`, cutoff); err != nil {
		return fmt.Errorf("prune checks: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime lee una columna DATETIME. El driver devuelve time.Time cuando
// reconoce el formato y el texto tal cual si no.
func parseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseTimeText(t)
	case []byte:
		return parseTimeText(string(t))
	default:
		return time.Time{}, fmt.Errorf("unexpected type %T", v)
	}
}

func parseTimeText(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// encodeList serializa una lista de strings; nil se guarda como [].
func encodeList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
