package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/penaltybox/officials-stats-service/pkg/models"
)

// Schema is the relational layout for the Postgres backend. Officials are
// keyed by (league, normalized name, season); the accumulating upsert is a
// single statement so concurrent writers against the same key serialize at
// the row.
const Schema = `
CREATE TABLE IF NOT EXISTS games (
	league_id   TEXT        NOT NULL,
	game_id     TEXT        NOT NULL,
	season_id   INTEGER     NOT NULL,
	ingest_date TEXT        NOT NULL,
	payload     JSONB       NOT NULL,
	ingested_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (league_id, game_id)
);

CREATE TABLE IF NOT EXISTS officials (
	league_id    TEXT             NOT NULL,
	name         TEXT             NOT NULL,
	display_name TEXT             NOT NULL,
	season_id    INTEGER          NOT NULL,
	role         TEXT             NOT NULL,
	games_called INTEGER          NOT NULL DEFAULT 0,
	total_pims   INTEGER          NOT NULL DEFAULT 0,
	avg_pims     DOUBLE PRECISION NOT NULL DEFAULT 0,
	PRIMARY KEY (league_id, name, season_id)
);

CREATE INDEX IF NOT EXISTS officials_season_idx ON officials (league_id, season_id);
`

// PostgresStore is the Postgres-backed Store.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a Postgres connection and ensures the schema.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres store: ensure schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) GameExists(ctx context.Context, leagueID, gameID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM games WHERE league_id = $1 AND game_id = $2)`,
		leagueID, gameID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres store: exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) PutGameIfAbsent(ctx context.Context, leagueID string, rec models.GameRecord) (bool, error) {
	inserted, err := insertGame(ctx, s.db, leagueID, rec)
	if err != nil {
		return false, fmt.Errorf("postgres store: put game: %w", err)
	}
	return inserted, nil
}

func (s *PostgresStore) UpsertOfficial(ctx context.Context, leagueID string, delta models.OfficialDelta) (models.OfficialRecord, error) {
	rec, err := upsertOfficial(ctx, s.db, leagueID, delta)
	if err != nil {
		return models.OfficialRecord{}, fmt.Errorf("postgres store: upsert official: %w", err)
	}
	return rec, nil
}

// ApplyGame runs the game insert and every official upsert in one
// transaction: all commit together or none do.
func (s *PostgresStore) ApplyGame(ctx context.Context, leagueID string, rec models.GameRecord, deltas []models.OfficialDelta) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("postgres store: begin: %w", err)
	}
	defer tx.Rollback() // Rollback if commit doesn't happen

	inserted, err := insertGame(ctx, tx, leagueID, rec)
	if err != nil {
		return false, fmt.Errorf("postgres store: apply game: %w", err)
	}
	if !inserted {
		return false, nil
	}

	for _, d := range deltas {
		if _, err := upsertOfficial(ctx, tx, leagueID, d); err != nil {
			return false, fmt.Errorf("postgres store: apply official %s: %w", d.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("postgres store: commit: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) OfficialsForSeason(ctx context.Context, leagueID string, seasonID int) ([]models.OfficialRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT display_name, role, season_id, games_called, total_pims, avg_pims
		 FROM officials WHERE league_id = $1 AND season_id = $2`,
		leagueID, seasonID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres store: season query: %w", err)
	}
	defer rows.Close()
	return scanOfficials(rows)
}

func (s *PostgresStore) CareerForOfficial(ctx context.Context, leagueID, name string) ([]models.OfficialRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT display_name, role, season_id, games_called, total_pims, avg_pims
		 FROM officials WHERE league_id = $1 AND name = $2
		 ORDER BY season_id DESC`,
		leagueID, models.NormalizeOfficialName(name),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres store: career query: %w", err)
	}
	defer rows.Close()
	return scanOfficials(rows)
}

// execer covers *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func insertGame(ctx context.Context, db execer, leagueID string, rec models.GameRecord) (bool, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("marshaling game: %w", err)
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO games (league_id, game_id, season_id, ingest_date, payload)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (league_id, game_id) DO NOTHING`,
		leagueID, rec.GameID, rec.SeasonID, rec.IngestDate, payload,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func upsertOfficial(ctx context.Context, db execer, leagueID string, delta models.OfficialDelta) (models.OfficialRecord, error) {
	var rec models.OfficialRecord
	err := db.QueryRowContext(ctx,
		`INSERT INTO officials (league_id, name, display_name, season_id, role, games_called, total_pims, avg_pims)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, ROUND($7::numeric / NULLIF($6, 0), 1))
		 ON CONFLICT (league_id, name, season_id) DO UPDATE SET
			role         = EXCLUDED.role,
			games_called = officials.games_called + EXCLUDED.games_called,
			total_pims   = officials.total_pims + EXCLUDED.total_pims,
			avg_pims     = ROUND((officials.total_pims + EXCLUDED.total_pims)::numeric
			                   / NULLIF(officials.games_called + EXCLUDED.games_called, 0), 1)
		 RETURNING display_name, role, season_id, games_called, total_pims, avg_pims`,
		leagueID, models.NormalizeOfficialName(delta.Name), delta.Name, delta.SeasonID,
		string(delta.Role), delta.Games, delta.Pims,
	).Scan(&rec.Name, &rec.Role, &rec.SeasonID, &rec.GamesCalled, &rec.TotalPims, &rec.AvgPims)
	if err != nil {
		return models.OfficialRecord{}, err
	}
	return rec, nil
}

func scanOfficials(rows *sql.Rows) ([]models.OfficialRecord, error) {
	var out []models.OfficialRecord
	for rows.Next() {
		var rec models.OfficialRecord
		if err := rows.Scan(&rec.Name, &rec.Role, &rec.SeasonID, &rec.GamesCalled, &rec.TotalPims, &rec.AvgPims); err != nil {
			return nil, fmt.Errorf("postgres store: scan official: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres store: iterating officials: %w", err)
	}
	return out, nil
}
