package repository

import (
	"database/sql"
	"embed"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"loan-qualifier/domain"
)

var (
	//go:embed sql/*
	sqlFS embed.FS

	errDBNotInitialized = errors.New("database not initialized")
)

const (
	insertDecision = `INSERT INTO decision (id, created_at, decision, accept_probability,
		default_probability, risk_band, term, purpose) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	// ancho fijo para que el orden de texto coincida con el temporal
	createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

	selectRecentDecisions = `SELECT id, created_at, decision, accept_probability,
		default_probability, risk_band, term, purpose
		FROM decision ORDER BY created_at DESC, rowid DESC LIMIT ?`
)

// DecisionRepositorySQLite persists the audit trail to a sqlite file.
type DecisionRepositorySQLite struct {
	db *sql.DB
}

// NewDecisionRepositorySQLite opens (and if needed creates) the database at
// path and applies the schema.
func NewDecisionRepositorySQLite(path string) (*DecisionRepositorySQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite path not specified")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", path)
	}
	// un solo escritor evita SQLITE_BUSY bajo concurrencia
	db.SetMaxOpenConns(1)

	ddl, err := sqlFS.ReadFile("sql/ddl.sql")
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to read the schema creation file")
	}
	if _, err := db.Exec(string(ddl)); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to create database schema in: %s", path)
	}

	return &DecisionRepositorySQLite{db: db}, nil
}

func (r *DecisionRepositorySQLite) Save(record domain.DecisionRecord) error {
	if r.db == nil {
		return errDBNotInitialized
	}

	_, err := r.db.Exec(insertDecision,
		record.ID,
		record.CreatedAt.UTC().Format(createdAtLayout),
		string(record.Decision),
		record.AcceptProbability,
		record.DefaultProbability,
		string(record.RiskBand),
		record.Term,
		record.Purpose,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to insert decision: %s", record.ID)
	}
	return nil
}

func (r *DecisionRepositorySQLite) Recent(limit int) ([]domain.DecisionRecord, error) {
	if r.db == nil {
		return nil, errDBNotInitialized
	}
	if limit <= 0 {
		limit = -1 // sin límite en sqlite
	}

	rows, err := r.db.Query(selectRecentDecisions, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query decisions")
	}
	defer rows.Close()

	list := make([]domain.DecisionRecord, 0)
	for rows.Next() {
		var (
			rec       domain.DecisionRecord
			createdAt string
			decision  string
			band      string
		)
		if err := rows.Scan(&rec.ID, &createdAt, &decision, &rec.AcceptProbability,
			&rec.DefaultProbability, &band, &rec.Term, &rec.Purpose); err != nil {
			return nil, errors.Wrap(err, "failed to scan decision row")
		}
		if rec.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
			return nil, errors.Wrapf(err, "invalid created_at for decision: %s", rec.ID)
		}
		rec.Decision = domain.Decision(decision)
		rec.RiskBand = domain.RiskBand(band)
		list = append(list, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate decision rows")
	}
	return list, nil
}

func (r *DecisionRepositorySQLite) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}
