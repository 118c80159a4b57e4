// Package store zapouzdřuje práci s PostgreSQL (pgx).
// Zbytek aplikace neví, jak se píše SQL, jen volá metody Store.
package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema je DDL celé databáze, vkládá se do binárky při kompilaci.
//
//go:embed schema.sql
var Schema string

// ErrUnknownReference: INSERT odkazuje na neexistující senzor/aktuátor/koš.
var ErrUnknownReference = errors.New("unknown reference")

// Kód chyby Postgresu pro porušení cizího klíče.
const pgForeignKeyViolation = "23503"

// Store drží pool spojení do databáze.
type Store struct {
	pool *pgxpool.Pool
}

// New vytvoří pool a ověří, že databáze odpovídá.
func New(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("chyba konfigurace DB: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("DB není dostupná: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close uzavře pool při ukončení aplikace.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping ověří spojení (healthcheck).
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// ApplySchema spustí příkazy ze Schema jeden po druhém.
// Všechny jsou "IF NOT EXISTS", takže je bezpečné ji volat opakovaně.
func (s *Store) ApplySchema(ctx context.Context) (int, error) {
	stmts := splitStatements(Schema)
	for i, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return i, fmt.Errorf("příkaz %d schématu selhal: %w", i+1, err)
		}
	}
	return len(stmts), nil
}

// Seed vloží ukázkový koš se senzorem a aktuátorem a vrátí jejich ID.
func (s *Store) Seed(ctx context.Context) (SeedResult, error) {
	var res SeedResult

	err := s.pool.QueryRow(ctx, `
		INSERT INTO bins (name, location, height_cm, max_weight_kg)
		VALUES ('Bote Principal', 'Entrada Edificio A', 120.5, 50.0)
		RETURNING id`).Scan(&res.BinID)
	if err != nil {
		return res, fmt.Errorf("insert koše selhal: %w", err)
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO sensors (bin_id, sensor_type) VALUES ($1, 'Ultrasonico+Peso') RETURNING id`,
		res.BinID).Scan(&res.SensorID)
	if err != nil {
		return res, fmt.Errorf("insert senzoru selhal: %w", err)
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO actuators (bin_id, actuator_type) VALUES ($1, 'Motor Tapa') RETURNING id`,
		res.BinID).Scan(&res.ActuatorID)
	if err != nil {
		return res, fmt.Errorf("insert aktuátoru selhal: %w", err)
	}

	return res, nil
}

// splitStatements rozdělí SQL skript podle středníků a zahodí prázdné kusy.
// Skript nesmí obsahovat středník uvnitř řetězců.
func splitStatements(script string) []string {
	var out []string
	for _, part := range strings.Split(script, ";") {
		stmt := strings.TrimSpace(part)
		if stmt == "" || onlyComments(stmt) {
			continue
		}
		out = append(out, stmt)
	}
	return out
}

func onlyComments(stmt string) bool {
	for _, line := range strings.Split(stmt, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return false
		}
	}
	return true
}

// wrapInsertError převede porušení cizího klíče na ErrUnknownReference.
func wrapInsertError(table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("insert do %s: %w (%s)", table, ErrUnknownReference, pgErr.ConstraintName)
	}
	return fmt.Errorf("chyba insertu do %s: %w", table, err)
}
