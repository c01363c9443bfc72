package ignorelist

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS ignored_rules (
	id          TEXT PRIMARY KEY,
	description TEXT NOT NULL DEFAULT '',
	position    INTEGER NOT NULL
)`
	selectRulesSQL = `SELECT id, description FROM ignored_rules ORDER BY position`
	deleteRulesSQL = `DELETE FROM ignored_rules`
	insertRuleSQL  = `INSERT INTO ignored_rules (id, description, position) VALUES ($1, $2, $3)`
)

// PostgresStore keeps the rules in the ignored_rules table so several
// machines of one user share them.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema schemaGuard
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (ps *PostgresStore) ensureSchema(ctx context.Context) error {
	return ps.schema.ensure(ctx, func(ctx context.Context) error {
		if _, err := ps.pool.Exec(ctx, createTableSQL); err != nil {
			return fmt.Errorf("create ignored_rules: %w", err)
		}
		return nil
	})
}

// schemaGuard runs a schema step until it succeeds once. A failed attempt
// is retried by the next caller.
type schemaGuard struct {
	mu    sync.Mutex
	ready bool
}

func (g *schemaGuard) ensure(ctx context.Context, create func(ctx context.Context) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ready {
		return nil
	}
	if err := create(ctx); err != nil {
		return err
	}
	g.ready = true
	return nil
}

func (ps *PostgresStore) Load(ctx context.Context) ([]Rule, error) {
	if err := ps.ensureSchema(ctx); err != nil {
		return nil, err
	}

	rows, err := ps.pool.Query(ctx, selectRulesSQL)
	if err != nil {
		return nil, fmt.Errorf("query ignored rules: %w", err)
	}
	rules, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Rule, error) {
		var r Rule
		err := row.Scan(&r.ID, &r.Description)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan ignored rules: %w", err)
	}
	return rules, nil
}

// Save replaces the table contents in one transaction.
func (ps *PostgresStore) Save(ctx context.Context, rules []Rule) error {
	if err := ps.ensureSchema(ctx); err != nil {
		return err
	}

	tx, err := ps.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, deleteRulesSQL); err != nil {
		return fmt.Errorf("clear ignored rules: %w", err)
	}

	batch := &pgx.Batch{}
	for i, r := range rules {
		batch.Queue(insertRuleSQL, r.ID, r.Description, i)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert ignored rules: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	log.Debug().Int("count", len(rules)).Msg("Saved ignored rules to PostgreSQL")
	return nil
}
