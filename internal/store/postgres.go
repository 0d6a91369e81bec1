package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/donaldgifford/catalog-watch/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
// Snapshot records live in a JSONB column; one row per (tenant, seq).
//
// TODO(test): PostgresStore methods require live Postgres, tested via integration tests.
type PostgresStore struct {
	pool     *pgxpool.Pool
	nowFunc  func() time.Time
	poolSize int32
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithPostgresNowFunc overrides the capture-time clock for tests.
func WithPostgresNowFunc(f func() time.Time) PostgresOption {
	return func(s *PostgresStore) {
		s.nowFunc = f
	}
}

// WithPoolSize sets the maximum number of pooled connections.
func WithPoolSize(n int) PostgresOption {
	return func(s *PostgresStore) {
		if n > 0 {
			s.poolSize = int32(n)
		}
	}
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(
	ctx context.Context,
	connString string,
	opts ...PostgresOption,
) (*PostgresStore, error) {
	s := &PostgresStore{nowFunc: time.Now, poolSize: defaultPoolSize}
	for _, opt := range opts {
		opt(s)
	}

	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = s.poolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s.pool = pool
	return s, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// AppendSnapshot normalizes records and inserts them under the tenant's next
// sequence number. The seq assignment and insert happen in one statement, so
// a failed write leaves no partial snapshot.
func (s *PostgresStore) AppendSnapshot(
	ctx context.Context,
	tenant string,
	records []domain.Record,
) (int, error) {
	normalized := Normalize(records)

	payload, err := json.Marshal(normalized)
	if err != nil {
		return 0, fmt.Errorf("marshaling records: %w", err)
	}

	args := pgx.NamedArgs{
		"tenant_id":   tenant,
		"records":     payload,
		"captured_at": s.nowFunc(),
	}

	var seq int
	if err := s.pool.QueryRow(ctx, queryAppendSnapshot, args).Scan(&seq); err != nil {
		return 0, fmt.Errorf("appending snapshot: %w", err)
	}
	return seq, nil
}

// GetSnapshot reads one snapshot by (tenant, seq).
func (s *PostgresStore) GetSnapshot(
	ctx context.Context,
	tenant string,
	seq int,
) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{Tenant: tenant, Seq: seq}

	var payload []byte
	err := s.pool.QueryRow(ctx, queryGetSnapshot, tenant, seq).
		Scan(&payload, &snap.CapturedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	if err := json.Unmarshal(payload, &snap.Records); err != nil {
		return nil, fmt.Errorf("unmarshaling records: %w", err)
	}
	return snap, nil
}

// ListSequences returns the tenant's stored sequence numbers, ascending.
func (s *PostgresStore) ListSequences(ctx context.Context, tenant string) ([]int, error) {
	rows, err := s.pool.Query(ctx, queryListSequences, tenant)
	if err != nil {
		return nil, fmt.Errorf("querying sequences: %w", err)
	}
	defer rows.Close()

	var seqs []int
	for rows.Next() {
		var seq int
		if err := rows.Scan(&seq); err != nil {
			return nil, fmt.Errorf("scanning sequence: %w", err)
		}
		seqs = append(seqs, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sequences: %w", err)
	}
	return seqs, nil
}

// PruneSnapshots drops all but the newest keepLast snapshots per tenant.
func (s *PostgresStore) PruneSnapshots(ctx context.Context, keepLast int) (int, error) {
	if keepLast < 1 {
		keepLast = 1
	}

	tag, err := s.pool.Exec(ctx, queryPruneSnapshots, keepLast)
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
