// Package pgvector implements a vectorstore.VectorStore backed by
// PostgreSQL's pgvector extension, reached over github.com/jackc/pgx/v5.
package pgvector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lookatitude/beluga-ai/config"
	"github.com/lookatitude/beluga-ai/rag/vectorstore"
	"github.com/lookatitude/beluga-ai/schema"
)

func init() {
	vectorstore.Register("pgvector", func(cfg config.ProviderConfig) (vectorstore.VectorStore, error) {
		return NewFromConfig(cfg)
	})
}

const (
	defaultTable     = "documents"
	defaultDimension = 1536
)

// Pool is the subset of *pgxpool.Pool this store needs, narrowed so tests
// can substitute a mock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store is a pgvector-backed VectorStore.
type Store struct {
	pool      Pool
	table     string
	dimension int
}

// Option configures a Store.
type Option func(*Store)

// WithTable overrides the default "documents" table name.
func WithTable(name string) Option {
	return func(s *Store) { s.table = name }
}

// WithDimension overrides the default 1536-dimension embedding column.
func WithDimension(d int) Option {
	return func(s *Store) { s.dimension = d }
}

// New wraps an existing pool. Use NewFromConfig to build one from
// config.ProviderConfig instead.
func New(pool Pool, opts ...Option) *Store {
	s := &Store{pool: pool, table: defaultTable, dimension: defaultDimension}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromConfig opens a pool against cfg.BaseURL (a postgres connection
// string) and wraps it in a Store. cfg.Options may carry "table" (string)
// and "dimension" (int) overrides.
func NewFromConfig(cfg config.ProviderConfig) (*Store, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("vectorstore/pgvector: base_url is required")
	}
	pool, err := pgxpool.New(context.Background(), cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("vectorstore/pgvector: connect: %w", err)
	}

	var opts []Option
	if table, ok := config.GetOption[string](cfg, "table"); ok {
		opts = append(opts, WithTable(table))
	}
	if dim, ok := config.GetOption[int](cfg, "dimension"); ok {
		opts = append(opts, WithDimension(dim))
	}
	return New(pool, opts...), nil
}

// EnsureTable creates the pgvector extension and the backing table if they
// do not already exist. Callers typically run this once at startup.
func (s *Store) EnsureTable(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("vectorstore/pgvector: create extension: %w", err)
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	embedding vector(%d),
	content TEXT,
	metadata JSONB
)`, s.table, s.dimension)
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("vectorstore/pgvector: create table: %w", err)
	}
	return nil
}

func (s *Store) Add(ctx context.Context, docs []schema.Document, embeddings [][]float32) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("vectorstore/pgvector: docs length (%d) does not match embeddings length (%d)", len(docs), len(embeddings))
	}

	sql := fmt.Sprintf(`INSERT INTO %s (id, embedding, content, metadata) VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET embedding = excluded.embedding, content = excluded.content, metadata = excluded.metadata`, s.table)

	for i, doc := range docs {
		meta, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("vectorstore/pgvector: marshal metadata for %q: %w", doc.ID, err)
		}
		if _, err := s.pool.Exec(ctx, sql, doc.ID, vectorLiteral(embeddings[i]), doc.Content, meta); err != nil {
			return fmt.Errorf("vectorstore/pgvector: insert %q: %w", doc.ID, err)
		}
	}
	return nil
}

func (s *Store) Search(ctx context.Context, query []float32, k int, opts ...vectorstore.SearchOption) ([]schema.Document, error) {
	cfg := &vectorstore.SearchConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	op := distanceOperator(cfg.Strategy)
	sql := fmt.Sprintf("SELECT id, content, metadata, embedding %s $1 AS score FROM %s", op, s.table)
	args := []any{vectorLiteral(query), k}

	i := 0
	for key, value := range cfg.Filter {
		if i == 0 {
			sql += " WHERE"
		} else {
			sql += " AND"
		}
		sql += fmt.Sprintf(" metadata->>$%d = $%d", len(args)+1, len(args)+2)
		args = append(args, key, value)
		i++
	}
	sql += " ORDER BY score LIMIT $2"

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("vectorstore/pgvector: search: %w", err)
	}
	defer rows.Close()

	var docs []schema.Document
	for rows.Next() {
		var (
			id, content string
			metaBytes   []byte
			score       float64
		)
		if err := rows.Scan(&id, &content, &metaBytes, &score); err != nil {
			return nil, fmt.Errorf("vectorstore/pgvector: scan: %w", err)
		}
		var metadata map[string]any
		if len(metaBytes) > 0 {
			if err := json.Unmarshal(metaBytes, &metadata); err != nil {
				return nil, fmt.Errorf("vectorstore/pgvector: unmarshal metadata for %q: %w", id, err)
			}
		}
		if score < cfg.Threshold {
			continue
		}
		docs = append(docs, schema.Document{ID: id, Content: content, Metadata: metadata, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vectorstore/pgvector: %w", err)
	}
	return docs, nil
}

func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, len(ids))
	placeholders := ""
	for i, id := range ids {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	sql := fmt.Sprintf("DELETE FROM %s WHERE id IN (%s)", s.table, placeholders)
	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("vectorstore/pgvector: delete: %w", err)
	}
	return nil
}

// distanceOperator maps a similarity strategy to pgvector's operator: <=>
// for cosine distance, <#> for negative inner product, <-> for Euclidean.
func distanceOperator(strategy vectorstore.SearchStrategy) string {
	switch strategy {
	case vectorstore.DotProduct:
		return "<#>"
	case vectorstore.Euclidean:
		return "<->"
	default:
		return "<=>"
	}
}

func vectorLiteral(v []float32) string {
	b := make([]byte, 0, len(v)*8+2)
	b = append(b, '[')
	for i, f := range v {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, []byte(fmt.Sprintf("%g", f))...)
	}
	b = append(b, ']')
	return string(b)
}
