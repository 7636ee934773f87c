package rounding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type workspaceRepoPG struct{ db queryable }

// NewWorkspaceRepoPG stores workspaces in the rounding_workspace table.
func NewWorkspaceRepoPG(pool *pgxpool.Pool) WorkspaceRepository {
	return &workspaceRepoPG{db: pool}
}

func (r *workspaceRepoPG) Load(ctx context.Context, key string) ([]*Sheet, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	var (
		version int
		payload []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT version, payload FROM rounding_workspace WHERE key = $1`, key,
	).Scan(&version, &payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load workspace %s: %w", key, err)
	}
	if version != SchemaVersion {
		return nil, fmt.Errorf("%w: stored %d, want %d", ErrSchemaVersion, version, SchemaVersion)
	}

	var sheets []*Sheet
	if err := json.Unmarshal(payload, &sheets); err != nil {
		return nil, fmt.Errorf("decode workspace %s: %w", key, err)
	}
	return sheets, nil
}

func (r *workspaceRepoPG) Save(ctx context.Context, key string, sheets []*Sheet) error {
	if err := validateKey(key); err != nil {
		return err
	}
	payload, err := json.Marshal(sheets)
	if err != nil {
		return fmt.Errorf("encode workspace %s: %w", key, err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO rounding_workspace (key, version, payload, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (key) DO UPDATE
		SET version = EXCLUDED.version, payload = EXCLUDED.payload, updated_at = NOW()`,
		key, SchemaVersion, payload)
	if err != nil {
		return fmt.Errorf("save workspace %s: %w", key, err)
	}
	return nil
}

func (r *workspaceRepoPG) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM rounding_workspace WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete workspace %s: %w", key, err)
	}
	return nil
}
