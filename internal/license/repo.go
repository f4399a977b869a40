package license

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository is the storage collaborator for license records. Reads go
// straight to the database; writes run inside the caller's transaction.
type Repository interface {
	ListAll(ctx context.Context) ([]Record, error)
	Get(ctx context.Context, id string) (*Record, error)
	GetByKey(ctx context.Context, key string) (*Record, error)
	ListExpiring(ctx context.Context, before string) ([]Record, error)

	Upsert(ctx context.Context, tx *sqlx.Tx, rec *Record) error
	DeleteByID(ctx context.Context, tx *sqlx.Tx, id string) error
}

type repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repository {
	return &repo{db: db}
}

func (r *repo) ListAll(ctx context.Context) ([]Record, error) {
	out := []Record{}
	if err := r.db.SelectContext(ctx, &out, listLicensesSQL); err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	return out, nil
}

func (r *repo) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := r.db.GetContext(ctx, &rec, getLicenseSQL, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get license: %w", err)
	}
	return &rec, nil
}

func (r *repo) GetByKey(ctx context.Context, key string) (*Record, error) {
	var rec Record
	err := r.db.GetContext(ctx, &rec, getLicenseByKeySQL, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: key %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("get license by key: %w", err)
	}
	return &rec, nil
}

func (r *repo) ListExpiring(ctx context.Context, before string) ([]Record, error) {
	out := []Record{}
	if err := r.db.SelectContext(ctx, &out, listExpiringSQL, before); err != nil {
		return nil, fmt.Errorf("list expiring licenses: %w", err)
	}
	return out, nil
}

func (r *repo) Upsert(ctx context.Context, tx *sqlx.Tx, rec *Record) error {
	if _, err := tx.NamedExecContext(ctx, upsertLicenseSQL, rec); err != nil {
		return fmt.Errorf("upsert license: %w", err)
	}
	return nil
}

func (r *repo) DeleteByID(ctx context.Context, tx *sqlx.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, deleteLicenseSQL, id); err != nil {
		return fmt.Errorf("delete license: %w", err)
	}
	return nil
}
