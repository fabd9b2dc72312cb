package clti

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/limbsalvage/clti/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type caseRepoPG struct{ pool *pgxpool.Pool }

func NewCaseRepoPG(pool *pgxpool.Pool) CaseRepository { return &caseRepoPG{pool: pool} }

func (r *caseRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const caseCols = `id, label, snapshot, clinical_stage, amputation_risk, glass_stage,
	recommended_method, created_by, created_at, updated_at`

func (r *caseRepoPG) scanCase(row pgx.Row) (*CaseRecord, error) {
	var c CaseRecord
	var raw []byte
	var risk string
	err := row.Scan(&c.ID, &c.Label, &raw, &c.ClinicalStage, &risk, &c.GlassStage,
		&c.Method, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCaseNotFound
	}
	if err != nil {
		return nil, err
	}
	c.AmputationRisk = Risk(risk)
	if err := json.Unmarshal(raw, &c.Snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", c.ID, err)
	}
	return &c, nil
}

func (r *caseRepoPG) Create(ctx context.Context, c *CaseRecord) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.syncColumns()
	raw, err := json.Marshal(c.Snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO clti_case (id, label, snapshot, clinical_stage, amputation_risk,
			glass_stage, recommended_method, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at`,
		c.ID, c.Label, raw, c.ClinicalStage, string(c.AmputationRisk),
		c.GlassStage, c.Method, c.CreatedBy).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *caseRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*CaseRecord, error) {
	return r.scanCase(r.conn(ctx).QueryRow(ctx, `SELECT `+caseCols+` FROM clti_case WHERE id = $1`, id))
}

func (r *caseRepoPG) Update(ctx context.Context, c *CaseRecord) error {
	c.syncColumns()
	raw, err := json.Marshal(c.Snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	err = r.conn(ctx).QueryRow(ctx, `
		UPDATE clti_case SET label=$2, snapshot=$3, clinical_stage=$4, amputation_risk=$5,
			glass_stage=$6, recommended_method=$7, updated_at=NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		c.ID, c.Label, raw, c.ClinicalStage, string(c.AmputationRisk),
		c.GlassStage, c.Method).Scan(&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCaseNotFound
	}
	return err
}

func (r *caseRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM clti_case WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCaseNotFound
	}
	return nil
}

func (r *caseRepoPG) List(ctx context.Context, limit, offset int) ([]*CaseRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM clti_case`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+caseCols+` FROM clti_case ORDER BY updated_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*CaseRecord
	for rows.Next() {
		c, err := r.scanCase(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}
