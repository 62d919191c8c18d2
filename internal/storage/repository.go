package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: database not configured")
	// ErrBondNotFound is returned when a bond code is not catalogued.
	ErrBondNotFound = errors.New("storage: bond not found")
)

const (
	ensureSchemaSQL = `CREATE TABLE IF NOT EXISTS bonds (
        code              TEXT PRIMARY KEY,
        description       TEXT NOT NULL DEFAULT '',
        payment_frequency INTEGER NOT NULL CHECK (payment_frequency > 0),
        coupon_rate       NUMERIC(12, 8) NOT NULL CHECK (coupon_rate >= 0),
        face_value        NUMERIC(20, 4) NOT NULL CHECK (face_value > 0),
        years_remaining   INTEGER NOT NULL CHECK (years_remaining > 0),
        created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
    );`

	upsertBondSQL = `INSERT INTO bonds (
        code,
        description,
        payment_frequency,
        coupon_rate,
        face_value,
        years_remaining
    ) VALUES (
        $1,$2,$3,$4,$5,$6
    )
    ON CONFLICT (code) DO UPDATE
    SET
        description       = EXCLUDED.description,
        payment_frequency = EXCLUDED.payment_frequency,
        coupon_rate       = EXCLUDED.coupon_rate,
        face_value        = EXCLUDED.face_value,
        years_remaining   = EXCLUDED.years_remaining;`

	getBondSQL = `SELECT
        code,
        description,
        payment_frequency,
        coupon_rate::text,
        face_value::text,
        years_remaining,
        created_at
    FROM bonds
    WHERE code = $1;`

	listBondsSQL = `SELECT
        code,
        description,
        payment_frequency,
        coupon_rate::text,
        face_value::text,
        years_remaining,
        created_at
    FROM bonds
    ORDER BY code
    LIMIT $1;`
)

// BondCatalog is the parameter source for catalogued bonds.
type BondCatalog interface {
	GetBond(ctx context.Context, code string) (BondRecord, error)
	ListBonds(ctx context.Context, limit int) ([]BondRecord, error)
	UpsertBond(ctx context.Context, rec BondRecord) error
}

// Store is the Postgres-backed BondCatalog.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// EnsureSchema creates the bonds table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, ensureSchemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// UpsertBond inserts or replaces a catalogued bond.
func (s *Store) UpsertBond(ctx context.Context, rec BondRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	_, execErr := pool.Exec(ctx, upsertBondSQL,
		strings.TrimSpace(rec.Code),
		rec.Description,
		rec.PaymentFrequency,
		rec.CouponRate.String(),
		rec.FaceValue.String(),
		rec.YearsRemaining,
	)
	if execErr != nil {
		return fmt.Errorf("upsert bond: %w", execErr)
	}
	return nil
}

// GetBond loads one bond by code.
func (s *Store) GetBond(ctx context.Context, code string) (BondRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return BondRecord{}, err
	}

	rec, err := scanBond(pool.QueryRow(ctx, getBondSQL, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return BondRecord{}, fmt.Errorf("%w: %s", ErrBondNotFound, code)
	}
	if err != nil {
		return BondRecord{}, fmt.Errorf("get bond %s: %w", code, err)
	}
	return rec, nil
}

// ListBonds lists catalogued bonds ordered by code.
func (s *Store) ListBonds(ctx context.Context, limit int) ([]BondRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listBondsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list bonds: %w", queryErr)
	}
	defer rows.Close()

	bonds := make([]BondRecord, 0, limit)
	for rows.Next() {
		rec, scanErr := scanBond(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		bonds = append(bonds, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return bonds, nil
}

func scanBond(row pgx.Row) (BondRecord, error) {
	var (
		rec       BondRecord
		couponStr string
		faceStr   string
	)
	if err := row.Scan(
		&rec.Code,
		&rec.Description,
		&rec.PaymentFrequency,
		&couponStr,
		&faceStr,
		&rec.YearsRemaining,
		&rec.CreatedAt,
	); err != nil {
		return BondRecord{}, err
	}

	var err error
	if rec.CouponRate, err = decimal.NewFromString(couponStr); err != nil {
		return BondRecord{}, fmt.Errorf("parse coupon rate: %w", err)
	}
	if rec.FaceValue, err = decimal.NewFromString(faceStr); err != nil {
		return BondRecord{}, fmt.Errorf("parse face value: %w", err)
	}
	return rec, nil
}

var _ BondCatalog = (*Store)(nil)
