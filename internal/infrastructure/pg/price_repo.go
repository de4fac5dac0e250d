package pg

import (
	"context"
	"time"

	"dolarcaro-service/internal/application"
	"dolarcaro-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var _ application.HistoryStore = (*PriceRepo)(nil)

// PriceRepo persists PriceRecords in an append-only table. The latest
// record is the newest row per key, so a single INSERT keeps history
// and "latest" consistent without a second write.
type PriceRepo struct{ db *DB }

func NewPriceRepo(db *DB) *PriceRepo { return &PriceRepo{db: db} }

const recordColumns = `
    product_key, display_name,
    origin_price::text, reference_price::text, converted_price::text, exchange_rate::text,
    origin_fallback, reference_fallback, stale_rate,
    origin_url, reference_url, recorded_at`

func (r *PriceRepo) Append(ctx context.Context, key string, rec domain.PriceRecord) error {
	const q = `
        INSERT INTO price_history(
            product_key, display_name,
            origin_price, reference_price, converted_price, exchange_rate,
            origin_fallback, reference_fallback, stale_rate,
            origin_url, reference_url, recorded_at, checked_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`
	_, err := r.db.Pool.Exec(ctx, q,
		key, rec.DisplayName,
		rec.OriginPrice.String(), rec.ReferencePrice.String(), rec.ConvertedPrice.String(), rec.ExchangeRate.String(),
		rec.OriginFallback, rec.ReferenceFallback, rec.StaleRate,
		rec.OriginURL, rec.ReferenceURL, rec.Timestamp,
	)
	return err
}

func (r *PriceRepo) Latest(ctx context.Context, key string) (domain.PriceRecord, error) {
	q := `SELECT ` + recordColumns + `
        FROM price_history WHERE product_key=$1
        ORDER BY recorded_at DESC, id DESC LIMIT 1`
	rec, err := scanRecord(r.db.Pool.QueryRow(ctx, q, key))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.PriceRecord{}, application.ErrNotFound
		}
		return domain.PriceRecord{}, err
	}
	return rec, nil
}

func (r *PriceRepo) History(ctx context.Context, key string, limit int) ([]domain.PriceRecord, error) {
	q := `SELECT ` + recordColumns + `
        FROM price_history WHERE product_key=$1
        ORDER BY recorded_at DESC, id DESC LIMIT $2`
	rows, err := r.db.Pool.Query(ctx, q, key, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PriceRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PriceRepo) Touch(ctx context.Context, key string, at time.Time) error {
	const q = `
        UPDATE price_history SET checked_at=$2
        WHERE id = (
            SELECT id FROM price_history WHERE product_key=$1
            ORDER BY recorded_at DESC, id DESC LIMIT 1)`
	tag, err := r.db.Pool.Exec(ctx, q, key, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return application.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (domain.PriceRecord, error) {
	var (
		rec                                  domain.PriceRecord
		origin, reference, converted, rateTx string
	)
	if err := row.Scan(
		&rec.ProductKey, &rec.DisplayName,
		&origin, &reference, &converted, &rateTx,
		&rec.OriginFallback, &rec.ReferenceFallback, &rec.StaleRate,
		&rec.OriginURL, &rec.ReferenceURL, &rec.Timestamp,
	); err != nil {
		return domain.PriceRecord{}, err
	}
	var err error
	if rec.OriginPrice, err = decimal.NewFromString(origin); err != nil {
		return domain.PriceRecord{}, err
	}
	if rec.ReferencePrice, err = decimal.NewFromString(reference); err != nil {
		return domain.PriceRecord{}, err
	}
	if rec.ConvertedPrice, err = decimal.NewFromString(converted); err != nil {
		return domain.PriceRecord{}, err
	}
	if rec.ExchangeRate, err = decimal.NewFromString(rateTx); err != nil {
		return domain.PriceRecord{}, err
	}
	rec.Timestamp = rec.Timestamp.UTC()
	return rec, nil
}
