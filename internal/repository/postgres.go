package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/proofpost-systems/proofpost/internal/models"
)

// PostgresRepository persists aggregates in PostgreSQL. Scalar columns are
// extracted for indexing; the full aggregate lives in a jsonb column so the
// document shape stays the single source of truth.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) SaveDelivery(ctx context.Context, d *models.Delivery) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode delivery: %w", err)
	}

	query := `
		INSERT INTO deliveries (id, document_ref, sender, recipient, method, status, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, data = EXCLUDED.data, updated_at = now()
	`
	_, err = r.pool.Exec(ctx, query,
		d.ID, d.DocumentRef, d.Sender, d.Recipient, string(d.Method), string(d.Status), data, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save delivery: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetDelivery(ctx context.Context, id string) (*models.Delivery, error) {
	var data []byte
	err := r.pool.QueryRow(ctx, `SELECT data FROM deliveries WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDeliveryNotFound
		}
		return nil, fmt.Errorf("failed to get delivery: %w", err)
	}
	var d models.Delivery
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode delivery: %w", err)
	}
	return &d, nil
}

func (r *PostgresRepository) SaveReceipt(ctx context.Context, rec *models.Receipt) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}

	query := `
		INSERT INTO receipts (id, delivery_id, signer, method, status, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = r.pool.Exec(ctx, query,
		rec.ID, rec.DeliveryID, rec.Signer, string(rec.Method), rec.Status, data, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save receipt: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetReceipt(ctx context.Context, id string) (*models.Receipt, error) {
	var data []byte
	err := r.pool.QueryRow(ctx, `SELECT data FROM receipts WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReceiptNotFound
		}
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	var rec models.Receipt
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}
	return &rec, nil
}

func (r *PostgresRepository) SaveServiceCase(ctx context.Context, c *models.ServiceCase) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode service case: %w", err)
	}

	query := `
		INSERT INTO service_cases (id, document_ref, respondent, service_type, status, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, data = EXCLUDED.data, updated_at = now()
	`
	_, err = r.pool.Exec(ctx, query,
		c.ID, c.DocumentRef, c.Respondent, string(c.ServiceType), string(c.Status), data, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save service case: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetServiceCase(ctx context.Context, id string) (*models.ServiceCase, error) {
	var data []byte
	err := r.pool.QueryRow(ctx, `SELECT data FROM service_cases WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceCaseNotFound
		}
		return nil, fmt.Errorf("failed to get service case: %w", err)
	}
	var c models.ServiceCase
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode service case: %w", err)
	}
	return &c, nil
}

func (r *PostgresRepository) SaveAffidavit(ctx context.Context, a *models.Affidavit) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode affidavit: %w", err)
	}

	query := `
		INSERT INTO affidavits (id, service_case_id, process_server, service_type, status, data, filed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = r.pool.Exec(ctx, query,
		a.ID, a.ServiceCaseID, a.ProcessServer, string(a.ServiceType), a.Status, data, a.FiledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save affidavit: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetAffidavitByCase(ctx context.Context, caseID string) (*models.Affidavit, error) {
	var data []byte
	err := r.pool.QueryRow(ctx, `SELECT data FROM affidavits WHERE service_case_id = $1`, caseID).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAffidavitNotFound
		}
		return nil, fmt.Errorf("failed to get affidavit: %w", err)
	}
	var a models.Affidavit
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode affidavit: %w", err)
	}
	return &a, nil
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}
