package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/playtimeuy/payments/internal/sale"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanSale reads a sale row. Expected column order matches selectSaleColumns.
func scanSale(s scanner) (*sale.Sale, error) {
	var (
		sl     sale.Sale
		status string
	)

	if err := s.Scan(
		&sl.ID, &sl.PromoterID, &sl.BuyerID, &sl.CreatorID, &sl.Title,
		&sl.FinalPrice, &sl.BasePrice, &sl.Commission, &sl.Net, &sl.Policy,
		&status,
		&sl.Gateway.PreferenceID, &sl.Gateway.PaymentID, &sl.Gateway.Status, &sl.Gateway.StatusDetail,
		&sl.CheckoutURL, &sl.SandboxCheckoutURL,
		&sl.CreatedAt, &sl.UpdatedAt, &sl.PaidAt,
	); err != nil {
		return nil, err
	}

	sl.Status = sale.Status(status)

	return &sl, nil
}

const selectSaleColumns = `
	id, promoter_id, buyer_id, creator_id, title,
	final_price, base_price, commission, net, policy,
	status,
	preference_id, payment_id, gateway_status, gateway_status_detail,
	checkout_url, sandbox_checkout_url,
	created_at, updated_at, paid_at
`

func (s *Store) CreateSale(ctx context.Context, sl *sale.Sale) error {
	query := `
		INSERT INTO sales (promoter_id, buyer_id, creator_id, title, final_price, base_price, commission, net, policy, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		sl.PromoterID,
		sl.BuyerID,
		sl.CreatorID,
		sl.Title,
		sl.FinalPrice,
		sl.BasePrice,
		sl.Commission,
		sl.Net,
		sl.Policy,
		sl.Status,
	).Scan(&sl.ID, &sl.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating sale: %w", err)
	}

	return nil
}

func (s *Store) GetSale(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	query := `SELECT ` + selectSaleColumns + ` FROM sales WHERE id = $1`

	sl, err := scanSale(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sale.ErrNotFound
		}

		return nil, fmt.Errorf("getting sale: %w", err)
	}

	return sl, nil
}

func (s *Store) ListSales(ctx context.Context, filter sale.ListFilter) ([]*sale.Sale, error) {
	query := `SELECT ` + selectSaleColumns + ` FROM sales WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.PromoterID != nil {
		query += fmt.Sprintf(" AND promoter_id = $%d", argIdx)

		args = append(args, *filter.PromoterID)
		argIdx++
	}

	if filter.BuyerID != nil {
		query += fmt.Sprintf(" AND buyer_id = $%d", argIdx)

		args = append(args, *filter.BuyerID)
		argIdx++
	}

	if filter.CreatedFrom != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)

		args = append(args, *filter.CreatedFrom)
		argIdx++
	}

	if filter.CreatedTo != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)

		args = append(args, *filter.CreatedTo)
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}
	defer rows.Close()

	var sales []*sale.Sale

	for rows.Next() {
		sl, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sale: %w", err)
		}

		sales = append(sales, sl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sale rows: %w", err)
	}

	return sales, nil
}

func (s *Store) AttachPreference(ctx context.Context, id uuid.UUID, ref sale.PreferenceRef) error {
	query := `
		UPDATE sales
		SET preference_id = $1, checkout_url = $2, sandbox_checkout_url = $3, updated_at = NOW()
		WHERE id = $4
	`

	res, err := s.db.ExecContext(ctx, query, ref.PreferenceID, ref.CheckoutURL, ref.SandboxCheckoutURL, id)
	if err != nil {
		return fmt.Errorf("attaching preference: %w", err)
	}

	return expectOneRow(res)
}

// MergePayment updates only the payment fields. paid_at is written once and kept
// on later deliveries so repeated notifications converge on the same record.
// MergePayment applies u in a single statement. With KeepTerminal the transition
// rule from sale.CanTransition is part of the WHERE clause, so a concurrent
// delivery cannot slip between the check and the write.
func (s *Store) MergePayment(ctx context.Context, id uuid.UUID, u sale.PaymentUpdate) error {
	query := `
		UPDATE sales
		SET payment_id = $1,
			gateway_status = $2,
			gateway_status_detail = $3,
			status = COALESCE($4::text, status),
			paid_at = COALESCE(paid_at, $5),
			updated_at = $6
		WHERE id = $7
			AND (
				NOT $8::boolean
				OR $4::text IS NULL
				OR status NOT IN ('paid', 'rejected')
				OR status = $4::text
				OR (status = 'rejected' AND $4::text = 'paid')
			)
	`

	var status *string
	if u.Status != nil {
		status = new(string(*u.Status))
	}

	res, err := s.db.ExecContext(ctx, query,
		u.PaymentID,
		u.GatewayStatus,
		u.StatusDetail,
		status,
		u.PaidAt,
		u.UpdatedAt,
		id,
		u.KeepTerminal,
	)
	if err != nil {
		return fmt.Errorf("merging payment: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n > 0 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM sales WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("checking sale: %w", err)
	}

	if !exists {
		return sale.ErrNotFound
	}

	return sale.ErrStale
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return sale.ErrNotFound
	}

	return nil
}
