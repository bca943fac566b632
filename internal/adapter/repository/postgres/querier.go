package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/makhzone/internal/usecase"
)

// Querier is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txOf unwraps the pgx transaction behind a usecase.Transaction.
func txOf(tx usecase.Transaction) pgx.Tx {
	return tx.(*Tx).PgxTx()
}

// notFound maps pgx.ErrNoRows to the given domain error.
func notFound(err, domainErr error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domainErr
	}

	return err
}

// foreignKeyViolation is the SQLSTATE for a row still referenced elsewhere.
const foreignKeyViolation = "23503"

// inUse maps a foreign key violation to the given domain error.
func inUse(err, domainErr error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return domainErr
	}

	return err
}

// deleteGuarded runs a DELETE that skips referenced rows. When nothing was
// deleted, existsSQL tells a missing row apart from one still in use.
func deleteGuarded(ctx context.Context, db Querier, deleteSQL, existsSQL, id string, notFoundErr, inUseErr error) error {
	tag, err := db.Exec(ctx, deleteSQL, id)
	if err != nil {
		return inUse(err, inUseErr)
	}

	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := db.QueryRow(ctx, existsSQL, id).Scan(&exists); err != nil {
		return err
	}

	if exists {
		return inUseErr
	}

	return notFoundErr
}

// collect scans every row with scan and closes rows.
func collect[T any](rows pgx.Rows, scan func(row pgx.Row) (*T, error)) ([]*T, error) {
	defer rows.Close()

	items := make([]*T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func nullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
