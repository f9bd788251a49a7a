package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"training_tracker/internal/models"
)

// Queryer is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx, so
// repositories work the same inside and outside a transaction.
type Queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ Queryer = (*pgxpool.Pool)(nil)
	_ Queryer = (pgx.Tx)(nil)
)

// beginner is implemented by *pgxpool.Pool and pgx.Tx (nested savepoints).
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// inTx runs fn in a transaction when db can start one, otherwise on db as is.
func inTx(ctx context.Context, db Queryer, fn func(q Queryer) error) error {
	b, ok := db.(beginner)
	if !ok {
		return fn(db)
	}
	return pgx.BeginFunc(ctx, b, func(tx pgx.Tx) error {
		return fn(tx)
	})
}

// translateError maps driver errors to the sentinel errors in models.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", models.ErrConflict, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: referenced row does not exist (%s)", models.ErrInvalidInput, pgErr.ConstraintName)
		case "23514", "22P02":
			return fmt.Errorf("%w: %s", models.ErrInvalidInput, pgErr.Message)
		}
	}
	return err
}

func dateArg(d models.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.Time()
}

func optDateArg(d *models.Date) any {
	if d == nil {
		return nil
	}
	return dateArg(*d)
}

func fromPgDate(d pgtype.Date) models.Date {
	if !d.Valid {
		return models.Date{}
	}
	return models.DateOf(d.Time)
}

func fromPgDatePtr(d pgtype.Date) *models.Date {
	if !d.Valid {
		return nil
	}
	v := models.DateOf(d.Time)
	return &v
}
