package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UOW struct {
	Pool *pgxpool.Pool
	Tx   pgx.Tx
}

func (u *UOW) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := u.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("can't begin tx, %v", err)
	}
	u.Tx = tx
	return u.Tx, nil
}

func (u *UOW) GetTx() pgx.Tx {
	return u.Tx
}

func (u *UOW) Commit() error {
	if u.Tx == nil {
		return fmt.Errorf("transaction is not started yet")
	}
	return u.Tx.Commit(context.Background())
}

func (u *UOW) Rollback() error {
	if u.Tx == nil {
		return fmt.Errorf("transaction is not started yet")
	}
	return u.Tx.Rollback(context.Background())
}

// Finalize commits when *err is nil and rolls back otherwise.
// A failed commit is reported through err.
func (u *UOW) Finalize(err *error) {
	if *err != nil {
		if rbErr := u.Rollback(); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.Error("err rolling back tx", "err", rbErr)
		}
		return
	}
	if commitErr := u.Commit(); commitErr != nil {
		*err = fmt.Errorf("error commiting tx, %v", commitErr)
	}
}

type UOWFactory struct {
	Pool *pgxpool.Pool
}

func (u *UOWFactory) GetUoW() *UOW {
	return &UOW{
		Pool: u.Pool,
	}
}

func NewUoWFactory(pool *pgxpool.Pool) *UOWFactory {
	return &UOWFactory{
		Pool: pool,
	}
}
