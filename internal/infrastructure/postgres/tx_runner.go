package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jcastellr/bodega-api/internal/application/fulfillment"
	"github.com/jcastellr/bodega-api/internal/application/orders"
	"github.com/jcastellr/bodega-api/internal/application/stock"
)

var _ stock.TxRunner = (*TxRunner)(nil)
var _ fulfillment.TxRunner = (*FulfillmentTxRunner)(nil)
var _ orders.TxRunner = (*OrdersTxRunner)(nil)

// TxRunner ejecuta callbacks de stock dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos stock.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := stock.Repos{
		Stock:  NewLocationStockRepository(tx),
		Ledger: NewStockLedgerRepository(tx),
	}

	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// FulfillmentTxRunner ejecuta callbacks de despacho dentro de una transacción,
// con savepoints anidados por línea (pgx traduce Begin sobre una tx a SAVEPOINT).
type FulfillmentTxRunner struct {
	pool *pgxpool.Pool
}

// NewFulfillmentTxRunner construye el runner con el pool.
func NewFulfillmentTxRunner(pool *pgxpool.Pool) *FulfillmentTxRunner {
	return &FulfillmentTxRunner{pool: pool}
}

// Run inicia una transacción y ejecuta fn con repos atados a la tx y un runner
// de savepoints. Si una línea falla dentro del savepoint solo se revierte esa
// línea, no la transacción exterior.
func (r *FulfillmentTxRunner) Run(ctx context.Context, fn func(repos fulfillment.Repos, savepoint fulfillment.SavepointRunner) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := fulfillment.Repos{
		Orders: NewExternalOrderRepository(tx),
		Stock:  NewLocationStockRepository(tx),
		Ledger: NewStockLedgerRepository(tx),
	}

	savepoint := func(inner func(repos fulfillment.Repos) error) error {
		nested, err := tx.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin savepoint: %w", err)
		}
		nestedRepos := fulfillment.Repos{
			Orders: NewExternalOrderRepository(nested),
			Stock:  NewLocationStockRepository(nested),
			Ledger: NewStockLedgerRepository(nested),
		}
		if err := inner(nestedRepos); err != nil {
			_ = nested.Rollback(ctx)
			return err
		}
		if err := nested.Commit(ctx); err != nil {
			return fmt.Errorf("release savepoint: %w", err)
		}
		return nil
	}

	if err := fn(repos, savepoint); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// OrdersTxRunner ejecuta callbacks de ingesta de pedidos dentro de una transacción.
type OrdersTxRunner struct {
	pool *pgxpool.Pool
}

// NewOrdersTxRunner construye el runner con el pool.
func NewOrdersTxRunner(pool *pgxpool.Pool) *OrdersTxRunner {
	return &OrdersTxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *OrdersTxRunner) Run(ctx context.Context, fn func(repos orders.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := orders.Repos{
		Orders: NewExternalOrderRepository(tx),
		Links:  NewProductLinkRepository(tx),
	}

	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
