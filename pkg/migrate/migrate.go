// Package migrate ejecuta las migraciones embebidas del esquema con goose.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Up aplica todas las migraciones pendientes.
func Up(ctx context.Context, db *sql.DB) error {
	return run(ctx, db, "up")
}

// Down revierte la última migración aplicada.
func Down(ctx context.Context, db *sql.DB) error {
	return run(ctx, db, "down")
}

// Status imprime el estado de las migraciones por stdout (salida interna de goose).
func Status(ctx context.Context, db *sql.DB) error {
	return run(ctx, db, "status")
}

func run(ctx context.Context, db *sql.DB, command string) error {
	if db == nil {
		return fmt.Errorf("db es requerido")
	}

	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("configurando dialecto goose: %w", err)
	}

	if err := goose.RunContext(ctx, command, db, "migrations"); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
