package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrVersionConflict   = errors.New("conflicto de versión optimista")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// InsufficientStockError indica que la deducción solicitada excede la cantidad actual.
// Incluye CurrentQuantity y Shortfall para que el caller pueda ofrecer un ajuste
// compensatorio (top-up) en lugar de fallar sin contexto.
type InsufficientStockError struct {
	ProductID       string
	LocationID      string
	Requested       int64
	CurrentQuantity int64
	Shortfall       int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s en ubicación %s: solicitado %d, disponible %d (faltante %d)",
		e.ProductID, e.LocationID, e.Requested, e.CurrentQuantity, e.Shortfall)
}

// Unwrap permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// NewInsufficientStockError construye el error calculando el faltante.
func NewInsufficientStockError(productID, locationID string, requested, current int64) *InsufficientStockError {
	shortfall := requested - current
	if shortfall < 0 {
		shortfall = 0
	}
	return &InsufficientStockError{
		ProductID:       productID,
		LocationID:      locationID,
		Requested:       requested,
		CurrentQuantity: current,
		Shortfall:       shortfall,
	}
}

// VersionConflictError indica que la versión esperada por el caller ya no coincide
// con la almacenada (lost update). Siempre es reintentable tras releer.
type VersionConflictError struct {
	ProductID       string
	LocationID      string
	ExpectedVersion int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("conflicto de versión para producto %s en ubicación %s: la versión esperada %d ya no es vigente",
		e.ProductID, e.LocationID, e.ExpectedVersion)
}

// Unwrap permite errors.Is(err, ErrVersionConflict).
func (e *VersionConflictError) Unwrap() error { return ErrVersionConflict }

// NewVersionConflictError construye el error de versión vencida.
func NewVersionConflictError(productID, locationID string, expectedVersion int64) *VersionConflictError {
	return &VersionConflictError{
		ProductID:       productID,
		LocationID:      locationID,
		ExpectedVersion: expectedVersion,
	}
}
