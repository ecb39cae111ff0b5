package entity

import "time"

// Tipos de asiento del ledger de stock.
const (
	LogTypeAdjustment = "ADJUSTMENT" // entrada/salida/corrección en una sola ubicación
	LogTypeTransfer   = "TRANSFER"   // traslado entre ubicaciones
)

// StockLedgerEntry es un asiento inmutable del ledger de stock: un cambio de
// cantidad con signo para un producto en una ubicación. El ledger es append-only
// y constituye la fuente de verdad auditable; LocationStock es una caché derivada
// que siempre debe poder reconstruirse reproduciendo los asientos.
type StockLedgerEntry struct {
	ID         string
	ProductID  string
	LocationID string
	UserID     string
	Delta      int64  // positivo entrada, negativo salida
	LogType    string // ADJUSTMENT | TRANSFER
	Note       string // texto libre opcional
	BatchID    string // correlación de asientos de una misma acción de usuario; vacío si no aplica
	CreatedAt  time.Time
}
