package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario (multi-ubicación).
// El nombre se descompone en BaseName + Variant + Size + Unit para ordenar y
// agrupar variantes del mismo producto base. Una vez referenciado por asientos
// del ledger solo se editan sus metadatos administrativos.
type Product struct {
	ID                string
	Name              string // nombre completo para mostrar
	BaseName          string
	Variant           string
	Size              *decimal.Decimal // tamaño numérico opcional (ej. 750 para 750ml)
	Unit              string           // ml, g, unidad, etc.
	LowStockThreshold int64            // umbral global de alerta de stock bajo
	Cost              decimal.Decimal
	Price             decimal.Decimal // precio de venta
	DeletedAt         *time.Time      // soft delete; nil = activo
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsDeleted indica si el producto fue marcado como eliminado (soft delete).
func (p *Product) IsDeleted() bool {
	return p.DeletedAt != nil
}
