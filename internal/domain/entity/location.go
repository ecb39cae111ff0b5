package entity

import "time"

// Location representa una ubicación física donde se almacena inventario
// (bodega, sucursal, punto de venta). Punto de referencia estable para
// particionar el stock.
type Location struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
