package entity

import "time"

// LocationStock es la cantidad actual de un producto en una ubicación, con su
// contador de versión para concurrencia optimista. Es una proyección
// materializada del ledger: Quantity siempre debe igualar la suma de los deltas
// registrados para el par (producto, ubicación), y solo se escribe de forma
// atómica junto a un asiento del ledger y un incremento de Version.
// Se crea de forma lazy en el primer movimiento hacia la ubicación y nunca se borra.
type LocationStock struct {
	ProductID   string
	LocationID  string
	Quantity    int64 // nivel actual autoritativo (entero con signo)
	MinQuantity int64 // umbral de reposición por ubicación, independiente del umbral global del producto
	Version     int64 // incrementa en 1 con cada mutación exitosa
	UpdatedAt   time.Time
}

// BelowMin indica si el nivel actual está en o por debajo del umbral de reposición.
func (s *LocationStock) BelowMin() bool {
	return s.MinQuantity > 0 && s.Quantity <= s.MinQuantity
}
