package entity

import "time"

// Product representa un artículo de suministros de oficina con su stock físico.
// QtyPhysical nunca es negativo; QtyInitial es la cantidad al alta y no cambia nunca
// (ancla del informe de conciliación contra los movimientos).
type Product struct {
	ID            string
	Label         string
	UnitOfMeasure string
	QtyPhysical   int
	QtyMinimum    int
	QtyInitial    int
	Location      string
	Category      string
	PictureURL    string
	Version       int64 // token de revisión para escritura condicional
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsLowStock indica si el stock físico está en o por debajo del mínimo.
func (p *Product) IsLowStock() bool {
	return p.QtyPhysical <= p.QtyMinimum
}

// Clone devuelve una copia independiente.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
