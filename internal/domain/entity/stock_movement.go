package entity

import "time"

// StockMovement registro inmutable de un cambio de stock de un producto.
// Delta es la variación solicitada; AppliedDelta la realmente aplicada tras recortar en cero.
// RequestID vacío = ajuste manual; si no, LineIndex identifica la línea entregada.
type StockMovement struct {
	ID           string
	ProductID    string
	Delta        int
	AppliedDelta int
	RequestID    string
	LineIndex    *int
	UserID       string
	Date         time.Time
	Comment      string
}

// Clone devuelve una copia independiente.
func (m *StockMovement) Clone() *StockMovement {
	if m == nil {
		return nil
	}
	c := *m
	if m.LineIndex != nil {
		idx := *m.LineIndex
		c.LineIndex = &idx
	}
	return &c
}
