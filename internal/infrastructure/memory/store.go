// Package memory implementa los puertos de persistencia en memoria con las mismas
// garantías que el adaptador PostgreSQL: aislamiento por registro y escritura
// condicional por versión, sin transacciones entre registros.
package memory

import (
	"sync"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// Store mantiene las cuatro colecciones. Los repositorios guardan y devuelven copias,
// de modo que ningún llamador comparte estado mutable con el almacén.
type Store struct {
	mu         sync.RWMutex
	products   map[string]*entity.Product
	requests   map[string]*entity.Request
	movements  map[string]*entity.StockMovement
	activities []*entity.Activity

	// orden de inserción para listados estables
	productOrder  []string
	movementOrder []string
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		products:  make(map[string]*entity.Product),
		requests:  make(map[string]*entity.Request),
		movements: make(map[string]*entity.StockMovement),
	}
}
