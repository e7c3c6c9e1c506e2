// Package lifecycle define la máquina de estados de las solicitudes de suministros.
//
//	Draft ──► Pending ──► Approved ──► Delivered
//	             │
//	             └──────► Rejected
//
// Rejected y Delivered son terminales; no existe ninguna transición hacia atrás.
package lifecycle

import (
	"fmt"

	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

var successors = map[entity.RequestStatus][]entity.RequestStatus{
	entity.RequestStatusDraft:    {entity.RequestStatusPending},
	entity.RequestStatusPending:  {entity.RequestStatusApproved, entity.RequestStatusRejected},
	entity.RequestStatusApproved: {entity.RequestStatusDelivered},
}

// Successors devuelve los estados alcanzables desde from.
func Successors(from entity.RequestStatus) []entity.RequestStatus {
	return append([]entity.RequestStatus(nil), successors[from]...)
}

// CanTransition indica si la arista from → to está permitida.
func CanTransition(from, to entity.RequestStatus) bool {
	for _, s := range successors[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal indica si no hay transiciones de salida desde s.
func IsTerminal(s entity.RequestStatus) bool {
	return len(successors[s]) == 0
}

// CheckTransition devuelve domain.ErrInvalidTransition (envuelto) si from → to no está permitida.
func CheckTransition(from, to entity.RequestStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, from, to)
	}
	return nil
}

// ValidateLines exige al menos una línea, cada una con producto y cantidad positiva.
func ValidateLines(lines []entity.RequestLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: la solicitud no tiene líneas", domain.ErrInvalidInput)
	}
	for i, l := range lines {
		if l.ProductID == "" {
			return fmt.Errorf("%w: línea %d sin productId", domain.ErrInvalidInput, i)
		}
		if l.Qty <= 0 {
			return fmt.Errorf("%w: línea %d con cantidad %d", domain.ErrInvalidInput, i, l.Qty)
		}
	}
	return nil
}
