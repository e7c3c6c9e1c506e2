package inventory

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ApplyDelta aplica delta a current recortando en cero (servicio de dominio).
// Devuelve la nueva cantidad y la variación efectivamente aplicada, que difiere de delta
// solo cuando el recorte actúa.
func ApplyDelta(current, delta int) (newQty, applied int) {
	newQty = current + delta
	if newQty < 0 {
		newQty = 0
	}
	return newQty, newQty - current
}

// SuggestedReorder cantidad a pedir para volver a 1,5 veces el mínimo (redondeo hacia arriba).
// Cero si el stock ya alcanza ese nivel.
func SuggestedReorder(qtyPhysical, qtyMinimum int) int {
	ideal := decimal.NewFromInt(int64(qtyMinimum)).Mul(decimal.NewFromFloat(1.5)).Ceil().IntPart()
	if s := int(ideal) - qtyPhysical; s > 0 {
		return s
	}
	return 0
}

// Coverage porcentaje del mínimo cubierto por el stock físico, con 2 decimales.
// Un mínimo de cero se considera cubierto al 100 %.
func Coverage(qtyPhysical, qtyMinimum int) decimal.Decimal {
	if qtyMinimum <= 0 {
		return hundred
	}
	return decimal.NewFromInt(int64(qtyPhysical)).
		Div(decimal.NewFromInt(int64(qtyMinimum))).
		Mul(hundred).
		Round(2)
}
