package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// AdjustQtyRequest body para PATCH /api/products/{id}/qty. Delta es obligatorio.
type AdjustQtyRequest struct {
	Delta   *int   `json:"delta"`
	Comment string `json:"comment,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

// RestockRequest body para POST /api/products/{id}/restock.
type RestockRequest struct {
	Qty     *int   `json:"qty"`
	Comment string `json:"comment,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

// StockMovementResponse salida de un movimiento. RequestID es null para ajustes manuales.
type StockMovementResponse struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"productId"`
	Delta        int       `json:"delta"`
	AppliedDelta int       `json:"appliedDelta"`
	RequestID    *string   `json:"requestId"`
	LineIndex    *int      `json:"lineIndex,omitempty"`
	UserID       string    `json:"userId"`
	Date         time.Time `json:"date"`
	Comment      string    `json:"comment"`
}

// NewStockMovementList mapea movimientos a su representación HTTP.
func NewStockMovementList(list []*entity.StockMovement) []StockMovementResponse {
	out := make([]StockMovementResponse, 0, len(list))
	for _, m := range list {
		r := StockMovementResponse{
			ID:           m.ID,
			ProductID:    m.ProductID,
			Delta:        m.Delta,
			AppliedDelta: m.AppliedDelta,
			LineIndex:    m.LineIndex,
			UserID:       m.UserID,
			Date:         m.Date,
			Comment:      m.Comment,
		}
		if m.RequestID != "" {
			id := m.RequestID
			r.RequestID = &id
		}
		out = append(out, r)
	}
	return out
}

// ReconciliationResponse compara stock físico contra la suma de movimientos.
// Consistent: QtyInitial + SumApplied == QtyPhysical. Clamped: algún movimiento fue recortado.
type ReconciliationResponse struct {
	ProductID     string `json:"productId"`
	QtyInitial    int    `json:"qtyInitial"`
	QtyPhysical   int    `json:"qtyPhysical"`
	SumDelta      int    `json:"sumDelta"`
	SumApplied    int    `json:"sumApplied"`
	MovementCount int    `json:"movementCount"`
	Consistent    bool   `json:"consistent"`
	Clamped       bool   `json:"clamped"`
}

// LowStockItemDTO producto en o bajo su mínimo, con la cantidad sugerida de reposición.
type LowStockItemDTO struct {
	ProductID         string          `json:"productId"`
	Label             string          `json:"label"`
	Category          string          `json:"category"`
	Location          string          `json:"location"`
	QtyPhysical       int             `json:"qtyPhysical"`
	QtyMinimum        int             `json:"qtyMinimum"`
	SuggestedOrderQty int             `json:"suggestedOrderQty"` // ceil(mínimo * 1,5) - físico
	CoveragePct       decimal.Decimal `json:"coveragePct"`       // físico / mínimo * 100
	Priority          int             `json:"priority"`          // 1 = más urgente
}
