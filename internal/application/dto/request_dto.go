package dto

import (
	"time"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// RequestLineDTO línea de solicitud.
type RequestLineDTO struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

// UpsertRequestRequest body de POST /api/requests: crea, o actualiza un borrador si ID existe.
// Lines nil = campo ausente (se conservan las líneas guardadas al actualizar).
type UpsertRequestRequest struct {
	ID        string           `json:"id,omitempty"`
	UserID    string           `json:"userId"`
	ManagerID string           `json:"managerId,omitempty"`
	Status    string           `json:"status,omitempty"`
	Lines     []RequestLineDTO `json:"lines"`
	Reason    string           `json:"reason,omitempty"`
}

// StatusActionRequest body de approve/reject/submit.
type StatusActionRequest struct {
	Comment string `json:"comment,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

// DeliverRequestBody body de PATCH /api/requests/{id}/deliver.
type DeliverRequestBody struct {
	UserID string `json:"userId,omitempty"`
}

// RequestResponse salida de una solicitud.
type RequestResponse struct {
	ID                string           `json:"id"`
	UserID            string           `json:"userId"`
	ManagerID         string           `json:"managerId,omitempty"`
	Created           time.Time        `json:"created"`
	Status            string           `json:"status"`
	Lines             []RequestLineDTO `json:"lines"`
	TotalQty          int              `json:"totalQty"`
	Reason            string           `json:"reason,omitempty"`
	ManagerComment    string           `json:"managerComment,omitempty"`
	ManagerActionDate *time.Time       `json:"managerActionDate,omitempty"`
	ActionBy          string           `json:"actionBy,omitempty"`
	DeliveredAt       *time.Time       `json:"deliveredAt,omitempty"`
	DeliveredBy       string           `json:"deliveredBy,omitempty"`
	Version           int64            `json:"version"`
}

// DeliveryReportDTO índices de línea según el resultado de la entrega.
type DeliveryReportDTO struct {
	AppliedLines        []int `json:"appliedLines"`
	SkippedLines        []int `json:"skippedLines"`        // producto inexistente (política lenient)
	AlreadyAppliedLines []int `json:"alreadyAppliedLines"` // aplicadas por un intento anterior
}

// DeliveryResponse salida de PATCH /api/requests/{id}/deliver: la solicitud actualizada
// más el informe de líneas en "report".
type DeliveryResponse struct {
	RequestResponse
	Report DeliveryReportDTO `json:"report"`
}

// ToRequestLines convierte las líneas del body a entidades.
func ToRequestLines(in []RequestLineDTO) []entity.RequestLine {
	if in == nil {
		return nil
	}
	out := make([]entity.RequestLine, 0, len(in))
	for _, l := range in {
		out = append(out, entity.RequestLine{ProductID: l.ProductID, Qty: l.Qty})
	}
	return out
}

// NewRequestResponse mapea la entidad a su representación HTTP.
func NewRequestResponse(r *entity.Request) *RequestResponse {
	if r == nil {
		return nil
	}
	lines := make([]RequestLineDTO, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, RequestLineDTO{ProductID: l.ProductID, Qty: l.Qty})
	}
	return &RequestResponse{
		ID:                r.ID,
		UserID:            r.UserID,
		ManagerID:         r.ManagerID,
		Created:           r.Created,
		Status:            string(r.Status),
		Lines:             lines,
		TotalQty:          r.TotalQty,
		Reason:            r.Reason,
		ManagerComment:    r.ManagerComment,
		ManagerActionDate: r.ManagerActionDate,
		ActionBy:          r.ActionBy,
		DeliveredAt:       r.DeliveredAt,
		DeliveredBy:       r.DeliveredBy,
		Version:           r.Version,
	}
}

// NewRequestList mapea una lista (nunca nil).
func NewRequestList(list []*entity.Request) []RequestResponse {
	out := make([]RequestResponse, 0, len(list))
	for _, r := range list {
		out = append(out, *NewRequestResponse(r))
	}
	return out
}
