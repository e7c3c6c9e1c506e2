package entity

import "time"

// RequestStatus estado del ciclo de vida de una solicitud.
type RequestStatus string

const (
	RequestStatusDraft     RequestStatus = "Draft"
	RequestStatusPending   RequestStatus = "Pending"
	RequestStatusApproved  RequestStatus = "Approved"
	RequestStatusRejected  RequestStatus = "Rejected"
	RequestStatusDelivered RequestStatus = "Delivered"
)

// Valid indica si s es uno de los estados conocidos.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusDraft, RequestStatusPending, RequestStatusApproved,
		RequestStatusRejected, RequestStatusDelivered:
		return true
	}
	return false
}

// RequestLine una línea de la solicitud: producto y cantidad (> 0).
type RequestLine struct {
	ProductID string
	Qty       int
}

// Request solicitud de suministros de un empleado.
type Request struct {
	ID                 string
	UserID             string
	ManagerID          string
	Created            time.Time
	Status             RequestStatus
	Lines              []RequestLine
	TotalQty           int
	Reason             string
	ManagerComment     string
	ManagerActionDate  *time.Time
	ActionBy           string
	DeliveredAt        *time.Time
	DeliveredBy        string
	DeliveryLeaseUntil *time.Time // entrega en curso hasta esta fecha
	Version            int64
}

// ComputeTotalQty recalcula TotalQty como la suma de las cantidades de las líneas.
func (r *Request) ComputeTotalQty() {
	total := 0
	for _, l := range r.Lines {
		total += l.Qty
	}
	r.TotalQty = total
}

// Clone devuelve una copia profunda (líneas y punteros de fecha incluidos).
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	c := *r
	c.Lines = append([]RequestLine(nil), r.Lines...)
	c.ManagerActionDate = cloneTime(r.ManagerActionDate)
	c.DeliveredAt = cloneTime(r.DeliveredAt)
	c.DeliveryLeaseUntil = cloneTime(r.DeliveryLeaseUntil)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
