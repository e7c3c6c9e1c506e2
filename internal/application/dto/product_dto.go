package dto

import (
	"time"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// CreateProductRequest entrada para dar de alta un producto. ID es opcional (catálogos importados).
type CreateProductRequest struct {
	ID            string `json:"id,omitempty"`
	Label         string `json:"label"`
	UnitOfMeasure string `json:"unitOfMeasure"`
	QtyPhysical   int    `json:"qtyPhysical"`
	QtyMinimum    int    `json:"qtyMinimum"`
	Location      string `json:"location"`
	Category      string `json:"category"`
	PictureURL    string `json:"pictureUrl,omitempty"`
	UserID        string `json:"userId,omitempty"`
}

// UpdateProductRequest edición de ficha (nunca qtyPhysical: el stock cambia solo vía movimientos).
type UpdateProductRequest struct {
	Label         *string `json:"label"`
	UnitOfMeasure *string `json:"unitOfMeasure"`
	QtyMinimum    *int    `json:"qtyMinimum"`
	Location      *string `json:"location"`
	Category      *string `json:"category"`
	PictureURL    *string `json:"pictureUrl"`
	UserID        string  `json:"userId,omitempty"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string    `json:"id"`
	Label         string    `json:"label"`
	UnitOfMeasure string    `json:"unitOfMeasure"`
	QtyPhysical   int       `json:"qtyPhysical"`
	QtyMinimum    int       `json:"qtyMinimum"`
	QtyInitial    int       `json:"qtyInitial"`
	Location      string    `json:"location"`
	Category      string    `json:"category"`
	PictureURL    string    `json:"pictureUrl,omitempty"`
	LowStock      bool      `json:"lowStock"`
	Version       int64     `json:"version"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewProductResponse mapea la entidad a su representación HTTP.
func NewProductResponse(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		ID:            p.ID,
		Label:         p.Label,
		UnitOfMeasure: p.UnitOfMeasure,
		QtyPhysical:   p.QtyPhysical,
		QtyMinimum:    p.QtyMinimum,
		QtyInitial:    p.QtyInitial,
		Location:      p.Location,
		Category:      p.Category,
		PictureURL:    p.PictureURL,
		LowStock:      p.IsLowStock(),
		Version:       p.Version,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// NewProductList mapea una lista (nunca nil, para serializar [] y no null).
func NewProductList(list []*entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *NewProductResponse(p))
	}
	return out
}
