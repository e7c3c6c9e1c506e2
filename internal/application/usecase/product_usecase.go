package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/application/ports"
	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

// ProductUseCase casos de uso de la ficha de producto. El stock físico se maneja vía movimientos.
type ProductUseCase struct {
	repo       repository.ProductRepository
	activity   ports.ActivityRecorder
	maxRetries int
}

// NewProductUseCase construye el caso de uso. activity puede ser nil.
func NewProductUseCase(repo repository.ProductRepository, activity ports.ActivityRecorder, maxRetries int) *ProductUseCase {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &ProductUseCase{repo: repo, activity: activity, maxRetries: maxRetries}
}

// Create da de alta un producto. QtyInitial queda fijado en la cantidad física de alta.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if strings.TrimSpace(in.Label) == "" {
		return nil, fmt.Errorf("%w: label es obligatorio", domain.ErrInvalidInput)
	}
	if in.QtyPhysical < 0 || in.QtyMinimum < 0 {
		return nil, fmt.Errorf("%w: las cantidades no pueden ser negativas", domain.ErrInvalidInput)
	}
	id := in.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now()
	product := &entity.Product{
		ID:            id,
		Label:         in.Label,
		UnitOfMeasure: in.UnitOfMeasure,
		QtyPhysical:   in.QtyPhysical,
		QtyMinimum:    in.QtyMinimum,
		QtyInitial:    in.QtyPhysical,
		Location:      in.Location,
		Category:      in.Category,
		PictureURL:    in.PictureURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrDuplicate, id)
		}
		return nil, err
	}
	uc.record(ctx, in.UserID, fmt.Sprintf("Product %s added (%d in stock)", product.Label, product.QtyPhysical), product.ID)
	return dto.NewProductResponse(product), nil
}

// GetByID obtiene un producto por ID; (nil, nil) si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return dto.NewProductResponse(product), nil
}

// Update edita la ficha. No permite modificar qtyPhysical ni qtyInitial. (nil, nil) si no existe.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if in.Label != nil && strings.TrimSpace(*in.Label) == "" {
		return nil, fmt.Errorf("%w: label no puede quedar vacío", domain.ErrInvalidInput)
	}
	if in.QtyMinimum != nil && *in.QtyMinimum < 0 {
		return nil, fmt.Errorf("%w: qtyMinimum no puede ser negativo", domain.ErrInvalidInput)
	}
	for attempt := 0; attempt < uc.maxRetries; attempt++ {
		product, err := uc.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, nil
		}
		if in.Label != nil {
			product.Label = *in.Label
		}
		if in.UnitOfMeasure != nil {
			product.UnitOfMeasure = *in.UnitOfMeasure
		}
		if in.QtyMinimum != nil {
			product.QtyMinimum = *in.QtyMinimum
		}
		if in.Location != nil {
			product.Location = *in.Location
		}
		if in.Category != nil {
			product.Category = *in.Category
		}
		if in.PictureURL != nil {
			product.PictureURL = *in.PictureURL
		}
		product.UpdatedAt = time.Now()
		err = uc.repo.Replace(ctx, product)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		uc.record(ctx, in.UserID, fmt.Sprintf("Product %s updated", product.Label), product.ID)
		return dto.NewProductResponse(product), nil
	}
	return nil, fmt.Errorf("%w: producto %s tras %d reintentos", domain.ErrConflict, id, uc.maxRetries)
}

// List devuelve todos los productos en orden de alta.
func (uc *ProductUseCase) List(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewProductList(list), nil
}

func (uc *ProductUseCase) record(ctx context.Context, user, message, entityID string) {
	if uc.activity == nil {
		return
	}
	if user == "" {
		user = "system"
	}
	uc.activity.Record(ctx, entity.ActivityStockUpdate, user, message, entityID)
}
