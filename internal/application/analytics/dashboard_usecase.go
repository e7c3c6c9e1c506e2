// Package analytics contiene los casos de uso de reportes y del tablero principal.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

const dashboardRecentActivity = 5 // entradas del feed en el widget del dashboard

// DashboardUseCase genera los indicadores del tablero.
//
// Fuente de datos: repositorios de productos, solicitudes y actividad (solo lectura).
type DashboardUseCase struct {
	products   repository.ProductRepository
	requests   repository.RequestRepository
	activities repository.ActivityRepository
	now        func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(
	products repository.ProductRepository,
	requests repository.RequestRepository,
	activities repository.ActivityRepository,
) *DashboardUseCase {
	return &DashboardUseCase{products: products, requests: requests, activities: activities, now: time.Now}
}

// SetClock reemplaza el reloj (tests).
func (uc *DashboardUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

// GetSummary construye el DashboardSummaryDTO.
//
// Cuatro lecturas en paralelo:
//  1. productos          → TotalStock, ProductCount, LowStockAlerts, Categories
//  2. solicitudes Pending  → PendingRequests
//  3. solicitudes Approved → AwaitingDelivery
//  4. solicitudes Delivered + feed → DeliveredThisMonth, RecentActivity
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	type productsResult struct {
		list []*entity.Product
		err  error
	}
	type requestsResult struct {
		list []*entity.Request
		err  error
	}
	type activityResult struct {
		list []*entity.Activity
		err  error
	}

	productsCh := make(chan productsResult, 1)
	pendingCh := make(chan requestsResult, 1)
	approvedCh := make(chan requestsResult, 1)
	deliveredCh := make(chan requestsResult, 1)
	activityCh := make(chan activityResult, 1)

	go func() {
		list, err := uc.products.List(ctx)
		productsCh <- productsResult{list, err}
	}()
	listStatus := func(status entity.RequestStatus, ch chan<- requestsResult) {
		list, err := uc.requests.List(ctx, repository.RequestFilter{Status: status})
		ch <- requestsResult{list, err}
	}
	go listStatus(entity.RequestStatusPending, pendingCh)
	go listStatus(entity.RequestStatusApproved, approvedCh)
	go listStatus(entity.RequestStatusDelivered, deliveredCh)
	go func() {
		list, err := uc.activities.ListRecent(ctx, dashboardRecentActivity)
		activityCh <- activityResult{list, err}
	}()

	products := <-productsCh
	pending := <-pendingCh
	approved := <-approvedCh
	delivered := <-deliveredCh
	activity := <-activityCh

	if products.err != nil {
		return nil, fmt.Errorf("dashboard: productos: %w", products.err)
	}
	if pending.err != nil {
		return nil, fmt.Errorf("dashboard: solicitudes pendientes: %w", pending.err)
	}
	if approved.err != nil {
		return nil, fmt.Errorf("dashboard: solicitudes aprobadas: %w", approved.err)
	}
	if delivered.err != nil {
		return nil, fmt.Errorf("dashboard: solicitudes entregadas: %w", delivered.err)
	}
	if activity.err != nil {
		return nil, fmt.Errorf("dashboard: actividad: %w", activity.err)
	}

	out := &dto.DashboardSummaryDTO{
		ProductCount:     len(products.list),
		PendingRequests:  len(pending.list),
		AwaitingDelivery: len(approved.list),
		RecentActivity:   dto.NewActivityList(activity.list),
	}

	byCategory := make(map[string]int)
	for _, p := range products.list {
		out.TotalStock += p.QtyPhysical
		if p.IsLowStock() {
			out.LowStockAlerts++
		}
		byCategory[p.Category]++
	}
	out.Categories = make([]dto.CategoryCountDTO, 0, len(byCategory))
	for name, n := range byCategory {
		out.Categories = append(out.Categories, dto.CategoryCountDTO{Name: name, Value: n})
	}
	sort.Slice(out.Categories, func(i, j int) bool {
		if out.Categories[i].Value != out.Categories[j].Value {
			return out.Categories[i].Value > out.Categories[j].Value
		}
		return out.Categories[i].Name < out.Categories[j].Name
	})

	for _, r := range delivered.list {
		if r.DeliveredAt != nil && !r.DeliveredAt.Before(monthStart) {
			out.DeliveredThisMonth++
		}
	}
	return out, nil
}
