// Package requests contiene los casos de uso del ciclo de vida de las solicitudes de suministros.
package requests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/suministros-api/internal/application/ports"
	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/lifecycle"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

// Actores por defecto cuando la acción llega sin identidad.
const (
	DefaultManagerUser  = "manager"
	DefaultDeliveryUser = "secretariat"
)

// CreateInput datos de una solicitud nueva. Status vacío equivale a Pending.
type CreateInput struct {
	ID        string
	UserID    string
	ManagerID string
	Status    entity.RequestStatus
	Lines     []entity.RequestLine
	Reason    string
}

// UpsertInput cuerpo del guardado de borrador. Lines nil significa "no enviado".
type UpsertInput struct {
	ID        string
	UserID    string
	ManagerID string
	Status    entity.RequestStatus
	Lines     []entity.RequestLine
	Reason    string
}

// UseCase hace avanzar las solicitudes por la máquina de estados con escritura
// condicional por versión y reintento acotado.
type UseCase struct {
	repo       repository.RequestRepository
	activity   ports.ActivityRecorder
	notifier   ports.Notifier
	maxRetries int
	now        func() time.Time
}

// NewUseCase construye el caso de uso. activity y notifier pueden ser nil.
func NewUseCase(
	repo repository.RequestRepository,
	activity ports.ActivityRecorder,
	notifier ports.Notifier,
	maxRetries int,
) *UseCase {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &UseCase{
		repo:       repo,
		activity:   activity,
		notifier:   notifier,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *UseCase) SetClock(now func() time.Time) {
	uc.now = now
}

// Create registra una solicitud nueva en Draft o Pending.
func (uc *UseCase) Create(ctx context.Context, in CreateInput) (*entity.Request, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("%w: userId es obligatorio", domain.ErrInvalidInput)
	}
	status := in.Status
	if status == "" {
		status = entity.RequestStatusPending
	}
	if status != entity.RequestStatusDraft && status != entity.RequestStatusPending {
		return nil, fmt.Errorf("%w: estado inicial %q no permitido", domain.ErrInvalidInput, status)
	}
	if err := lifecycle.ValidateLines(in.Lines); err != nil {
		return nil, err
	}

	id := in.ID
	if id == "" {
		id = uuid.New().String()
	}
	r := &entity.Request{
		ID:        id,
		UserID:    in.UserID,
		ManagerID: in.ManagerID,
		Created:   uc.now(),
		Status:    status,
		Lines:     append([]entity.RequestLine(nil), in.Lines...),
		Reason:    in.Reason,
	}
	r.ComputeTotalQty()
	if err := uc.repo.Create(ctx, r); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("%w: solicitud %s", domain.ErrDuplicate, id)
		}
		return nil, fmt.Errorf("requests: crear %s: %w", id, err)
	}
	if status == entity.RequestStatusPending {
		uc.afterTransition(ctx, r, r.UserID)
	}
	return r, nil
}

// Upsert crea la solicitud o, si el ID existe, actualiza el borrador guardado.
// Solo un Draft puede actualizarse; el estado del cuerpo puede ser Draft (seguir) o
// Pending (enviar). Devuelve created=true si se dio de alta.
func (uc *UseCase) Upsert(ctx context.Context, in UpsertInput) (*entity.Request, bool, error) {
	if in.ID != "" {
		existing, err := uc.repo.GetByID(ctx, in.ID)
		if err != nil {
			return nil, false, fmt.Errorf("requests: leer %s: %w", in.ID, err)
		}
		if existing != nil {
			r, err := uc.updateDraft(ctx, in)
			return r, false, err
		}
	}
	r, err := uc.Create(ctx, CreateInput(in))
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

func (uc *UseCase) updateDraft(ctx context.Context, in UpsertInput) (*entity.Request, error) {
	target := in.Status
	if target == "" {
		target = entity.RequestStatusDraft
	}
	r, err := uc.mutate(ctx, in.ID, func(r *entity.Request) error {
		if r.Status != entity.RequestStatusDraft {
			return fmt.Errorf("%w: solo un borrador puede actualizarse (estado %s)", domain.ErrInvalidTransition, r.Status)
		}
		if target != entity.RequestStatusDraft {
			if err := lifecycle.CheckTransition(r.Status, target); err != nil {
				return err
			}
		}
		if in.UserID != "" {
			r.UserID = in.UserID
		}
		if in.ManagerID != "" {
			r.ManagerID = in.ManagerID
		}
		if in.Lines != nil {
			r.Lines = append([]entity.RequestLine(nil), in.Lines...)
		}
		if in.Reason != "" {
			r.Reason = in.Reason
		}
		if target == entity.RequestStatusPending || len(r.Lines) > 0 {
			if err := lifecycle.ValidateLines(r.Lines); err != nil {
				return err
			}
		}
		r.Status = target
		r.ComputeTotalQty()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if target == entity.RequestStatusPending {
		uc.afterTransition(ctx, r, r.UserID)
	}
	return r, nil
}

// SetStatus aplica la transición hacia status. comment se guarda como managerComment solo
// si no está vacío. Approved/Rejected sellan managerActionDate y actionBy; Delivered sella
// deliveredAt y deliveredBy y libera la reserva de entrega.
func (uc *UseCase) SetStatus(ctx context.Context, id string, status entity.RequestStatus, comment, actorID string) (*entity.Request, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidInput, status)
	}
	var actor string
	r, err := uc.mutate(ctx, id, func(r *entity.Request) error {
		if err := lifecycle.CheckTransition(r.Status, status); err != nil {
			return err
		}
		if status == entity.RequestStatusPending {
			if err := lifecycle.ValidateLines(r.Lines); err != nil {
				return err
			}
		}
		actor = resolveActor(actorID, status, r)
		now := uc.now()
		r.Status = status
		if comment != "" {
			r.ManagerComment = comment
		}
		switch status {
		case entity.RequestStatusApproved, entity.RequestStatusRejected:
			r.ManagerActionDate = &now
			r.ActionBy = actor
		case entity.RequestStatusDelivered:
			r.DeliveredAt = &now
			r.DeliveredBy = actor
			r.DeliveryLeaseUntil = nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.afterTransition(ctx, r, actor)
	return r, nil
}

// Submit Draft → Pending.
func (uc *UseCase) Submit(ctx context.Context, id, actorID string) (*entity.Request, error) {
	return uc.SetStatus(ctx, id, entity.RequestStatusPending, "", actorID)
}

// Approve Pending → Approved.
func (uc *UseCase) Approve(ctx context.Context, id, comment, actorID string) (*entity.Request, error) {
	return uc.SetStatus(ctx, id, entity.RequestStatusApproved, comment, actorID)
}

// Reject Pending → Rejected.
func (uc *UseCase) Reject(ctx context.Context, id, comment, actorID string) (*entity.Request, error) {
	return uc.SetStatus(ctx, id, entity.RequestStatusRejected, comment, actorID)
}

// AcquireDeliveryLease reserva la solicitud para una entrega hasta now+d. Falla con
// ErrNotEligible si no está Approved y con ErrConflict si otra entrega tiene una reserva vigente.
func (uc *UseCase) AcquireDeliveryLease(ctx context.Context, id string, d time.Duration) (*entity.Request, error) {
	return uc.mutate(ctx, id, func(r *entity.Request) error {
		if r.Status != entity.RequestStatusApproved {
			return fmt.Errorf("%w: solicitud %s en estado %s", domain.ErrNotEligible, r.ID, r.Status)
		}
		now := uc.now()
		if r.DeliveryLeaseUntil != nil && now.Before(*r.DeliveryLeaseUntil) {
			return fmt.Errorf("%w: entrega de %s en curso", domain.ErrConflict, r.ID)
		}
		until := now.Add(d)
		r.DeliveryLeaseUntil = &until
		return nil
	})
}

// ReleaseDeliveryLease libera la reserva tras una entrega fallida para permitir el reintento.
func (uc *UseCase) ReleaseDeliveryLease(ctx context.Context, id string) error {
	_, err := uc.mutate(ctx, id, func(r *entity.Request) error {
		r.DeliveryLeaseUntil = nil
		return nil
	})
	return err
}

// GetByID devuelve la solicitud o ErrNotFound.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*entity.Request, error) {
	r, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("requests: leer %s: %w", id, err)
	}
	if r == nil {
		return nil, fmt.Errorf("%w: solicitud %s", domain.ErrNotFound, id)
	}
	return r, nil
}

// List devuelve las solicitudes que cumplen todos los filtros no vacíos, más recientes primero.
func (uc *UseCase) List(ctx context.Context, filter repository.RequestFilter) ([]*entity.Request, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidInput, filter.Status)
	}
	return uc.repo.List(ctx, filter)
}

// mutate lee la solicitud, aplica fn sobre una copia fresca y la reescribe condicionalmente,
// reintentando ante ErrConflict de versión. Un error de fn aborta sin escribir.
func (uc *UseCase) mutate(ctx context.Context, id string, fn func(r *entity.Request) error) (*entity.Request, error) {
	for attempt := 0; attempt < uc.maxRetries; attempt++ {
		r, err := uc.repo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("requests: leer %s: %w", id, err)
		}
		if r == nil {
			return nil, fmt.Errorf("%w: solicitud %s", domain.ErrNotFound, id)
		}
		if err := fn(r); err != nil {
			return nil, err
		}
		err = uc.repo.Replace(ctx, r)
		if err == nil {
			return r, nil
		}
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: solicitud %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("requests: escribir %s: %w", id, err)
	}
	return nil, fmt.Errorf("%w: solicitud %s tras %d reintentos", domain.ErrConflict, id, uc.maxRetries)
}

func resolveActor(actorID string, status entity.RequestStatus, r *entity.Request) string {
	if actorID != "" {
		return actorID
	}
	switch status {
	case entity.RequestStatusPending:
		return r.UserID
	case entity.RequestStatusDelivered:
		return DefaultDeliveryUser
	default:
		return DefaultManagerUser
	}
}

// afterTransition registra la actividad y publica el evento del nuevo estado (mejor esfuerzo).
func (uc *UseCase) afterTransition(ctx context.Context, r *entity.Request, actor string) {
	var activityType, eventType, message string
	switch r.Status {
	case entity.RequestStatusPending:
		activityType, eventType = entity.ActivityRequest, ports.EventRequestSubmitted
		message = fmt.Sprintf("%s submitted a request for %d item(s)", r.UserID, r.TotalQty)
	case entity.RequestStatusApproved:
		activityType, eventType = entity.ActivityApproval, ports.EventRequestApproved
		message = fmt.Sprintf("Request %s approved", r.ID)
	case entity.RequestStatusRejected:
		activityType, eventType = entity.ActivityRejection, ports.EventRequestRejected
		message = fmt.Sprintf("Request %s rejected", r.ID)
	case entity.RequestStatusDelivered:
		activityType, eventType = entity.ActivityDelivery, ports.EventRequestDelivered
		message = fmt.Sprintf("Request %s delivered to %s", r.ID, r.UserID)
	default:
		return
	}
	if uc.activity != nil {
		uc.activity.Record(ctx, activityType, actor, message, r.ID)
	}
	if uc.notifier == nil {
		return
	}
	ev := ports.Event{
		Type:       eventType,
		RequestID:  r.ID,
		UserID:     r.UserID,
		ManagerID:  r.ManagerID,
		ActorID:    actor,
		Status:     string(r.Status),
		Comment:    r.ManagerComment,
		OccurredAt: uc.now(),
	}
	if err := uc.notifier.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("request_id", r.ID).Str("event", ev.Type).Msg("requests: no se pudo publicar la notificación")
	}
}
