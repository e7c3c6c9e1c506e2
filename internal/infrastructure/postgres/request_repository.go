package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

var _ repository.RequestRepository = (*RequestRepo)(nil)

const requestColumns = `id, user_id, manager_id, created, status, lines, total_qty, reason,
	manager_comment, manager_action_date, action_by, delivered_at, delivered_by,
	delivery_lease_until, version`

// lineRow forma JSON de una línea en la columna lines.
type lineRow struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

// RequestRepo implementación del puerto RequestRepository sobre PostgreSQL.
type RequestRepo struct {
	q Querier
}

// NewRequestRepository construye el adaptador de persistencia para solicitudes.
func NewRequestRepository(q Querier) *RequestRepo {
	return &RequestRepo{q: q}
}

// Create persiste una solicitud nueva con versión 1.
func (r *RequestRepo) Create(ctx context.Context, req *entity.Request) error {
	lines, err := encodeLines(req.Lines)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO requests (id, user_id, manager_id, created, status, lines, total_qty, reason,
			manager_comment, manager_action_date, action_by, delivered_at, delivered_by,
			delivery_lease_until, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 1)`
	_, err = r.q.Exec(ctx, query,
		req.ID, req.UserID, req.ManagerID, req.Created, string(req.Status), lines, req.TotalQty,
		req.Reason, req.ManagerComment, req.ManagerActionDate, req.ActionBy, req.DeliveredAt,
		req.DeliveredBy, req.DeliveryLeaseUntil,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert request: %w", err)
	}
	req.Version = 1
	return nil
}

// GetByID obtiene una solicitud; (nil, nil) si no existe.
func (r *RequestRepo) GetByID(ctx context.Context, id string) (*entity.Request, error) {
	req, err := scanRequest(r.q.QueryRow(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	return req, nil
}

// Replace escritura condicional sobre version.
func (r *RequestRepo) Replace(ctx context.Context, req *entity.Request) error {
	lines, err := encodeLines(req.Lines)
	if err != nil {
		return err
	}
	query := `
		UPDATE requests SET user_id = $2, manager_id = $3, status = $4, lines = $5, total_qty = $6,
			reason = $7, manager_comment = $8, manager_action_date = $9, action_by = $10,
			delivered_at = $11, delivered_by = $12, delivery_lease_until = $13, version = version + 1
		WHERE id = $1 AND version = $14`
	tag, err := r.q.Exec(ctx, query,
		req.ID, req.UserID, req.ManagerID, string(req.Status), lines, req.TotalQty, req.Reason,
		req.ManagerComment, req.ManagerActionDate, req.ActionBy, req.DeliveredAt, req.DeliveredBy,
		req.DeliveryLeaseUntil, req.Version,
	)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return casMiss(ctx, r.q, "requests", req.ID)
	}
	req.Version++
	return nil
}

// List filtros combinables (AND), más recientes primero.
func (r *RequestRepo) List(ctx context.Context, f repository.RequestFilter) ([]*entity.Request, error) {
	var (
		where []string
		args  []any
	)
	add := func(column, value string) {
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if f.UserID != "" {
		add("user_id", f.UserID)
	}
	if f.ManagerID != "" {
		add("manager_id", f.ManagerID)
	}
	if f.Status != "" {
		add("status", string(f.Status))
	}

	query := `SELECT ` + requestColumns + ` FROM requests`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created DESC, id ASC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		list = append(list, req)
	}
	return list, rows.Err()
}

func scanRequest(row pgx.Row) (*entity.Request, error) {
	var (
		req    entity.Request
		status string
		lines  []byte
	)
	err := row.Scan(
		&req.ID, &req.UserID, &req.ManagerID, &req.Created, &status, &lines, &req.TotalQty,
		&req.Reason, &req.ManagerComment, &req.ManagerActionDate, &req.ActionBy, &req.DeliveredAt,
		&req.DeliveredBy, &req.DeliveryLeaseUntil, &req.Version,
	)
	if err != nil {
		return nil, err
	}
	req.Status = entity.RequestStatus(status)
	if req.Lines, err = decodeLines(lines); err != nil {
		return nil, err
	}
	return &req, nil
}

func encodeLines(lines []entity.RequestLine) ([]byte, error) {
	rows := make([]lineRow, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, lineRow{ProductID: l.ProductID, Qty: l.Qty})
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode lines: %w", err)
	}
	return b, nil
}

func decodeLines(b []byte) ([]entity.RequestLine, error) {
	var rows []lineRow
	if len(b) > 0 {
		if err := json.Unmarshal(b, &rows); err != nil {
			return nil, fmt.Errorf("decode lines: %w", err)
		}
	}
	lines := make([]entity.RequestLine, 0, len(rows))
	for _, l := range rows {
		lines = append(lines, entity.RequestLine{ProductID: l.ProductID, Qty: l.Qty})
	}
	return lines, nil
}
