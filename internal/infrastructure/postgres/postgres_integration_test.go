//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
	"github.com/jhoicas/suministros-api/internal/infrastructure/postgres"
	"github.com/jhoicas/suministros-api/pkg/config"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		tcPostgres.WithDatabase("suministros_test"),
		tcPostgres.WithUsername("suministros"),
		tcPostgres.WithPassword("suministros"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 5})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.EnsureSchema(ctx, pool))
	// idempotente
	require.NoError(t, postgres.EnsureSchema(ctx, pool))
	return pool
}

func TestPostgresRepositories(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("producto con escritura condicional", func(t *testing.T) {
		repo := postgres.NewProductRepository(pool)
		p := &entity.Product{ID: "p1", Label: "Stylo Bleu Bic", QtyPhysical: 150, QtyMinimum: 50, QtyInitial: 150, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, repo.Create(ctx, p))
		assert.ErrorIs(t, repo.Create(ctx, p), domain.ErrDuplicate)

		a, err := repo.GetByID(ctx, "p1")
		require.NoError(t, err)
		b, err := repo.GetByID(ctx, "p1")
		require.NoError(t, err)

		a.QtyPhysical = 140
		require.NoError(t, repo.Replace(ctx, a))
		assert.Equal(t, int64(2), a.Version)

		b.QtyPhysical = 100
		assert.ErrorIs(t, repo.Replace(ctx, b), domain.ErrConflict)
		assert.ErrorIs(t, repo.Replace(ctx, &entity.Product{ID: "ghost", Version: 1}), domain.ErrNotFound)

		got, err := repo.GetByID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, 140, got.QtyPhysical)
		assert.Equal(t, 150, got.QtyInitial)

		missing, err := repo.GetByID(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("solicitudes y filtros", func(t *testing.T) {
		repo := postgres.NewRequestRepository(pool)
		mk := func(id, user, manager string, status entity.RequestStatus, created time.Time) {
			r := &entity.Request{
				ID: id, UserID: user, ManagerID: manager, Status: status, Created: created,
				Lines: []entity.RequestLine{{ProductID: "p1", Qty: 2}, {ProductID: "p2", Qty: 1}},
			}
			r.ComputeTotalQty()
			require.NoError(t, repo.Create(ctx, r))
		}
		mk("r1", "alice", "boss", entity.RequestStatusPending, now)
		mk("r2", "bob", "boss", entity.RequestStatusApproved, now.Add(time.Minute))
		mk("r3", "alice", "other", entity.RequestStatusPending, now.Add(2*time.Minute))

		r, err := repo.GetByID(ctx, "r1")
		require.NoError(t, err)
		require.Len(t, r.Lines, 2)
		assert.Equal(t, 3, r.TotalQty)
		assert.Nil(t, r.DeliveredAt)

		lease := now.Add(time.Minute)
		r.DeliveryLeaseUntil = &lease
		r.Status = entity.RequestStatusApproved
		require.NoError(t, repo.Replace(ctx, r))
		got, _ := repo.GetByID(ctx, "r1")
		require.NotNil(t, got.DeliveryLeaseUntil)
		assert.True(t, lease.Equal(*got.DeliveryLeaseUntil))

		list, err := repo.List(ctx, repository.RequestFilter{ManagerID: "boss", Status: entity.RequestStatusApproved})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "r2", list[0].ID)

		all, err := repo.List(ctx, repository.RequestFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 3)
		assert.Equal(t, "r3", all[0].ID)
	})

	t.Run("movimientos", func(t *testing.T) {
		repo := postgres.NewStockMovementRepository(pool)
		idx := 0
		require.NoError(t, repo.Create(ctx, &entity.StockMovement{ID: "m1", ProductID: "p1", Delta: -15, AppliedDelta: -10, UserID: "u", Date: now}))
		require.NoError(t, repo.Create(ctx, &entity.StockMovement{ID: "m2", ProductID: "p1", Delta: -2, AppliedDelta: -2, RequestID: "r1", LineIndex: &idx, Date: now}))
		assert.ErrorIs(t, repo.Create(ctx, &entity.StockMovement{ID: "m2", ProductID: "p1", Date: now}), domain.ErrDuplicate)

		byProduct, err := repo.ListByProduct(ctx, "p1")
		require.NoError(t, err)
		require.Len(t, byProduct, 2)
		assert.Empty(t, byProduct[0].RequestID)
		assert.Nil(t, byProduct[0].LineIndex)
		assert.Equal(t, -10, byProduct[0].AppliedDelta)

		byRequest, err := repo.ListByRequest(ctx, "r1")
		require.NoError(t, err)
		require.Len(t, byRequest, 1)
		require.NotNil(t, byRequest[0].LineIndex)
		assert.Equal(t, 0, *byRequest[0].LineIndex)
	})

	t.Run("actividad", func(t *testing.T) {
		repo := postgres.NewActivityRepository(pool)
		for _, id := range []string{"a1", "a2", "a3"} {
			require.NoError(t, repo.Create(ctx, &entity.Activity{ID: id, Type: entity.ActivityRequest, Message: id, CreatedAt: now}))
		}
		list, err := repo.ListRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "a3", list[0].ID)
	})
}
